package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procurehq/rfpflow/internal/models"
)

type ProposalStore struct {
	pool *pgxpool.Pool
}

func NewProposalStore(pool *pgxpool.Pool) *ProposalStore {
	return &ProposalStore{pool: pool}
}

const proposalColumns = `id, rfp_id, vendor_id, number, email_message_id, email_content, extracted, received_at, status, parsing_error`

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.RFPID, &p.VendorID, &p.Number, &p.EmailMessageID,
		&p.EmailContent, &p.Extracted, &p.ReceivedAt, &p.Status, &p.ParsingError)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts the proposal and its attachments in one transaction.
func (s *ProposalStore) Create(ctx context.Context, p *models.Proposal) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.ProposalStatusPending
	}
	if p.ReceivedAt.IsZero() {
		p.ReceivedAt = time.Now().UTC()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO proposals (`+proposalColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.RFPID, p.VendorID, p.Number, p.EmailMessageID, p.EmailContent,
		p.Extracted, p.ReceivedAt, p.Status, p.ParsingError)
	if err != nil {
		return err
	}

	for i := range p.Attachments {
		att := &p.Attachments[i]
		if att.ID == uuid.Nil {
			att.ID = uuid.New()
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO proposal_attachments (id, proposal_id, filename, content_type, size, content, extracted_text)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, att.ID, p.ID, att.Filename, att.ContentType, att.Size, att.Content, att.ExtractedText)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// ByMessageID finds a proposal ingested from the given mail message id.
// Returns nil when no such record exists; used for deduplication.
func (s *ProposalStore) ByMessageID(ctx context.Context, messageID string) (*models.Proposal, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE email_message_id = $1`, messageID)
	p, err := scanProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// CountByRFPVendor counts prior responses from a vendor for an RFP;
// the next proposal number is this count plus one.
func (s *ProposalStore) CountByRFPVendor(ctx context.Context, rfpID, vendorID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM proposals WHERE rfp_id = $1 AND vendor_id = $2`,
		rfpID, vendorID).Scan(&count)
	return count, err
}

func (s *ProposalStore) ByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	p, err := scanProposal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Attachments, err = s.attachments(ctx, id)
	return p, err
}

func (s *ProposalStore) attachments(ctx context.Context, proposalID uuid.UUID) ([]models.Attachment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, filename, content_type, size, content, extracted_text
		FROM proposal_attachments WHERE proposal_id = $1 ORDER BY filename
	`, proposalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atts []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.Filename, &a.ContentType, &a.Size, &a.Content, &a.ExtractedText); err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, rows.Err()
}

func (s *ProposalStore) All(ctx context.Context, status string) ([]models.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY received_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

func (s *ProposalStore) ByRFP(ctx context.Context, rfpID uuid.UUID) ([]models.Proposal, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE rfp_id = $1 ORDER BY received_at`, rfpID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, *p)
	}
	return proposals, rows.Err()
}

// SaveExtraction stores successful extraction output, advancing the
// proposal to "parsed" and clearing any previous parsing error.
func (s *ProposalStore) SaveExtraction(ctx context.Context, id uuid.UUID, extracted *models.ExtractedProposal) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals SET extracted = $2, status = $3, parsing_error = NULL WHERE id = $1
	`, id, extracted, models.ProposalStatusParsed)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkParseFailed records an extraction failure. The status stays
// "pending" and previously extracted data, if any, is left untouched.
func (s *ProposalStore) MarkParseFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals SET status = $2, parsing_error = $3 WHERE id = $1
	`, id, models.ProposalStatusPending, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *ProposalStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE proposals SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SaveAttachmentText stores text extracted from an attachment so later
// extraction retries don't re-run PDF parsing.
func (s *ProposalStore) SaveAttachmentText(ctx context.Context, attachmentID uuid.UUID, text string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE proposal_attachments SET extracted_text = $2 WHERE id = $1`, attachmentID, text)
	return err
}
