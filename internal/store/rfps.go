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

type RFPStore struct {
	pool *pgxpool.Pool
}

func NewRFPStore(pool *pgxpool.Pool) *RFPStore {
	return &RFPStore{pool: pool}
}

const rfpColumns = `id, token, title, description, items, budget, timeline, payment_terms, warranty, status, structured_data, created_at, updated_at`

func scanRFP(row pgx.Row) (*models.RFP, error) {
	var r models.RFP
	err := row.Scan(&r.ID, &r.Token, &r.Title, &r.Description, &r.Items, &r.Budget,
		&r.Timeline, &r.PaymentTerms, &r.Warranty, &r.Status, &r.StructuredData,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *RFPStore) Create(ctx context.Context, r *models.RFP) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Token == "" {
		r.Token = models.NewRFPToken()
	}
	if r.Status == "" {
		r.Status = models.RFPStatusDraft
	}
	if r.Items == nil {
		r.Items = []models.RFPItem{}
	}
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO rfps (`+rfpColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, r.ID, r.Token, r.Title, r.Description, r.Items, r.Budget, r.Timeline,
		r.PaymentTerms, r.Warranty, r.Status, r.StructuredData, r.CreatedAt, r.UpdatedAt)
	return err
}

func (s *RFPStore) All(ctx context.Context, status string) ([]models.RFP, error) {
	query := `SELECT ` + rfpColumns + ` FROM rfps`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfps []models.RFP
	for rows.Next() {
		r, err := scanRFP(rows)
		if err != nil {
			return nil, err
		}
		rfps = append(rfps, *r)
	}
	return rfps, rows.Err()
}

func (s *RFPStore) ByID(ctx context.Context, id uuid.UUID) (*models.RFP, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+rfpColumns+` FROM rfps WHERE id = $1`, id)
	r, err := scanRFP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ByToken looks up an RFP by its exact textual identifier.
func (s *RFPStore) ByToken(ctx context.Context, token string) (*models.RFP, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+rfpColumns+` FROM rfps WHERE token = $1`, token)
	r, err := scanRFP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// LatestByStatus returns the most recently created RFP in the given status,
// or nil when none exists. An empty status means any status.
func (s *RFPStore) LatestByStatus(ctx context.Context, status string) (*models.RFP, error) {
	query := `SELECT ` + rfpColumns + ` FROM rfps`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	row := s.pool.QueryRow(ctx, query, args...)
	r, err := scanRFP(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *RFPStore) Update(ctx context.Context, r *models.RFP) error {
	r.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `
		UPDATE rfps
		SET title = $2, description = $3, items = $4, budget = $5, timeline = $6,
		    payment_terms = $7, warranty = $8, status = $9, structured_data = $10,
		    updated_at = $11
		WHERE id = $1
	`, r.ID, r.Title, r.Description, r.Items, r.Budget, r.Timeline,
		r.PaymentTerms, r.Warranty, r.Status, r.StructuredData, r.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *RFPStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE rfps SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *RFPStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM rfps WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
