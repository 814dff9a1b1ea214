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

type ComparisonStore struct {
	pool *pgxpool.Pool
}

func NewComparisonStore(pool *pgxpool.Pool) *ComparisonStore {
	return &ComparisonStore{pool: pool}
}

// Upsert replaces any existing comparison for the same RFP; regenerating
// a comparison always supersedes the previous analysis.
func (s *ComparisonStore) Upsert(ctx context.Context, c *models.Comparison) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO comparisons (id, rfp_id, proposal_ids, scores, summary, recommendation, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (rfp_id) DO UPDATE SET
			proposal_ids   = EXCLUDED.proposal_ids,
			scores         = EXCLUDED.scores,
			summary        = EXCLUDED.summary,
			recommendation = EXCLUDED.recommendation,
			updated_at     = EXCLUDED.updated_at
	`, c.ID, c.RFPID, c.ProposalIDs, c.Scores, c.Summary, c.Recommendation, c.CreatedAt, c.UpdatedAt)
	return err
}

func (s *ComparisonStore) ByRFP(ctx context.Context, rfpID uuid.UUID) (*models.Comparison, error) {
	var c models.Comparison
	err := s.pool.QueryRow(ctx, `
		SELECT id, rfp_id, proposal_ids, scores, summary, recommendation, created_at, updated_at
		FROM comparisons WHERE rfp_id = $1
	`, rfpID).Scan(&c.ID, &c.RFPID, &c.ProposalIDs, &c.Scores, &c.Summary,
		&c.Recommendation, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
