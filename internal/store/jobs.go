package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procurehq/rfpflow/internal/models"
)

type JobHistoryStore struct {
	pool *pgxpool.Pool
}

func NewJobHistoryStore(pool *pgxpool.Pool) *JobHistoryStore {
	return &JobHistoryStore{pool: pool}
}

// Start records the beginning of a job run with status "running".
func (s *JobHistoryStore) Start(ctx context.Context, jobName, triggeredBy string) (*models.JobRun, error) {
	run := &models.JobRun{
		ID:          uuid.New(),
		JobName:     jobName,
		Status:      models.JobStatusRunning,
		TriggeredBy: triggeredBy,
		StartTime:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO job_history (id, job_name, status, triggered_by, start_time)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.JobName, run.Status, run.TriggeredBy, run.StartTime)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Finish transitions a run from "running" to its terminal status exactly
// once, stamping end time and duration.
func (s *JobHistoryStore) Finish(ctx context.Context, run *models.JobRun, status string, result *models.CheckResult, errMsg *string) error {
	end := time.Now().UTC()
	duration := end.Sub(run.StartTime).Milliseconds()

	run.Status = status
	run.EndTime = &end
	run.DurationMS = &duration
	run.Result = result
	run.Error = errMsg

	tag, err := s.pool.Exec(ctx, `
		UPDATE job_history
		SET status = $2, end_time = $3, duration_ms = $4, result = $5, error = $6
		WHERE id = $1 AND status = 'running'
	`, run.ID, status, end, duration, result, errMsg)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *JobHistoryStore) Recent(ctx context.Context, jobName string, limit int) ([]models.JobRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, job_name, status, triggered_by, start_time, end_time, duration_ms, result, error
		FROM job_history
		WHERE job_name = $1
		ORDER BY start_time DESC
		LIMIT $2
	`, jobName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.JobRun
	for rows.Next() {
		var r models.JobRun
		if err := rows.Scan(&r.ID, &r.JobName, &r.Status, &r.TriggeredBy, &r.StartTime,
			&r.EndTime, &r.DurationMS, &r.Result, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
