// Package jobs ties the ingestion pipeline to its two entry points: the
// fixed-interval scheduler and the manual HTTP trigger. Both share one
// Guard and record every attempt in the run history.
package jobs

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/ingest"
	"github.com/procurehq/rfpflow/internal/models"
)

// Checker is one ingestion pass.
type Checker interface {
	Run(ctx context.Context) (*models.CheckResult, error)
}

// History records job runs. Writes are best-effort: failures never mask
// the pipeline's own outcome.
type History interface {
	Start(ctx context.Context, jobName, triggeredBy string) (*models.JobRun, error)
	Finish(ctx context.Context, run *models.JobRun, status string, result *models.CheckResult, errMsg *string) error
}

type Runner struct {
	Guard   *ingest.Guard
	Checker Checker
	History History
}

// Run executes one guarded ingestion attempt. When another pass already
// holds the guard it returns a contention result immediately without
// touching the mailbox; that is a successful no-op, not an error.
func (r *Runner) Run(ctx context.Context, trigger string) (*models.CheckResult, error) {
	if !r.Guard.TryAcquire() {
		log.WithField("trigger", trigger).Info("email check already in progress, skipping")
		return &models.CheckResult{
			Emails:     []models.EmailOutcome{},
			Message:    "email check already in progress, please try again in a moment",
			InProgress: true,
		}, nil
	}
	defer r.Guard.SetRunning(false)

	run, err := r.History.Start(ctx, models.EmailCheckJobName, trigger)
	if err != nil {
		// History is bookkeeping; the pass proceeds without it.
		log.WithError(err).Warn("failed to create job history record")
		run = nil
	}

	result, err := r.Checker.Run(ctx)

	if run != nil {
		var finishErr error
		if err != nil {
			msg := err.Error()
			finishErr = r.History.Finish(ctx, run, models.JobStatusFailed, nil, &msg)
		} else {
			finishErr = r.History.Finish(ctx, run, models.JobStatusSuccess, result, nil)
		}
		if finishErr != nil {
			log.WithError(finishErr).Warn("failed to finalize job history record")
		}
	}

	return result, err
}
