package jobs

import (
	"context"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/models"
)

// DefaultSchedule checks for vendor mail every 15 minutes.
const DefaultSchedule = "@every 15m"

// Scheduler runs the email check on a fixed interval. A tick that finds
// the guard held is skipped silently; the next tick tries again.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
}

func NewScheduler(runner *Runner, schedule string) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s := &Scheduler{
		cron:   cron.New(),
		runner: runner,
	}

	_, err := s.cron.AddFunc(schedule, func() {
		result, err := s.runner.Run(context.Background(), models.TriggerScheduled)
		if err != nil {
			log.WithError(err).Error("scheduled email check failed")
			return
		}
		if result.InProgress {
			return
		}
		log.WithFields(log.Fields{
			"processed": result.Processed,
			"failed":    result.Failed,
		}).Info("scheduled email check finished")
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info("email check scheduler started")
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("email check scheduler stopped")
}
