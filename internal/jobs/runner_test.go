package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procurehq/rfpflow/internal/ingest"
	"github.com/procurehq/rfpflow/internal/models"
)

type fakeChecker struct {
	mu      sync.Mutex
	calls   int
	result  *models.CheckResult
	err     error
	block   chan struct{} // when set, Run waits until closed
	started chan struct{} // signals Run has begun
}

func (f *fakeChecker) Run(ctx context.Context) (*models.CheckResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

type fakeHistory struct {
	startErr   error
	finishErr  error
	started    []string
	finished   []string
	lastResult *models.CheckResult
	lastErrMsg *string
}

func (f *fakeHistory) Start(_ context.Context, jobName, triggeredBy string) (*models.JobRun, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.started = append(f.started, triggeredBy)
	return &models.JobRun{JobName: jobName, TriggeredBy: triggeredBy, Status: models.JobStatusRunning}, nil
}

func (f *fakeHistory) Finish(_ context.Context, run *models.JobRun, status string, result *models.CheckResult, errMsg *string) error {
	f.finished = append(f.finished, status)
	f.lastResult = result
	f.lastErrMsg = errMsg
	return f.finishErr
}

func TestRunRecordsHistory(t *testing.T) {
	want := &models.CheckResult{Processed: 2, Emails: []models.EmailOutcome{}}
	history := &fakeHistory{}
	r := &Runner{
		Guard:   ingest.NewGuard(),
		Checker: &fakeChecker{result: want},
		History: history,
	}

	result, err := r.Run(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Same(t, want, result)

	assert.Equal(t, []string{models.TriggerManual}, history.started)
	assert.Equal(t, []string{models.JobStatusSuccess}, history.finished)
	assert.Same(t, want, history.lastResult)
	assert.False(t, r.Guard.IsRunning(), "guard must be released after the pass")
}

func TestRunFailureRecordedAndGuardReleased(t *testing.T) {
	history := &fakeHistory{}
	r := &Runner{
		Guard:   ingest.NewGuard(),
		Checker: &fakeChecker{err: errors.New("imap connection refused")},
		History: history,
	}

	_, err := r.Run(context.Background(), models.TriggerScheduled)
	require.Error(t, err)

	assert.Equal(t, []string{models.JobStatusFailed}, history.finished)
	require.NotNil(t, history.lastErrMsg)
	assert.Contains(t, *history.lastErrMsg, "connection refused")
	assert.False(t, r.Guard.IsRunning())
}

func TestRunContentionReturnsInProgress(t *testing.T) {
	block := make(chan struct{})
	started := make(chan struct{})
	checker := &fakeChecker{
		result:  &models.CheckResult{Emails: []models.EmailOutcome{}},
		block:   block,
		started: started,
	}
	history := &fakeHistory{}
	r := &Runner{Guard: ingest.NewGuard(), Checker: checker, History: history}

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = r.Run(context.Background(), models.TriggerScheduled)
	}()
	<-started

	result, err := r.Run(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.True(t, result.InProgress)
	assert.Zero(t, result.Processed)
	assert.NotNil(t, result.Emails)
	assert.Empty(t, result.Emails)

	close(block)
	<-firstDone

	checker.mu.Lock()
	defer checker.mu.Unlock()
	assert.Equal(t, 1, checker.calls, "contended run must not touch the mailbox")
	assert.Len(t, history.started, 1, "contended run must not appear in history")
}

func TestRunHistoryFailuresAreBestEffort(t *testing.T) {
	want := &models.CheckResult{Processed: 1, Emails: []models.EmailOutcome{}}
	r := &Runner{
		Guard:   ingest.NewGuard(),
		Checker: &fakeChecker{result: want},
		History: &fakeHistory{startErr: errors.New("db down")},
	}

	result, err := r.Run(context.Background(), models.TriggerManual)
	require.NoError(t, err)
	assert.Same(t, want, result)
	assert.False(t, r.Guard.IsRunning())
}
