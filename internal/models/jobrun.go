package models

import (
	"time"

	"github.com/google/uuid"
)

// Job run statuses and trigger sources.
const (
	JobStatusRunning = "running"
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"

	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
)

// EmailCheckJobName is the fixed job identifier for the ingestion job.
const EmailCheckJobName = "emailCheck"

// EmailOutcome is the per-message result surfaced to callers after an
// ingestion pass.
type EmailOutcome struct {
	Success        bool       `json:"success"`
	Duplicate      bool       `json:"duplicate,omitempty"`
	ProposalID     *uuid.UUID `json:"proposalId,omitempty"`
	ProposalNumber int        `json:"proposalNumber,omitempty"`
	RFPToken       string     `json:"rfpId,omitempty"`
	RFPTitle       string     `json:"rfpTitle,omitempty"`
	VendorName     string     `json:"vendorName,omitempty"`
	VendorEmail    string     `json:"vendorEmail,omitempty"`
	Subject        string     `json:"subject,omitempty"`
	Parsed         bool       `json:"parsed"`
	Error          string     `json:"error,omitempty"`
}

// CheckResult is the aggregate outcome of one ingestion pass.
type CheckResult struct {
	Processed  int            `json:"processed"`
	Failed     int            `json:"failed"`
	Emails     []EmailOutcome `json:"emails"`
	Message    string         `json:"message,omitempty"`
	InProgress bool           `json:"inProgress,omitempty"`
}

// JobRun is one entry in the run history, created when an ingestion
// attempt starts and finalized exactly once when it completes.
type JobRun struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	JobName     string       `db:"job_name" json:"jobName"`
	Status      string       `db:"status" json:"status"`
	TriggeredBy string       `db:"triggered_by" json:"triggeredBy"`
	StartTime   time.Time    `db:"start_time" json:"startTime"`
	EndTime     *time.Time   `db:"end_time" json:"endTime,omitempty"`
	DurationMS  *int64       `db:"duration_ms" json:"duration,omitempty"`
	Result      *CheckResult `db:"result" json:"result,omitempty"`
	Error       *string      `db:"error" json:"error,omitempty"`
}
