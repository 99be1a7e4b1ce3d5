package domain

import (
	"time"

	"github.com/google/uuid"
)

// Severity tags one log line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// LogEntry is one human-readable line of the run's chronological log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
}

// FileSummary aggregates the outcomes of one file. The counts always
// satisfy Succeeded + Failed == TotalRecords.
type FileSummary struct {
	FileID       uuid.UUID           `json:"file_id"`
	FileName     string              `json:"file_name"`
	EntityType   EntityType          `json:"entity_type,omitempty"`
	Status       FileStatus          `json:"status"`
	TotalRecords int                 `json:"total_records"`
	Succeeded    int                 `json:"succeeded"`
	Failed       int                 `json:"failed"`
	Outcomes     []SubmissionOutcome `json:"outcomes,omitempty"`
	// SkipReason explains why a file never reached submission
	// (unclassified name, parse failure).
	SkipReason string `json:"skip_reason,omitempty"`
}

// IngestionRun is the aggregate result of processing one queue of files.
// The caller owns the value; the pipeline returns it finalized and
// read-only.
type IngestionRun struct {
	ID         uuid.UUID     `json:"id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Files      []FileSummary `json:"files"`
	Log        []LogEntry    `json:"log"`
}

// TotalSucceeded sums succeeded records across all files.
func (r IngestionRun) TotalSucceeded() int {
	total := 0
	for _, f := range r.Files {
		total += f.Succeeded
	}
	return total
}

// TotalFailed sums failed records across all files.
func (r IngestionRun) TotalFailed() int {
	total := 0
	for _, f := range r.Files {
		total += f.Failed
	}
	return total
}
