// Package run accumulates per-record outcomes into file summaries and a
// final ingestion run, alongside an append-only chronological log.
package run

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itgovern/carga/internal/domain"
)

// Recorder collects the run's log. Entries are append-only and keep
// real-time processing order; already-emitted lines are never rewritten.
type Recorder struct {
	now     func() time.Time
	entries []domain.LogEntry
}

// NewRecorder builds a recorder stamping entries with the wall clock.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderAt fixes the clock, for deterministic tests.
func NewRecorderAt(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Logf appends one formatted entry.
func (r *Recorder) Logf(severity domain.Severity, format string, args ...any) {
	r.entries = append(r.entries, domain.LogEntry{
		Timestamp: r.now(),
		Severity:  severity,
		Message:   fmt.Sprintf(format, args...),
	})
}

// Entries returns a copy of the log so far.
func (r *Recorder) Entries() []domain.LogEntry {
	out := make([]domain.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// LogOutcome emits the per-record line for one outcome.
func (r *Recorder) LogOutcome(outcome domain.SubmissionOutcome) {
	if outcome.Succeeded {
		r.Logf(domain.SeveritySuccess, "✓ Linha %d: Importada com sucesso", outcome.RecordIndex)
		return
	}
	r.Logf(domain.SeverityError, "✗ Linha %d: %s", outcome.RecordIndex, outcome.ErrorMessage())
}

// Aggregate reduces one file's outcomes to its summary. Calling it twice
// on the same outcomes yields identical counts; it never mutates its
// input.
func Aggregate(file domain.UploadedFile, entityType domain.EntityType, outcomes []domain.SubmissionOutcome) domain.FileSummary {
	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Succeeded {
			succeeded++
		}
	}
	failed := len(outcomes) - succeeded

	status := domain.FileStatusDone
	if failed > 0 {
		status = domain.FileStatusError
	}

	return domain.FileSummary{
		FileID:       file.ID,
		FileName:     file.Name,
		EntityType:   entityType,
		Status:       status,
		TotalRecords: len(outcomes),
		Succeeded:    succeeded,
		Failed:       failed,
		Outcomes:     outcomes,
	}
}

// Skipped marks a file that never reached submission: unclassified names
// stay pendente-skipped with a warning, parse failures are erro.
func Skipped(file domain.UploadedFile, status domain.FileStatus, reason string) domain.FileSummary {
	return domain.FileSummary{
		FileID:     file.ID,
		FileName:   file.Name,
		Status:     status,
		SkipReason: reason,
	}
}

// Combine finalizes the run from its file summaries and log.
func Combine(summaries []domain.FileSummary, log []domain.LogEntry, started, finished time.Time) domain.IngestionRun {
	return domain.IngestionRun{
		ID:         uuid.New(),
		StartedAt:  started,
		FinishedAt: finished,
		Files:      summaries,
		Log:        log,
	}
}
