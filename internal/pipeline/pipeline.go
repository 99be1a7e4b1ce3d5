// Package pipeline orchestrates the bulk data load: classify each
// uploaded file, extract its records, submit them to the backend and
// aggregate the results into one ingestion run.
package pipeline

import (
	"context"
	"time"

	"github.com/itgovern/carga/internal/classify"
	"github.com/itgovern/carga/internal/domain"
	"github.com/itgovern/carga/internal/extract"
	"github.com/itgovern/carga/internal/repository"
	"github.com/itgovern/carga/internal/run"
	"github.com/itgovern/carga/internal/submit"
)

// Service runs ingestion over a queue of uploaded files.
type Service struct {
	driver  *submit.Driver
	runRepo repository.RunRepository
}

// NewService wires a pipeline against a submission driver. runRepo may
// be nil; finished runs are then not persisted.
func NewService(driver *submit.Driver, runRepo repository.RunRepository) *Service {
	return &Service{driver: driver, runRepo: runRepo}
}

// Process ingests every file in queue order, front to back, each file at
// most once. Per-file and per-record failures are converted to summaries
// and log entries; they never abort sibling files.
func (s *Service) Process(ctx context.Context, files []domain.UploadedFile) (domain.IngestionRun, error) {
	started := time.Now()
	rec := run.NewRecorder()
	rec.Logf(domain.SeverityInfo, "Iniciando processamento em lote...")

	summaries := make([]domain.FileSummary, 0, len(files))
	for _, file := range files {
		summaries = append(summaries, s.processFile(ctx, file, rec))
	}

	rec.Logf(domain.SeveritySuccess, "✓ Processamento em lote concluído")

	result := run.Combine(summaries, rec.Entries(), started, time.Now())

	if s.runRepo != nil {
		if err := s.runRepo.Record(ctx, result); err != nil {
			// History is best-effort; the run itself already finished.
			rec.Logf(domain.SeverityWarning, "Falha ao registrar histórico da carga: %v", err)
			result.Log = rec.Entries()
		}
	}

	return result, nil
}

func (s *Service) processFile(ctx context.Context, file domain.UploadedFile, rec *run.Recorder) domain.FileSummary {
	classification := classify.Classify(file.Name)
	if !classification.Matched {
		reason := "não foi possível detectar o tipo de entidade"
		rec.Logf(domain.SeverityWarning, "Não foi possível detectar o tipo de entidade para: %s", file.Name)
		return run.Skipped(file, domain.FileStatusPending, reason)
	}

	rec.Logf(domain.SeverityInfo, "Processando: %s...", file.Name)

	records, err := extract.Extract(file.Content, classification.Format)
	if err != nil {
		rec.Logf(domain.SeverityError, "✗ Erro ao processar %s: %v", file.Name, err)
		return run.Skipped(file, domain.FileStatusError, err.Error())
	}

	rec.Logf(domain.SeverityInfo, "%d registros encontrados", len(records))

	outcomes, err := s.driver.Submit(ctx, records, classification.EntityType)
	if err != nil {
		rec.Logf(domain.SeverityError, "✗ Erro ao processar %s: %v", file.Name, err)
		return run.Skipped(file, domain.FileStatusError, err.Error())
	}

	for _, outcome := range outcomes {
		rec.LogOutcome(outcome)
	}

	summary := run.Aggregate(file, classification.EntityType, outcomes)
	if summary.Failed == 0 {
		rec.Logf(domain.SeveritySuccess, "✓ %s: %d/%d registros importados",
			file.Name, summary.Succeeded, summary.TotalRecords)
	} else {
		rec.Logf(domain.SeverityWarning, "⚠ %s: %d/%d importados, %d erros",
			file.Name, summary.Succeeded, summary.TotalRecords, summary.Failed)
	}
	return summary
}
