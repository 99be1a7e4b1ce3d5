package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/itgovern/carga/internal/domain"
)

// ErrRunNotFound is returned by Get for an id no run was stored under.
var ErrRunNotFound = errors.New("run not found")

// RunRepository persists finished ingestion runs for later inspection.
// Implementations must be safe to skip entirely: the pipeline treats
// history as best-effort.
type RunRepository interface {
	Record(ctx context.Context, run domain.IngestionRun) error
	Get(ctx context.Context, id uuid.UUID) (domain.IngestionRun, error)
	List(ctx context.Context, limit, offset int) ([]domain.IngestionRun, error)
}
