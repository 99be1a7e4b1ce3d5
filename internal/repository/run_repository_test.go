package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/itgovern/carga/internal/domain"
)

func TestRunRepositoryNilConnection(t *testing.T) {
	repo := NewRunRepository(nil)
	ctx := context.Background()

	if err := repo.Record(ctx, domain.IngestionRun{ID: uuid.New()}); err == nil {
		t.Fatal("Record on an uninitialized repository must fail")
	}
	if _, err := repo.Get(ctx, uuid.New()); err == nil {
		t.Fatal("Get on an uninitialized repository must fail")
	}
	if _, err := repo.List(ctx, 10, 0); err == nil {
		t.Fatal("List on an uninitialized repository must fail")
	}
}
