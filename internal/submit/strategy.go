package submit

import (
	"context"
	"sync"

	"github.com/itgovern/carga/internal/domain"
)

// sendFunc performs one record's create-request. index is 1-based.
type sendFunc func(ctx context.Context, index int, record domain.Record) domain.SubmissionOutcome

// Strategy decides how records are scheduled against the backend. Every
// implementation must return exactly one outcome per record, ordered by
// record index.
type Strategy interface {
	Run(ctx context.Context, records []domain.Record, send sendFunc) []domain.SubmissionOutcome
}

// Sequential submits records strictly one at a time: record i+1 is not
// sent until record i's response has been fully received. Log lines keep
// input order and the backend never sees a burst. Once cancelled, the
// remaining records are reported as failed with the context error
// instead of being silently dropped.
type Sequential struct{}

func (Sequential) Run(ctx context.Context, records []domain.Record, send sendFunc) []domain.SubmissionOutcome {
	outcomes := make([]domain.SubmissionOutcome, 0, len(records))
	for i, record := range records {
		index := i + 1
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, domain.SubmissionOutcome{
				RecordIndex: index,
				Failure:     &domain.SubmissionFailure{TransportErr: err.Error()},
			})
			continue
		}
		outcomes = append(outcomes, send(ctx, index, record))
	}
	return outcomes
}

// Pooled submits records through a bounded worker pool. Outcomes are
// merged back into input order, so the aggregate report stays
// deterministic even though wire order is not.
type Pooled struct {
	Workers int
}

func (p Pooled) Run(ctx context.Context, records []domain.Record, send sendFunc) []domain.SubmissionOutcome {
	workers := p.Workers
	if workers <= 1 {
		return Sequential{}.Run(ctx, records, send)
	}
	if workers > len(records) {
		workers = len(records)
	}

	outcomes := make([]domain.SubmissionOutcome, len(records))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				index := i + 1
				if err := ctx.Err(); err != nil {
					outcomes[i] = domain.SubmissionOutcome{
						RecordIndex: index,
						Failure:     &domain.SubmissionFailure{TransportErr: err.Error()},
					}
					continue
				}
				outcomes[i] = send(ctx, index, records[i])
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}
