// Package submit sends extracted records to the backend REST API, one
// create-request per record, and reports a per-record outcome. A failed
// record never aborts its siblings; the caller receives exactly one
// outcome per input record.
package submit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/itgovern/carga/internal/domain"
)

// Transport issues HTTP requests. *http.Client satisfies it; tests
// substitute stubs. Authentication, if any, is the transport's concern.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// Driver constructs and sends create-requests for records of one entity
// type.
type Driver struct {
	baseURL   string
	transport Transport
	strategy  Strategy
}

// Option adjusts driver construction.
type Option func(*Driver)

// WithStrategy overrides the default sequential submission order.
func WithStrategy(s Strategy) Option {
	return func(d *Driver) { d.strategy = s }
}

// NewDriver wires a driver against a backend base URL.
func NewDriver(baseURL string, transport Transport, opts ...Option) *Driver {
	d := &Driver{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		strategy:  Sequential{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit sends every record to the entity's endpoint and returns one
// outcome per record, in record order. Records are attempted exactly
// once; there are no retries.
func (d *Driver) Submit(ctx context.Context, records []domain.Record, entityType domain.EntityType) ([]domain.SubmissionOutcome, error) {
	cfg, ok := domain.LookupEntity(entityType)
	if !ok {
		return nil, fmt.Errorf("tipo de entidade desconhecido: %s", entityType)
	}

	endpoint := d.baseURL + cfg.Endpoint
	return d.strategy.Run(ctx, records, func(ctx context.Context, index int, record domain.Record) domain.SubmissionOutcome {
		return d.send(ctx, endpoint, index, record)
	}), nil
}

func (d *Driver) send(ctx context.Context, endpoint string, index int, record domain.Record) domain.SubmissionOutcome {
	outcome := domain.SubmissionOutcome{RecordIndex: index}

	body, err := json.Marshal(record)
	if err != nil {
		outcome.Failure = &domain.SubmissionFailure{TransportErr: fmt.Sprintf("falha ao serializar registro: %v", err)}
		return outcome
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		outcome.Failure = &domain.SubmissionFailure{TransportErr: err.Error()}
		return outcome
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.transport.Do(req)
	if err != nil {
		outcome.Failure = &domain.SubmissionFailure{TransportErr: err.Error()}
		return outcome
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome.Failure = &domain.SubmissionFailure{
			StatusCode:   resp.StatusCode,
			TransportErr: fmt.Sprintf("falha ao ler resposta: %v", err),
		}
		return outcome
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		outcome.Succeeded = true
		outcome.CreatedID = createdID(respBody)
		return outcome
	}

	failure := DecodeFailure(respBody)
	failure.StatusCode = resp.StatusCode
	outcome.Failure = &failure
	return outcome
}

// createdID pulls the identifier out of a 2xx response body. Bodies
// without an id field yield an empty id, not a failure.
func createdID(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if id, ok := payload["id"]; ok {
		return fmt.Sprint(id)
	}
	return ""
}

// DecodeFailure mines a non-2xx response body for structure. JSON bodies
// contribute error/message, details and missing-field lists; anything
// else is kept verbatim as the server message.
func DecodeFailure(body []byte) domain.SubmissionFailure {
	raw := strings.TrimSpace(string(body))

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.SubmissionFailure{ServerMessage: raw}
	}

	failure := domain.SubmissionFailure{}
	if msg, ok := payload["error"].(string); ok && msg != "" {
		failure.ServerMessage = msg
	} else if msg, ok := payload["message"].(string); ok && msg != "" {
		failure.ServerMessage = msg
	} else {
		failure.ServerMessage = raw
	}

	if details, ok := payload["details"]; ok {
		if encoded, err := json.Marshal(details); err == nil {
			failure.Details = string(encoded)
		}
	}

	if missing, ok := payload["missing"].([]any); ok {
		for _, field := range missing {
			failure.MissingFields = append(failure.MissingFields, fmt.Sprint(field))
		}
	}

	return failure
}
