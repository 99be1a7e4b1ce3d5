package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/itgovern/carga/internal/domain"
)

type stubTransport struct {
	// responses is consumed in call order; the last entry repeats.
	responses []stubResponse
	requests  []capturedRequest
	onCall    func(call int)
}

type stubResponse struct {
	status int
	body   string
	err    error
}

type capturedRequest struct {
	url  string
	body string
}

func (s *stubTransport) Do(req *http.Request) (*http.Response, error) {
	call := len(s.requests)

	var body string
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	s.requests = append(s.requests, capturedRequest{url: req.URL.String(), body: body})

	if s.onCall != nil {
		s.onCall(call)
	}

	resp := s.responses[len(s.responses)-1]
	if call < len(s.responses) {
		resp = s.responses[call]
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
	}, nil
}

func records(n int) []domain.Record {
	out := make([]domain.Record, n)
	for i := range out {
		out[i] = domain.Record{"sigla": fmt.Sprintf("R%d", i+1)}
	}
	return out
}

func TestSubmitAllSucceed(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: 201, body: `{"id":"t-1"}`},
		{status: 201, body: `{"id":"t-2"}`},
	}}
	driver := NewDriver("http://backend", transport)

	outcomes, err := driver.Submit(context.Background(), records(2), domain.EntityTecnologia)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if !outcome.Succeeded {
			t.Fatalf("outcome %d failed: %s", i, outcome.ErrorMessage())
		}
		if outcome.RecordIndex != i+1 {
			t.Fatalf("expected index %d, got %d", i+1, outcome.RecordIndex)
		}
	}
	if outcomes[0].CreatedID != "t-1" || outcomes[1].CreatedID != "t-2" {
		t.Fatalf("created ids not extracted: %+v", outcomes)
	}
	if transport.requests[0].url != "http://backend/api/tecnologias" {
		t.Fatalf("unexpected endpoint: %s", transport.requests[0].url)
	}
}

func TestSubmitSequentialOrder(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{{status: 201, body: `{"id":"x"}`}}}
	driver := NewDriver("http://backend", transport)

	if _, err := driver.Submit(context.Background(), records(5), domain.EntitySLA); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if len(transport.requests) != 5 {
		t.Fatalf("expected 5 requests, got %d", len(transport.requests))
	}
	for i, req := range transport.requests {
		want := fmt.Sprintf("R%d", i+1)
		if !strings.Contains(req.body, want) {
			t.Fatalf("request %d out of order, body: %s", i, req.body)
		}
	}
}

func TestSubmitPartialFailureContinues(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{status: 201, body: `{"id":"1"}`},
		{status: 400, body: `{"error":"duplicate"}`},
		{status: 201, body: `{"id":"3"}`},
	}}
	driver := NewDriver("http://backend", transport)

	outcomes, err := driver.Submit(context.Background(), records(3), domain.EntityColaborador)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected 3 outcomes, got %d", len(outcomes))
	}
	if !outcomes[0].Succeeded || outcomes[1].Succeeded || !outcomes[2].Succeeded {
		t.Fatalf("unexpected success pattern: %+v", outcomes)
	}
	if outcomes[1].Failure.ServerMessage != "duplicate" {
		t.Fatalf("expected duplicate message, got %q", outcomes[1].Failure.ServerMessage)
	}
	if outcomes[1].Failure.StatusCode != 400 {
		t.Fatalf("expected status 400, got %d", outcomes[1].Failure.StatusCode)
	}
}

func TestSubmitTransportErrorContinues(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{
		{err: errors.New("connection refused")},
		{status: 201, body: `{"id":"2"}`},
	}}
	driver := NewDriver("http://backend", transport)

	outcomes, err := driver.Submit(context.Background(), records(2), domain.EntityRunbook)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if outcomes[0].Succeeded {
		t.Fatal("expected first outcome to fail")
	}
	if outcomes[0].Failure.TransportErr == "" {
		t.Fatalf("expected transport error, got %+v", outcomes[0].Failure)
	}
	if !outcomes[1].Succeeded {
		t.Fatal("transport failure must not abort the run")
	}
}

func TestSubmitUnknownEntity(t *testing.T) {
	driver := NewDriver("http://backend", &stubTransport{responses: []stubResponse{{status: 201}}})
	if _, err := driver.Submit(context.Background(), records(1), domain.EntityType("inexistente")); err == nil {
		t.Fatal("expected error for unknown entity type")
	}
}

func TestSubmitCancellationReportsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := &stubTransport{
		responses: []stubResponse{{status: 201, body: `{"id":"1"}`}},
		onCall: func(call int) {
			if call == 0 {
				cancel()
			}
		},
	}
	driver := NewDriver("http://backend", transport)

	outcomes, err := driver.Submit(ctx, records(3), domain.EntityAplicacao)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("outcome completeness broken: got %d outcomes", len(outcomes))
	}
	if !outcomes[0].Succeeded {
		t.Fatal("first record completed before cancellation")
	}
	for _, outcome := range outcomes[1:] {
		if outcome.Succeeded {
			t.Fatalf("record %d ran after cancellation", outcome.RecordIndex)
		}
		if !strings.Contains(outcome.Failure.TransportErr, "context canceled") {
			t.Fatalf("expected context error, got %q", outcome.Failure.TransportErr)
		}
	}
	if len(transport.requests) != 1 {
		t.Fatalf("expected 1 request before cancellation, got %d", len(transport.requests))
	}
}

func TestPooledPreservesOutcomeOrder(t *testing.T) {
	transport := &stubTransport{responses: []stubResponse{{status: 201, body: `{"id":"x"}`}}}
	driver := NewDriver("http://backend", transport, WithStrategy(Pooled{Workers: 3}))

	outcomes, err := driver.Submit(context.Background(), records(7), domain.EntityTecnologia)
	if err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if len(outcomes) != 7 {
		t.Fatalf("expected 7 outcomes, got %d", len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.RecordIndex != i+1 {
			t.Fatalf("outcomes not merged in input order: %+v", outcomes)
		}
	}
}

func TestDecodeFailure(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"duplicate"}`, "duplicate"},
		{"message fallback", `{"message":"campo inválido"}`, "campo inválido"},
		{"plain text", "internal server error", "internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			failure := DecodeFailure([]byte(tc.body))
			if failure.Message() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, failure.Message())
			}
		})
	}
}

func TestDecodeFailureComposesDetailsAndMissing(t *testing.T) {
	failure := DecodeFailure([]byte(`{"error":"validação","details":{"campo":"sigla"},"missing":["nome","setor"]}`))

	if failure.ServerMessage != "validação" {
		t.Fatalf("unexpected server message: %q", failure.ServerMessage)
	}
	if failure.Details != `{"campo":"sigla"}` {
		t.Fatalf("unexpected details: %q", failure.Details)
	}
	if len(failure.MissingFields) != 2 || failure.MissingFields[0] != "nome" {
		t.Fatalf("unexpected missing fields: %v", failure.MissingFields)
	}

	msg := failure.Message()
	for _, part := range []string{"validação", "Detalhes", "Campos faltando: nome, setor"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("message %q missing %q", msg, part)
		}
	}
}
