package domain

import (
	"fmt"
	"strings"
)

// SubmissionFailure describes why one record's remote create failed.
// The pieces stay separate so callers can inspect them; Message renders
// the display form.
type SubmissionFailure struct {
	StatusCode    int      `json:"status_code,omitempty"`
	ServerMessage string   `json:"server_message,omitempty"`
	Details       string   `json:"details,omitempty"`
	MissingFields []string `json:"missing_fields,omitempty"`
	// TransportErr carries network/timeout errors; StatusCode is zero
	// when set.
	TransportErr string `json:"transport_err,omitempty"`
}

// Message composes the human-readable error line.
func (f SubmissionFailure) Message() string {
	if f.TransportErr != "" {
		return f.TransportErr
	}
	msg := f.ServerMessage
	if f.Details != "" {
		msg += fmt.Sprintf(" | Detalhes: %s", f.Details)
	}
	if len(f.MissingFields) > 0 {
		msg += fmt.Sprintf(" | Campos faltando: %s", strings.Join(f.MissingFields, ", "))
	}
	return msg
}

// SubmissionOutcome is the immutable result of attempting to create one
// record. RecordIndex is the record's 1-based position within its file.
type SubmissionOutcome struct {
	RecordIndex int                `json:"record_index"`
	Succeeded   bool               `json:"succeeded"`
	CreatedID   string             `json:"created_id,omitempty"`
	Failure     *SubmissionFailure `json:"failure,omitempty"`
}

// ErrorMessage returns the failure's display form, or "" on success.
func (o SubmissionOutcome) ErrorMessage() string {
	if o.Succeeded || o.Failure == nil {
		return ""
	}
	return o.Failure.Message()
}
