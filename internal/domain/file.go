package domain

import (
	"github.com/google/uuid"
)

// FileStatus tracks where an uploaded file sits in its run.
type FileStatus string

const (
	FileStatusPending    FileStatus = "pendente"
	FileStatusProcessing FileStatus = "processando"
	FileStatusDone       FileStatus = "concluido"
	FileStatusError      FileStatus = "erro"
)

// UploadedFile is one file queued for ingestion. Content is read once at
// creation and never mutated afterwards; a file is processed at most once
// per run.
type UploadedFile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Content   []byte    `json:"-"`
	SizeBytes int       `json:"size_bytes"`
}

// NewUploadedFile captures a file's name and raw content.
func NewUploadedFile(name string, content []byte) UploadedFile {
	owned := make([]byte, len(content))
	copy(owned, content)
	return UploadedFile{
		ID:        uuid.New(),
		Name:      name,
		Content:   owned,
		SizeBytes: len(owned),
	}
}

// Record is one flat row/object extracted from a file, keyed by the
// file's own header (CSV) or object shape (JSON/YAML). No schema
// validation happens at parse time; the backend validates on create.
type Record map[string]any
