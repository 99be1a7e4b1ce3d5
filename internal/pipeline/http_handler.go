package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/itgovern/carga/internal/domain"
	"github.com/itgovern/carga/internal/logging"
)

// Handler exposes the bulk loader as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint accepting one or
// more files in a multipart form under the "files" field.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		http.Error(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	logger := logging.FromContext(r.Context())

	var files []domain.UploadedFile
	for _, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to open %s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		content, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to read %s: %v", header.Filename, err), http.StatusBadRequest)
			return
		}
		files = append(files, domain.NewUploadedFile(header.Filename, content))
	}

	logger.Info("bulk load started", "files", len(files))

	result, err := h.service.Process(r.Context(), files)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	logger.Info("bulk load finished",
		"run_id", result.ID,
		"succeeded", result.TotalSucceeded(),
		"failed", result.TotalFailed(),
	)

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
