package techid

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/itgovern/carga/internal/depfile"
	"github.com/itgovern/carga/internal/logging"
)

// Handler exposes the identifier flow as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint accepting a
// multipart form: the manifest under "file" and the application name
// under "nome".
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

	appName := r.FormValue("nome")

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "manifest file is required", http.StatusBadRequest)
		return
	}
	content, err := io.ReadAll(file)
	_ = file.Close()
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read %s: %v", header.Filename, err), http.StatusBadRequest)
		return
	}

	logger := logging.FromContext(r.Context())
	logger.Info("technology identification started", "file", header.Filename, "application", appName)

	report, err := h.service.Identify(r.Context(), header.Filename, content, appName)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrApplicationName) || errors.Is(err, depfile.ErrUnsupportedManifest) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	logger.Info("technology identification finished",
		"platform", report.Manifest.Platform,
		"technologies", len(report.Technologies),
		"linked", report.Linked,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
}
