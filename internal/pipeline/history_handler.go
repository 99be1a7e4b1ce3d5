package pipeline

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/itgovern/carga/internal/repository"
)

// HistoryHandler serves stored ingestion runs. Without a configured
// database it answers 503 instead of disappearing from the API.
type HistoryHandler struct {
	repo repository.RunRepository
}

func NewHistoryHandler(repo repository.RunRepository) *HistoryHandler {
	return &HistoryHandler{repo: repo}
}

// List responds with the most recent runs, newest first. Optional
// limit/offset query parameters page through the history.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "run history is not enabled", http.StatusServiceUnavailable)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	runs, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

// Get responds with one run, files and log included.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		http.Error(w, "run history is not enabled", http.StatusServiceUnavailable)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	run, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, run)
}
