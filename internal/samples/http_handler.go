package samples

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itgovern/carga/internal/domain"
)

// EntitiesHandler lists the entity registry: type, label, endpoint and
// expected fields for each supported load.
func EntitiesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(domain.Entities())
	}
}

// CSVHandler serves the sample CSV for the {tipo} route parameter.
func CSVHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entityType := domain.EntityType(chi.URLParam(r, "tipo"))

		content, err := CSV(entityType)
		if err != nil {
			if errors.Is(err, ErrUnknownEntity) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", FileName(entityType)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(content)
	}
}
