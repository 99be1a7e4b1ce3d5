// Package samples renders downloadable CSV templates from the entity
// registry: the expected header followed by the registry's example rows.
package samples

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itgovern/carga/internal/domain"
)

// ErrUnknownEntity is returned for a type the registry does not carry.
var ErrUnknownEntity = errors.New("tipo de entidade desconhecido")

// CSV builds the sample file for the given entity type.
func CSV(entityType domain.EntityType) ([]byte, error) {
	config, ok := domain.LookupEntity(entityType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, entityType)
	}

	lines := make([]string, 0, len(config.SampleRows)+1)
	lines = append(lines, strings.Join(config.Fields, ","))
	lines = append(lines, config.SampleRows...)
	return []byte(strings.Join(lines, "\n")), nil
}

// FileName names the download the way the dashboard did.
func FileName(entityType domain.EntityType) string {
	return fmt.Sprintf("exemplo-%s.csv", entityType)
}
