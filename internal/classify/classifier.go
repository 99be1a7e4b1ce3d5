// Package classify maps uploaded file names to a destination entity type
// and a serialization format. Both decisions are pure string matching so
// callers can rely on identical answers for identical names.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/itgovern/carga/internal/domain"
)

// Format tags how a file's content should be decoded.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Result is the classifier's answer for one file name. EntityType is
// empty when no rule matched; the file should then be skipped with a
// warning rather than treated as an error.
type Result struct {
	EntityType domain.EntityType
	Format     Format
	Matched    bool
}

// Classify inspects a file name and resolves its entity type and format.
// Entity rules are applied in registry order, first match wins; a rule
// matches when the lowercased name contains every keyword of the rule.
func Classify(fileName string) Result {
	result := Result{Format: DetectFormat(fileName)}

	name := strings.ToLower(fileName)
	for _, cfg := range domain.Entities() {
		if matchesAll(name, cfg.Keywords) {
			result.EntityType = cfg.Type
			result.Matched = true
			break
		}
	}
	return result
}

// DetectFormat derives the serialization format from the file extension.
// Unknown extensions default to CSV, matching the published file-format
// contract.
func DetectFormat(fileName string) Format {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

func matchesAll(name string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(name, kw) {
			return false
		}
	}
	return len(keywords) > 0
}
