// Package extract turns raw uploaded bytes into ordered flat records
// under a format decided by the classifier. Parsing is deliberately
// permissive about shape: keys come from the file itself and validation
// is left to the backend.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/itgovern/carga/internal/classify"
	"github.com/itgovern/carga/internal/domain"
)

// ErrEmptyFile is wrapped by ParseError when a CSV file has no data rows.
var ErrEmptyFile = errors.New("arquivo vazio ou sem dados")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// ParseError marks content that could not be decoded under its detected
// format. It is fatal to the file, not to the run.
type ParseError struct {
	Format classify.Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract parses content into records according to format. Records keep
// file order and are reported 1-based by later stages.
func Extract(content []byte, format classify.Format) ([]domain.Record, error) {
	switch format {
	case classify.FormatCSV:
		return extractCSV(content)
	case classify.FormatJSON:
		return extractJSON(content)
	case classify.FormatYAML:
		return extractYAML(content)
	case classify.FormatXLSX:
		return extractXLSX(content)
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("formato desconhecido: %s", format)}
	}
}

// extractCSV splits the content into non-empty lines, treats the first as
// the header, and zips each following line positionally against it.
// Fields are split on bare commas: quoting is not interpreted, so commas
// inside values are not supported. Missing trailing fields default to the
// empty string; extra trailing fields are dropped.
func extractCSV(content []byte) ([]domain.Record, error) {
	content = bytes.TrimPrefix(content, byteOrderMark)

	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, &ParseError{Format: classify.FormatCSV, Err: ErrEmptyFile}
	}

	header := splitFields(lines[0])
	records := make([]domain.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := splitFields(line)
		record := make(domain.Record, len(header))
		for idx, field := range header {
			if idx < len(values) {
				record[field] = values[idx]
			} else {
				record[field] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// extractJSON accepts either a top-level array of flat objects or a
// single flat object, which is wrapped as a one-element sequence.
func extractJSON(content []byte) ([]domain.Record, error) {
	var raw any
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, &ParseError{Format: classify.FormatJSON, Err: err}
	}
	return recordsFromValue(raw, classify.FormatJSON)
}

// extractYAML mirrors the JSON rules for YAML documents.
func extractYAML(content []byte) ([]domain.Record, error) {
	var raw any
	if err := yaml.Unmarshal(content, &raw); err != nil {
		return nil, &ParseError{Format: classify.FormatYAML, Err: err}
	}
	return recordsFromValue(raw, classify.FormatYAML)
}

func recordsFromValue(raw any, format classify.Format) ([]domain.Record, error) {
	switch value := raw.(type) {
	case []any:
		records := make([]domain.Record, 0, len(value))
		for idx, item := range value {
			obj, ok := normalizeObject(item)
			if !ok {
				return nil, &ParseError{
					Format: format,
					Err:    fmt.Errorf("elemento %d não é um objeto", idx+1),
				}
			}
			records = append(records, obj)
		}
		return records, nil
	default:
		obj, ok := normalizeObject(raw)
		if !ok {
			return nil, &ParseError{
				Format: format,
				Err:    errors.New("conteúdo não é um objeto nem uma lista de objetos"),
			}
		}
		return []domain.Record{obj}, nil
	}
}

// normalizeObject accepts the map shapes the two decoders produce.
// yaml.v3 may key nested maps by any, so those are re-keyed by their
// string form.
func normalizeObject(raw any) (domain.Record, bool) {
	switch obj := raw.(type) {
	case map[string]any:
		return domain.Record(obj), true
	case map[any]any:
		record := make(domain.Record, len(obj))
		for key, value := range obj {
			record[fmt.Sprint(key)] = value
		}
		return record, true
	default:
		return nil, false
	}
}

// extractXLSX reads the first sheet; the first row is the header and each
// following non-empty row becomes one record, zipped positionally like
// CSV rows.
func extractXLSX(content []byte) ([]domain.Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ParseError{Format: classify.FormatXLSX, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Format: classify.FormatXLSX, Err: errors.New("planilha sem abas")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: classify.FormatXLSX, Err: err}
	}
	if len(rows) < 2 {
		return nil, &ParseError{Format: classify.FormatXLSX, Err: ErrEmptyFile}
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}

	var records []domain.Record
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		record := make(domain.Record, len(header))
		for idx, field := range header {
			if idx < len(row) {
				record[field] = strings.TrimSpace(row[idx])
			} else {
				record[field] = ""
			}
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil, &ParseError{Format: classify.FormatXLSX, Err: ErrEmptyFile}
	}
	return records, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
