package classify

import (
	"testing"

	"github.com/itgovern/carga/internal/domain"
)

func TestClassifyByKeyword(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		want     domain.EntityType
		format   Format
	}{
		{"technologies csv", "tecnologias.csv", domain.EntityTecnologia, FormatCSV},
		{"collaborators json", "colaboradores-2025.json", domain.EntityColaborador, FormatJSON},
		{"leave types needs both keywords", "tipos-afastamento.csv", domain.EntityTipoAfastamento, FormatCSV},
		{"business processes", "PROCESSOS-negocio.CSV", domain.EntityProcessoNegocio, FormatCSV},
		{"applications partial keyword", "aplicacoes_prod.json", domain.EntityAplicacao, FormatJSON},
		{"capabilities", "capacidades-negocio.yaml", domain.EntityCapacidadeNegocio, FormatYAML},
		{"slas", "slas.csv", domain.EntitySLA, FormatCSV},
		{"runbooks xlsx", "runbooks.xlsx", domain.EntityRunbook, FormatXLSX},
		{"project structures", "estruturas-projeto.csv", domain.EntityEstruturaProjeto, FormatCSV},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.fileName)
			if !got.Matched {
				t.Fatalf("expected %q to classify", tc.fileName)
			}
			if got.EntityType != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got.EntityType)
			}
			if got.Format != tc.format {
				t.Fatalf("expected format %s, got %s", tc.format, got.Format)
			}
		})
	}
}

func TestClassifyUnknownName(t *testing.T) {
	got := Classify("randomfile.dat")
	if got.Matched {
		t.Fatalf("expected no match, got %s", got.EntityType)
	}
	if got.EntityType != "" {
		t.Fatalf("expected empty entity type, got %s", got.EntityType)
	}
	// unknown extensions still default to CSV
	if got.Format != FormatCSV {
		t.Fatalf("expected csv fallback, got %s", got.Format)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify("tecnologias.json")
	second := Classify("tecnologias.json")
	if first != second {
		t.Fatalf("classification not deterministic: %+v vs %+v", first, second)
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// "tipos-afastamento-colaboradores.csv" matches both the leave-type
	// rule and the collaborator rule; registry order decides.
	got := Classify("tipos-afastamento-colaboradores.csv")
	if got.EntityType != domain.EntityTipoAfastamento {
		t.Fatalf("expected first rule to win, got %s", got.EntityType)
	}
}

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"a.json":  FormatJSON,
		"a.JSON":  FormatJSON,
		"a.yaml":  FormatYAML,
		"a.yml":   FormatYAML,
		"a.xlsx":  FormatXLSX,
		"a.csv":   FormatCSV,
		"a.txt":   FormatCSV,
		"no-ext":  FormatCSV,
		"b.dat":   FormatCSV,
		"b.CSV":   FormatCSV,
		"c.xlsx ": FormatCSV, // trailing space is not an xlsx extension
	}
	for name, want := range cases {
		if got := DetectFormat(name); got != want {
			t.Fatalf("DetectFormat(%q) = %s, want %s", name, got, want)
		}
	}
}
