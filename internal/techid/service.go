// Package techid turns a dependency manifest into catalog entries: it
// checks each dependency against the technology registry, creates the
// missing ones, registers the application and links every resolved
// technology to it.
package techid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/itgovern/carga/internal/depfile"
	"github.com/itgovern/carga/internal/domain"
	"github.com/itgovern/carga/internal/run"
	"github.com/itgovern/carga/internal/submit"
)

// ErrApplicationName is returned when Identify is called without an
// application name.
var ErrApplicationName = errors.New("nome da aplicação é obrigatório")

// TechnologyStatus tracks one dependency across the verification and
// registration steps.
type TechnologyStatus struct {
	Dependency   domain.Dependency `json:"dependencia"`
	Exists       bool              `json:"existe"`
	Registered   bool              `json:"cadastrada"`
	TechnologyID string            `json:"idTecnologia,omitempty"`
	Err          string            `json:"erro,omitempty"`
}

// Report is the result of a full identifier run.
type Report struct {
	Manifest      domain.Manifest    `json:"manifesto"`
	Technologies  []TechnologyStatus `json:"tecnologias"`
	ApplicationID string             `json:"idAplicacao,omitempty"`
	Linked        int                `json:"relacionamentos"`
	Log           []domain.LogEntry  `json:"log"`
}

// Service drives the identifier flow against the governance backend.
type Service struct {
	baseURL   string
	transport submit.Transport
}

func NewService(baseURL string, transport submit.Transport) *Service {
	if transport == nil {
		transport = http.DefaultClient
	}
	return &Service{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
	}
}

// Identify parses the manifest, verifies each dependency against the
// registry, creates the missing technologies, registers the application
// and links the technologies to it. Per-dependency failures are recorded
// and never abort the run.
func (s *Service) Identify(ctx context.Context, fileName string, content []byte, appName string) (Report, error) {
	if strings.TrimSpace(appName) == "" {
		return Report{}, ErrApplicationName
	}

	manifest, err := depfile.Parse(fileName, content)
	if err != nil {
		return Report{}, err
	}

	recorder := run.NewRecorder()
	recorder.Logf(domain.SeverityInfo, "Plataforma detectada: %s (%d dependências)",
		manifest.Platform, len(manifest.Dependencies))

	statuses := s.verify(ctx, recorder, manifest.Dependencies)
	s.registerMissing(ctx, recorder, manifest.Platform, statuses)

	report := Report{Manifest: manifest, Technologies: statuses}
	report.ApplicationID, report.Linked = s.registerApplication(ctx, recorder, appName, manifest.Platform, statuses)
	report.Log = recorder.Entries()
	return report, nil
}

// verify checks each dependency with GET /api/tecnologias?nome=<name>.
// An empty result or a 404 means the technology is missing; other
// failures are recorded on the status and treated as missing too.
func (s *Service) verify(ctx context.Context, recorder *run.Recorder, deps []domain.Dependency) []TechnologyStatus {
	recorder.Logf(domain.SeverityInfo, "Verificando tecnologias na base de dados...")

	statuses := make([]TechnologyStatus, 0, len(deps))
	for _, dep := range deps {
		status := TechnologyStatus{Dependency: dep}

		endpoint := s.baseURL + "/api/tecnologias?nome=" + url.QueryEscape(dep.Name)
		body, statusCode, err := s.get(ctx, endpoint)
		switch {
		case err != nil:
			status.Err = err.Error()
			recorder.Logf(domain.SeverityError, "Erro ao verificar %s: %v", dep.Name, err)
		case statusCode == http.StatusNotFound:
			recorder.Logf(domain.SeverityWarning, "✗ %s não encontrada (404)", dep.Name)
		case statusCode < 200 || statusCode >= 300:
			status.Err = fmt.Sprintf("HTTP %d", statusCode)
			recorder.Logf(domain.SeverityError, "Erro ao verificar %s: HTTP %d", dep.Name, statusCode)
		default:
			if id, ok := firstListedID(body); ok {
				status.Exists = true
				status.TechnologyID = id
				recorder.Logf(domain.SeverityInfo, "✓ %s já existe", dep.Name)
			} else {
				recorder.Logf(domain.SeverityWarning, "✗ %s não encontrada", dep.Name)
			}
		}
		statuses = append(statuses, status)
	}

	missing := 0
	for _, status := range statuses {
		if !status.Exists {
			missing++
		}
	}
	recorder.Logf(domain.SeverityInfo, "Verificação concluída: %d tecnologias precisam ser cadastradas", missing)
	return statuses
}

// registerMissing creates each missing technology with POST
// /api/tecnologias, mutating the statuses in place.
func (s *Service) registerMissing(ctx context.Context, recorder *run.Recorder, platform domain.Platform, statuses []TechnologyStatus) {
	recorder.Logf(domain.SeverityInfo, "Iniciando cadastro de tecnologias e aplicação...")

	existed, registered, failed := 0, 0, 0
	for i := range statuses {
		status := &statuses[i]
		if status.Exists {
			existed++
			continue
		}

		dep := status.Dependency
		recorder.Logf(domain.SeverityInfo, "Cadastrando %s v%s...", dep.Name, dep.Version)

		payload := map[string]any{
			"nome":                 dep.Name,
			"versaoRelease":        dep.Version,
			"categoria":            "Biblioteca",
			"status":               "Ativa",
			"fornecedorFabricante": string(platform),
			"tipoLicenciamento":    "Open Source",
			"maturidadeInterna":    "Adotada",
			"nivelSuporteInterno":  "Sem Suporte Interno",
			"ambientes": map[string]bool{
				"dev": true, "qa": true, "prod": true,
				"cloud": true, "onPremise": true,
			},
		}
		body, statusCode, err := s.post(ctx, s.baseURL+"/api/tecnologias", payload)
		switch {
		case err != nil:
			status.Err = err.Error()
			failed++
			recorder.Logf(domain.SeverityError, "✗ Erro ao cadastrar %s: %v", dep.Name, err)
		case statusCode < 200 || statusCode >= 300:
			status.Err = fmt.Sprintf("HTTP %d: %s", statusCode, strings.TrimSpace(string(body)))
			failed++
			recorder.Logf(domain.SeverityError, "✗ Erro ao cadastrar %s: %d - %s",
				dep.Name, statusCode, strings.TrimSpace(string(body)))
		default:
			status.Registered = true
			status.TechnologyID = objectID(body)
			registered++
			recorder.Logf(domain.SeveritySuccess, "✓ %s cadastrada (ID: %s)", dep.Name, status.TechnologyID)
		}
	}

	recorder.Logf(domain.SeverityInfo, "📊 Resumo: %d já existiam, %d cadastradas, %d erros",
		existed, registered, failed)
}

// registerApplication creates the application and links every
// technology that resolved to an id. Returns the application id and the
// number of links made; an empty id means the application call failed.
func (s *Service) registerApplication(ctx context.Context, recorder *run.Recorder, appName string, platform domain.Platform, statuses []TechnologyStatus) (string, int) {
	recorder.Logf(domain.SeverityInfo, "Cadastrando aplicação %q...", appName)

	payload := map[string]any{
		"nome":        appName,
		"stack":       string(platform),
		"descricao":   "Aplicação criada via identificador automático de tecnologias",
		"status":      "Ativa",
		"criticidade": "Média",
	}
	body, statusCode, err := s.post(ctx, s.baseURL+"/api/aplicacoes", payload)
	if err != nil {
		recorder.Logf(domain.SeverityError, "Erro ao cadastrar aplicação: %v", err)
		return "", 0
	}
	if statusCode < 200 || statusCode >= 300 {
		recorder.Logf(domain.SeverityError, "Erro ao cadastrar aplicação: HTTP %d", statusCode)
		return "", 0
	}

	appID := objectID(body)
	if appID == "" {
		recorder.Logf(domain.SeverityError, "Erro ao cadastrar aplicação: resposta sem ID")
		return "", 0
	}
	recorder.Logf(domain.SeveritySuccess, "✓ Aplicação %q cadastrada", appName)

	recorder.Logf(domain.SeverityInfo, "Relacionando tecnologias à aplicação...")
	linked := 0
	for _, status := range statuses {
		if status.TechnologyID == "" {
			recorder.Logf(domain.SeverityWarning, "⚠ %s não possui ID para relacionamento", status.Dependency.Name)
			continue
		}
		relBody, relCode, relErr := s.post(ctx,
			fmt.Sprintf("%s/api/aplicacoes/%s/tecnologias", s.baseURL, appID),
			map[string]any{"idTecnologia": status.TechnologyID})
		switch {
		case relErr != nil:
			recorder.Logf(domain.SeverityError, "✗ Erro ao relacionar %s: %v", status.Dependency.Name, relErr)
		case relCode < 200 || relCode >= 300:
			recorder.Logf(domain.SeverityWarning, "⚠ Erro ao relacionar %s: %s",
				status.Dependency.Name, strings.TrimSpace(string(relBody)))
		default:
			linked++
			recorder.Logf(domain.SeverityInfo, "✓ %s relacionada", status.Dependency.Name)
		}
	}

	recorder.Logf(domain.SeveritySuccess, "✓ %d tecnologias relacionadas à aplicação", linked)
	return appID, linked
}

func (s *Service) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *Service) post(ctx context.Context, endpoint string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *Service) do(req *http.Request) ([]byte, int, error) {
	resp, err := s.transport.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// firstListedID reads the id of the first element of a JSON array
// response. Empty arrays and non-array bodies report not found.
func firstListedID(body []byte) (string, bool) {
	var listed []map[string]any
	if err := json.Unmarshal(body, &listed); err != nil || len(listed) == 0 {
		return "", false
	}
	if id, ok := listed[0]["id"]; ok {
		return fmt.Sprint(id), true
	}
	return "", false
}

// objectID reads the id field of a JSON object response.
func objectID(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if id, ok := payload["id"]; ok {
		return fmt.Sprint(id)
	}
	return ""
}
