// Package depfile identifies dependency manifests by file name and
// extracts the dependencies they declare. One parser per ecosystem; all
// of them produce the same flat Dependency list so the technology
// identifier can treat platforms uniformly.
package depfile

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/itgovern/carga/internal/domain"
)

// ErrUnsupportedManifest is returned when a file name matches no known
// ecosystem.
var ErrUnsupportedManifest = errors.New("arquivo de dependências não suportado")

// Detect resolves the ecosystem from the file name alone.
func Detect(fileName string) domain.Platform {
	name := strings.ToLower(filepath.Base(fileName))

	switch name {
	case "pom.xml":
		return domain.PlatformMaven
	case "build.gradle", "build.gradle.kts":
		return domain.PlatformGradle
	case "go.mod":
		return domain.PlatformGo
	case "requirements.txt":
		return domain.PlatformPip
	case "pyproject.toml":
		return domain.PlatformPoetry
	case "package.json":
		return domain.PlatformNode
	case "composer.json":
		return domain.PlatformComposer
	case "gemfile":
		return domain.PlatformBundler
	case "cargo.toml":
		return domain.PlatformCargo
	}

	switch {
	case strings.HasSuffix(name, ".gemspec"):
		return domain.PlatformBundler
	case strings.HasSuffix(name, ".csproj"):
		return domain.PlatformDotNet
	}
	return domain.PlatformUnknown
}

// Parse detects the ecosystem and extracts the manifest's dependencies.
func Parse(fileName string, content []byte) (domain.Manifest, error) {
	platform := Detect(fileName)
	manifest := domain.Manifest{FileName: fileName, Platform: platform}

	var (
		deps []domain.Dependency
		err  error
	)
	switch platform {
	case domain.PlatformMaven:
		deps, err = parsePom(content)
	case domain.PlatformGradle:
		deps = parseGradle(content)
	case domain.PlatformGo:
		deps = parseGoMod(content)
	case domain.PlatformPip:
		deps = parseRequirements(content)
	case domain.PlatformPoetry:
		deps, err = parsePyproject(content)
	case domain.PlatformNode:
		deps, err = parsePackageJSON(content)
	case domain.PlatformComposer:
		deps, err = parseComposerJSON(content)
	case domain.PlatformBundler:
		deps = parseGemfile(content)
	case domain.PlatformCargo:
		deps, err = parseCargo(content)
	case domain.PlatformDotNet:
		deps, err = parseCsproj(content)
	default:
		return manifest, fmt.Errorf("%w: %s", ErrUnsupportedManifest, fileName)
	}
	if err != nil {
		return manifest, err
	}

	manifest.Dependencies = deps
	return manifest, nil
}

// --- Maven ---

type pomProject struct {
	Properties struct {
		Entries []pomProperty `xml:",any"`
	} `xml:"properties"`
	Dependencies           []pomDependency `xml:"dependencies>dependency"`
	ManagementDependencies []pomDependency `xml:"dependencyManagement>dependencies>dependency"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

var mavenVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func parsePom(content []byte) ([]domain.Dependency, error) {
	var project pomProject
	if err := xml.Unmarshal(content, &project); err != nil {
		return nil, fmt.Errorf("pom.xml inválido: %w", err)
	}

	properties := make(map[string]string, len(project.Properties.Entries))
	for _, prop := range project.Properties.Entries {
		properties[prop.XMLName.Local] = strings.TrimSpace(prop.Value)
	}

	resolve := func(value string) string {
		return mavenVarPattern.ReplaceAllStringFunc(value, func(match string) string {
			name := match[2 : len(match)-1]
			if resolved, ok := properties[name]; ok {
				return resolved
			}
			return match
		})
	}

	var deps []domain.Dependency
	for _, dep := range append(project.Dependencies, project.ManagementDependencies...) {
		if dep.ArtifactID == "" {
			continue
		}
		name := dep.ArtifactID
		if dep.GroupID != "" {
			name = dep.GroupID + ":" + dep.ArtifactID
		}
		version := resolve(strings.TrimSpace(dep.Version))
		if version == "" {
			version = "latest"
		}
		scope := dep.Scope
		if scope == "" {
			scope = "compile"
		}
		deps = append(deps, domain.Dependency{Name: name, Version: version, Scope: scope})
	}
	return deps, nil
}

// --- Gradle ---

var (
	gradleVarDecl   = regexp.MustCompile(`(?:def|val)\s+(\w+)\s*=\s*['"]([^'"]+)['"]`)
	gradleDepDecl   = regexp.MustCompile(`(?:implementation|api|testImplementation|runtimeOnly|compileOnly)\s*\(?\s*['"]([^'"]+)['"]`)
	gradleVarSubstn = regexp.MustCompile(`\$\{?(\w+)\}?`)
)

func parseGradle(content []byte) []domain.Dependency {
	text := string(content)

	variables := map[string]string{}
	for _, match := range gradleVarDecl.FindAllStringSubmatch(text, -1) {
		variables[match[1]] = match[2]
	}

	resolve := func(value string) string {
		return gradleVarSubstn.ReplaceAllStringFunc(value, func(match string) string {
			name := strings.Trim(match, "${}")
			if resolved, ok := variables[name]; ok {
				return resolved
			}
			return match
		})
	}

	var deps []domain.Dependency
	for _, match := range gradleDepDecl.FindAllStringSubmatch(text, -1) {
		parts := strings.Split(match[1], ":")
		if len(parts) < 2 {
			continue
		}
		version := "latest"
		if len(parts) >= 3 && parts[2] != "" {
			version = resolve(parts[2])
		}
		deps = append(deps, domain.Dependency{
			Name:    parts[0] + ":" + parts[1],
			Version: version,
		})
	}
	return deps
}

// --- Go ---

func parseGoMod(content []byte) []domain.Dependency {
	var deps []domain.Dependency
	inBlock := false

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if inBlock {
			if line == ")" {
				inBlock = false
				continue
			}
			if dep, ok := goModRequireLine(line); ok {
				deps = append(deps, dep)
			}
			continue
		}

		if line == "require (" {
			inBlock = true
			continue
		}
		if rest, ok := strings.CutPrefix(line, "require "); ok {
			if dep, ok := goModRequireLine(rest); ok {
				deps = append(deps, dep)
			}
		}
	}
	return deps
}

func goModRequireLine(line string) (domain.Dependency, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return domain.Dependency{}, false
	}
	dep := domain.Dependency{
		Name:    fields[0],
		Version: strings.TrimPrefix(fields[1], "v"),
	}
	if len(fields) > 2 && strings.Contains(line, "// indirect") {
		dep.Scope = "indirect"
	}
	return dep, true
}

// --- Python ---

var requirementPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+)\s*([><=~!]+)\s*([^\s;]+)`)

func parseRequirements(content []byte) []domain.Dependency {
	var deps []domain.Dependency
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if match := requirementPattern.FindStringSubmatch(line); match != nil {
			deps = append(deps, domain.Dependency{Name: match[1], Version: match[3]})
			continue
		}
		name := strings.Fields(line)[0]
		deps = append(deps, domain.Dependency{Name: name, Version: "latest"})
	}
	return deps
}

func parsePyproject(content []byte) ([]domain.Dependency, error) {
	var doc struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("pyproject.toml inválido: %w", err)
	}

	var deps []domain.Dependency
	for name, spec := range doc.Tool.Poetry.Dependencies {
		if strings.EqualFold(name, "python") {
			continue
		}
		version := "latest"
		switch v := spec.(type) {
		case string:
			version = trimVersionPrefix(v)
		case map[string]any:
			if raw, ok := v["version"].(string); ok {
				version = trimVersionPrefix(raw)
			}
		}
		deps = append(deps, domain.Dependency{Name: name, Version: version})
	}

	for _, requirement := range doc.Project.Dependencies {
		if match := requirementPattern.FindStringSubmatch(requirement); match != nil {
			deps = append(deps, domain.Dependency{Name: match[1], Version: match[3]})
		} else if name := strings.TrimSpace(requirement); name != "" {
			deps = append(deps, domain.Dependency{Name: name, Version: "latest"})
		}
	}
	return deps, nil
}

// --- Node / PHP ---

func parsePackageJSON(content []byte) ([]domain.Dependency, error) {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("package.json inválido: %w", err)
	}

	var deps []domain.Dependency
	for name, version := range pkg.Dependencies {
		deps = append(deps, domain.Dependency{
			Name:    name,
			Version: trimVersionPrefix(version),
			Scope:   "production",
		})
	}
	for name, version := range pkg.DevDependencies {
		deps = append(deps, domain.Dependency{
			Name:    name,
			Version: trimVersionPrefix(version),
			Scope:   "development",
		})
	}
	return deps, nil
}

func parseComposerJSON(content []byte) ([]domain.Dependency, error) {
	var pkg struct {
		Require    map[string]string `json:"require"`
		RequireDev map[string]string `json:"require-dev"`
	}
	if err := json.Unmarshal(content, &pkg); err != nil {
		return nil, fmt.Errorf("composer.json inválido: %w", err)
	}

	var deps []domain.Dependency
	for name, version := range pkg.Require {
		if strings.EqualFold(name, "php") {
			continue
		}
		deps = append(deps, domain.Dependency{
			Name:    name,
			Version: trimVersionPrefix(version),
			Scope:   "production",
		})
	}
	for name, version := range pkg.RequireDev {
		deps = append(deps, domain.Dependency{
			Name:    name,
			Version: trimVersionPrefix(version),
			Scope:   "development",
		})
	}
	return deps, nil
}

// --- Ruby ---

var gemPattern = regexp.MustCompile(`gem\s+['"]([^'"]+)['"]\s*(?:,\s*['"]([^'"]+)['"])?`)

func parseGemfile(content []byte) []domain.Dependency {
	var deps []domain.Dependency
	for _, match := range gemPattern.FindAllStringSubmatch(string(content), -1) {
		version := match[2]
		if version == "" {
			version = "latest"
		}
		deps = append(deps, domain.Dependency{Name: match[1], Version: version})
	}
	return deps
}

// --- Rust ---

func parseCargo(content []byte) ([]domain.Dependency, error) {
	var doc struct {
		Dependencies map[string]any `toml:"dependencies"`
	}
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("Cargo.toml inválido: %w", err)
	}

	var deps []domain.Dependency
	for name, spec := range doc.Dependencies {
		version := "latest"
		switch v := spec.(type) {
		case string:
			version = v
		case map[string]any:
			if raw, ok := v["version"].(string); ok {
				version = raw
			}
		}
		deps = append(deps, domain.Dependency{Name: name, Version: version})
	}
	return deps, nil
}

// --- .NET ---

type csprojFile struct {
	ItemGroups []struct {
		PackageReferences []struct {
			Include string `xml:"Include,attr"`
			Version string `xml:"Version,attr"`
		} `xml:"PackageReference"`
	} `xml:"ItemGroup"`
}

func parseCsproj(content []byte) ([]domain.Dependency, error) {
	var project csprojFile
	if err := xml.Unmarshal(content, &project); err != nil {
		return nil, fmt.Errorf("csproj inválido: %w", err)
	}

	var deps []domain.Dependency
	for _, group := range project.ItemGroups {
		for _, ref := range group.PackageReferences {
			if ref.Include == "" {
				continue
			}
			version := ref.Version
			if version == "" {
				version = "latest"
			}
			deps = append(deps, domain.Dependency{Name: ref.Include, Version: version})
		}
	}
	return deps, nil
}

func trimVersionPrefix(version string) string {
	return strings.TrimLeft(version, "^~")
}
