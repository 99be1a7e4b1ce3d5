package depfile

import (
	"errors"
	"testing"

	"github.com/itgovern/carga/internal/domain"
)

func depsByName(deps []domain.Dependency) map[string]domain.Dependency {
	out := make(map[string]domain.Dependency, len(deps))
	for _, dep := range deps {
		out[dep.Name] = dep
	}
	return out
}

func TestDetect(t *testing.T) {
	cases := map[string]domain.Platform{
		"pom.xml":          domain.PlatformMaven,
		"build.gradle":     domain.PlatformGradle,
		"build.gradle.kts": domain.PlatformGradle,
		"go.mod":           domain.PlatformGo,
		"requirements.txt": domain.PlatformPip,
		"pyproject.toml":   domain.PlatformPoetry,
		"package.json":     domain.PlatformNode,
		"composer.json":    domain.PlatformComposer,
		"Gemfile":          domain.PlatformBundler,
		"carga.gemspec":    domain.PlatformBundler,
		"Cargo.toml":       domain.PlatformCargo,
		"App.csproj":       domain.PlatformDotNet,
		"src/go.mod":       domain.PlatformGo,
		"notes.txt":        domain.PlatformUnknown,
	}
	for name, want := range cases {
		if got := Detect(name); got != want {
			t.Fatalf("Detect(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestParseUnsupported(t *testing.T) {
	_, err := Parse("notes.txt", []byte("whatever"))
	if !errors.Is(err, ErrUnsupportedManifest) {
		t.Fatalf("expected ErrUnsupportedManifest, got %v", err)
	}
}

func TestParsePomResolvesProperties(t *testing.T) {
	content := []byte(`<?xml version="1.0"?>
<project>
  <properties>
    <slf4j.version>2.0.7</slf4j.version>
  </properties>
  <dependencies>
    <dependency>
      <groupId>org.slf4j</groupId>
      <artifactId>slf4j-api</artifactId>
      <version>${slf4j.version}</version>
    </dependency>
    <dependency>
      <groupId>junit</groupId>
      <artifactId>junit</artifactId>
      <version>4.13.2</version>
      <scope>test</scope>
    </dependency>
  </dependencies>
</project>`)

	manifest, err := Parse("pom.xml", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if manifest.Platform != domain.PlatformMaven {
		t.Fatalf("unexpected platform: %s", manifest.Platform)
	}
	if len(manifest.Dependencies) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(manifest.Dependencies))
	}

	slf4j := manifest.Dependencies[0]
	if slf4j.Name != "org.slf4j:slf4j-api" || slf4j.Version != "2.0.7" {
		t.Fatalf("property not resolved: %+v", slf4j)
	}
	if slf4j.Scope != "compile" {
		t.Fatalf("expected default compile scope, got %s", slf4j.Scope)
	}
	if manifest.Dependencies[1].Scope != "test" {
		t.Fatalf("scope not preserved: %+v", manifest.Dependencies[1])
	}
}

func TestParseGradleResolvesVariables(t *testing.T) {
	content := []byte(`
def slf4jVersion = '2.0.7'
dependencies {
    implementation 'org.slf4j:slf4j-api:$slf4jVersion'
    testImplementation 'junit:junit:4.13.2'
    implementation 'com.acme:no-version'
}
`)
	manifest, err := Parse("build.gradle", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if deps["org.slf4j:slf4j-api"].Version != "2.0.7" {
		t.Fatalf("variable not resolved: %+v", deps["org.slf4j:slf4j-api"])
	}
	if deps["junit:junit"].Version != "4.13.2" {
		t.Fatalf("literal version lost: %+v", deps["junit:junit"])
	}
	if deps["com.acme:no-version"].Version != "latest" {
		t.Fatalf("expected latest for missing version: %+v", deps["com.acme:no-version"])
	}
}

func TestParseGoModBlockAndInline(t *testing.T) {
	content := []byte(`module example.com/app

go 1.24.0

require github.com/google/uuid v1.6.0

require (
	github.com/spf13/viper v1.21.0
	github.com/jackc/pgx/v5 v5.7.6 // indirect
)
`)
	manifest, err := Parse("go.mod", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	if len(manifest.Dependencies) != 3 {
		t.Fatalf("expected 3 dependencies, got %d: %+v", len(manifest.Dependencies), manifest.Dependencies)
	}
	deps := depsByName(manifest.Dependencies)
	if deps["github.com/google/uuid"].Version != "1.6.0" {
		t.Fatalf("v prefix not stripped: %+v", deps["github.com/google/uuid"])
	}
	if deps["github.com/jackc/pgx/v5"].Scope != "indirect" {
		t.Fatalf("indirect scope not tagged: %+v", deps["github.com/jackc/pgx/v5"])
	}
}

func TestParseRequirements(t *testing.T) {
	content := []byte(`# comment
requests==2.31.0
flask>=2.0
gunicorn
`)
	manifest, err := Parse("requirements.txt", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if len(deps) != 3 {
		t.Fatalf("expected 3 dependencies, got %d", len(deps))
	}
	if deps["requests"].Version != "2.31.0" {
		t.Fatalf("pinned version lost: %+v", deps["requests"])
	}
	if deps["flask"].Version != "2.0" {
		t.Fatalf("range version lost: %+v", deps["flask"])
	}
	if deps["gunicorn"].Version != "latest" {
		t.Fatalf("bare package should default to latest: %+v", deps["gunicorn"])
	}
}

func TestParsePyprojectPoetry(t *testing.T) {
	content := []byte(`[tool.poetry.dependencies]
python = "^3.11"
requests = "^2.31.0"
uvicorn = { version = "~0.23", extras = ["standard"] }
`)
	manifest, err := Parse("pyproject.toml", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if _, ok := deps["python"]; ok {
		t.Fatal("python pseudo-dependency must be excluded")
	}
	if deps["requests"].Version != "2.31.0" {
		t.Fatalf("caret not stripped: %+v", deps["requests"])
	}
	if deps["uvicorn"].Version != "0.23" {
		t.Fatalf("table version not read: %+v", deps["uvicorn"])
	}
}

func TestParsePackageJSON(t *testing.T) {
	content := []byte(`{
  "dependencies": {"react": "^18.2.0"},
  "devDependencies": {"vite": "~5.0.0"}
}`)
	manifest, err := Parse("package.json", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if deps["react"].Version != "18.2.0" || deps["react"].Scope != "production" {
		t.Fatalf("unexpected react dep: %+v", deps["react"])
	}
	if deps["vite"].Version != "5.0.0" || deps["vite"].Scope != "development" {
		t.Fatalf("unexpected vite dep: %+v", deps["vite"])
	}
}

func TestParsePackageJSONMalformed(t *testing.T) {
	if _, err := Parse("package.json", []byte(`{broken`)); err == nil {
		t.Fatal("expected error for malformed package.json")
	}
}

func TestParseComposerSkipsPHP(t *testing.T) {
	content := []byte(`{
  "require": {"php": ">=8.1", "laravel/framework": "^10.0"},
  "require-dev": {"phpunit/phpunit": "^10.0"}
}`)
	manifest, err := Parse("composer.json", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if _, ok := deps["php"]; ok {
		t.Fatal("php platform requirement must be excluded")
	}
	if deps["laravel/framework"].Version != "10.0" {
		t.Fatalf("unexpected laravel dep: %+v", deps["laravel/framework"])
	}
	if deps["phpunit/phpunit"].Scope != "development" {
		t.Fatalf("unexpected phpunit scope: %+v", deps["phpunit/phpunit"])
	}
}

func TestParseGemfile(t *testing.T) {
	content := []byte(`source 'https://rubygems.org'
gem 'rails', '7.1.0'
gem 'puma'
`)
	manifest, err := Parse("Gemfile", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if deps["rails"].Version != "7.1.0" {
		t.Fatalf("unexpected rails dep: %+v", deps["rails"])
	}
	if deps["puma"].Version != "latest" {
		t.Fatalf("unexpected puma dep: %+v", deps["puma"])
	}
}

func TestParseCargo(t *testing.T) {
	content := []byte(`[package]
name = "app"

[dependencies]
serde = "1.0"
tokio = { version = "1.35", features = ["full"] }
`)
	manifest, err := Parse("Cargo.toml", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if deps["serde"].Version != "1.0" {
		t.Fatalf("unexpected serde dep: %+v", deps["serde"])
	}
	if deps["tokio"].Version != "1.35" {
		t.Fatalf("table version not read: %+v", deps["tokio"])
	}
}

func TestParseCsproj(t *testing.T) {
	content := []byte(`<Project Sdk="Microsoft.NET.Sdk">
  <ItemGroup>
    <PackageReference Include="Newtonsoft.Json" Version="13.0.3" />
    <PackageReference Include="Serilog" />
  </ItemGroup>
</Project>`)
	manifest, err := Parse("App.csproj", content)
	if err != nil {
		t.Fatalf("parse returned error: %v", err)
	}
	deps := depsByName(manifest.Dependencies)
	if deps["Newtonsoft.Json"].Version != "13.0.3" {
		t.Fatalf("unexpected dep: %+v", deps["Newtonsoft.Json"])
	}
	if deps["Serilog"].Version != "latest" {
		t.Fatalf("missing version should default to latest: %+v", deps["Serilog"])
	}
}
