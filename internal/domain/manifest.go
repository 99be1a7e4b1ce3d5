package domain

// Platform names the ecosystem a dependency manifest belongs to.
type Platform string

const (
	PlatformMaven    Platform = "Java (Maven)"
	PlatformGradle   Platform = "Java (Gradle)"
	PlatformGo       Platform = "Go"
	PlatformPip      Platform = "Python (pip)"
	PlatformPoetry   Platform = "Python (Poetry)"
	PlatformNode     Platform = "Node.js / TypeScript"
	PlatformComposer Platform = "PHP (Composer)"
	PlatformBundler  Platform = "Ruby (Bundler)"
	PlatformCargo    Platform = "Rust (Cargo)"
	PlatformDotNet   Platform = ".NET"
	PlatformUnknown  Platform = "Desconhecida"
)

// Dependency is one third-party requirement declared by a manifest.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Scope   string `json:"scope,omitempty"`
}

// Manifest is the parsed view of one dependency file.
type Manifest struct {
	FileName     string       `json:"file_name"`
	Platform     Platform     `json:"platform"`
	Dependencies []Dependency `json:"dependencies"`
}
