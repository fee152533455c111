// Package config loads the heatplan application configuration and project
// definition files. It is decoupled from CLI concerns so tools and tests
// can load projects without a cobra command in sight.
package config

// Config is the application configuration from heatplan.yaml, environment
// variables (HEATPLAN_ prefix), and flags.
type Config struct {
	// ProjectRoot is the directory the config file was found in; relative
	// paths below resolve against it. Computed, not loaded.
	ProjectRoot string `koanf:"-"`

	// Project is the path to the project definition YAML (menu, templates,
	// validation schemes).
	Project string `koanf:"project"`

	// ValuesPath is the SQLite file holding entered values and
	// submissions.
	ValuesPath string `koanf:"values_path"`

	// Period is the reporting period, e.g. "2025-2026".
	Period string `koanf:"period"`

	// Output selects the CLI rendering: text or json.
	Output string `koanf:"output"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// Default configuration values.
const (
	DefaultProjectFile = "project.yaml"
	DefaultValuesPath  = "heatplan.db"
	DefaultPeriod      = "2025-2026"
	DefaultOutput      = "text"
)
