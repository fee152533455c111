package config

// current holds the configuration loaded by the root command.
var current *Config

// SetCurrent records the loaded configuration for command access.
func SetCurrent(c *Config) {
	current = c
}

// Current returns the configuration loaded by the root command, falling
// back to defaults when commands run outside the CLI (tests).
func Current() *Config {
	if current != nil {
		return current
	}
	return &Config{
		Project:    DefaultProjectFile,
		ValuesPath: DefaultValuesPath,
		Period:     DefaultPeriod,
		Output:     DefaultOutput,
	}
}
