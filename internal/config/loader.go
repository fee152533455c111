package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "heatplan.yaml"
	ConfigFileNameAlt = "heatplan.yml"
)

// maxUpwardSearchLevels limits how far up the directory tree to search for
// config files.
const maxUpwardSearchLevels = 10

func configFileIn(dir string) string {
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// FindProjectRoot searches upward from startDir for a heatplan config file.
// Returns empty string if not found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if configFileIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load loads configuration with precedence (highest to lowest):
// flags > environment variables > config file > defaults. cfgFile may name
// an explicit config file; otherwise the file is searched upward from the
// working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"project":     DefaultProjectFile,
		"values_path": DefaultValuesPath,
		"period":      DefaultPeriod,
		"output":      DefaultOutput,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	root := ""
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			if dir := FindProjectRoot(cwd); dir != "" {
				cfgFile = configFileIn(dir)
				root = dir
			}
		}
	} else if abs, err := filepath.Abs(cfgFile); err == nil {
		root = filepath.Dir(abs)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}
	if root == "" {
		root, _ = os.Getwd()
		if root == "" {
			root = "."
		}
	}

	// HEATPLAN_VALUES_PATH -> values_path
	if err := k.Load(env.Provider("HEATPLAN_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "HEATPLAN_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// --values-path -> values_path
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.ProjectRoot = root
	cfg.Project = resolvePathRelativeTo(cfg.Project, root)
	cfg.ValuesPath = resolvePathRelativeTo(cfg.ValuesPath, root)

	switch cfg.Output {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Output)
	}

	return &cfg, nil
}

// resolvePathRelativeTo resolves a path relative to baseDir unless it is
// empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
