package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/heatstack/heatplan/pkg/core"
)

// LoadProject loads a project definition YAML (menu, templates, schemes)
// into a core.Project. Integer-keyed maps in the YAML (validation
// overrides) and the heterogeneous rule objects decode through
// mapstructure with weak typing, matching how the source files write
// indicator IDs as plain YAML keys.
func LoadProject(path string) (*core.Project, error) {
	// Field paths like "totals.plan" appear as map keys in columnFormulas,
	// so the usual "." delimiter would split them. Use one that cannot
	// occur in a key.
	k := koanf.New("::")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("error reading project file %s: %w", path, err)
	}

	var p core.Project
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &p,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	}
	if err := k.UnmarshalWithConf("", &p, conf); err != nil {
		return nil, fmt.Errorf("unable to decode project %s: %w", path, err)
	}

	if p.ID == "" {
		return nil, fmt.Errorf("project file %s: missing project id", path)
	}
	if len(p.Tables) == 0 {
		return nil, fmt.Errorf("project file %s: no tables defined", path)
	}
	return &p, nil
}
