package dashboard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset is a named view configuration for the topology UI.
type Preset struct {
	Name string `yaml:"name" json:"name"`
	// Layout is one of horizontal, vertical, radial.
	Layout         string   `yaml:"layout" json:"layout"`
	PinnedBranches []string `yaml:"pinned_branches,omitempty" json:"pinned_branches,omitempty"`
}

// defaultPresets are served when no presets file exists.
var defaultPresets = []Preset{
	{Name: "Tree", Layout: "horizontal"},
	{Name: "Radial", Layout: "radial"},
}

var validLayouts = map[string]bool{
	"horizontal": true,
	"vertical":   true,
	"radial":     true,
}

// LoadPresets reads view presets from a YAML file. A missing file
// yields the defaults; an invalid one is an error.
func LoadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultPresets, nil
		}
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var presets []Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}

	for _, p := range presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		if !validLayouts[p.Layout] {
			return nil, fmt.Errorf("preset %q has unknown layout %q", p.Name, p.Layout)
		}
	}
	return presets, nil
}
