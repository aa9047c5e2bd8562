package dashboard

import (
	"os"
	"path/filepath"
	"testing"
)

func writePresets(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write presets: %v", err)
	}
	return path
}

func TestLoadPresets(t *testing.T) {
	path := writePresets(t, `
- name: Release view
  layout: vertical
  pinned_branches:
    - main
    - release/v2
- name: Radial
  layout: radial
`)

	presets, err := LoadPresets(path)
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(presets) != 2 {
		t.Fatalf("got %d presets", len(presets))
	}
	if presets[0].Name != "Release view" || presets[0].Layout != "vertical" {
		t.Errorf("presets[0] = %+v", presets[0])
	}
	if len(presets[0].PinnedBranches) != 2 || presets[0].PinnedBranches[1] != "release/v2" {
		t.Errorf("pinned = %v", presets[0].PinnedBranches)
	}
}

func TestLoadPresetsMissingFileReturnsDefaults(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if len(presets) != len(defaultPresets) {
		t.Fatalf("got %d presets, want defaults", len(presets))
	}
	if presets[0].Name != "Tree" {
		t.Errorf("presets[0] = %+v", presets[0])
	}
}

func TestLoadPresetsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "{{{"},
		{"missing name", "- layout: radial"},
		{"unknown layout", "- name: X\n  layout: spiral"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePresets(t, tt.content)
			if _, err := LoadPresets(path); err == nil {
				t.Error("expected error")
			}
		})
	}
}
