package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, cfg *Config) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, &Config{
		Token: "tok",
		Repos: []Repo{{Owner: "octocat", Name: "hello-world"}},
	})

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.GetToken() != "tok" {
		t.Errorf("token = %q", cfg.GetToken())
	}
	if cfg.GetListenAddr() != DefaultListenAddr {
		t.Errorf("listen addr default not applied: %q", cfg.GetListenAddr())
	}
	if cfg.CompareDelay() != 50*time.Millisecond {
		t.Errorf("compare delay = %v", cfg.CompareDelay())
	}
	if cfg.RelationshipTTL() != 30*time.Minute {
		t.Errorf("relationship ttl = %v", cfg.RelationshipTTL())
	}
	if _, ok := cfg.FindRepo("octocat", "hello-world"); !ok {
		t.Error("configured repo not found")
	}
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("error = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadFromInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"missing owner", &Config{Repos: []Repo{{Name: "r"}}}},
		{"missing name", &Config{Repos: []Repo{{Owner: "o"}}}},
		{"negative delay", &Config{CompareDelayMS: -1}},
		{"negative ttl", &Config{RelationshipTTLMinutes: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.cfg)
			if _, err := LoadFrom(path); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadFromMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestEnvTokenOverride(t *testing.T) {
	path := writeConfig(t, &Config{Token: "from-file"})
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	t.Setenv(EnvToken, "from-env")
	if got := cfg.GetToken(); got != "from-env" {
		t.Errorf("token = %q, want env override", got)
	}
}

func TestReload(t *testing.T) {
	path := writeConfig(t, &Config{Token: "old"})
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	data, _ := json.Marshal(&Config{Token: "new", Repos: []Repo{{Owner: "o", Name: "r"}}})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := cfg.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if cfg.GetToken() != "new" {
		t.Errorf("token after reload = %q", cfg.GetToken())
	}
	if len(cfg.GetRepos()) != 1 {
		t.Errorf("repos after reload = %v", cfg.GetRepos())
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := CreateDefault(path)
	cfg.Token = "tok"
	cfg.Repos = []Repo{{Owner: "o", Name: "r"}}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Token != "tok" || len(loaded.Repos) != 1 {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestGetPresetsPathDefault(t *testing.T) {
	path := writeConfig(t, &Config{})
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	want := filepath.Join(filepath.Dir(path), "presets.yaml")
	if got := cfg.GetPresetsPath(); got != want {
		t.Errorf("presets path = %q, want %q", got, want)
	}
}
