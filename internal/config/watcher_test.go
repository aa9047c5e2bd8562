package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, &Config{Token: "old"})
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	w, err := NewWatcher(cfg, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	data, _ := json.Marshal(Config{Token: "new"})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not react to config write")
	}

	if got := cfg.GetToken(); got != "new" {
		t.Errorf("token after watched reload = %q", got)
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	path := writeConfig(t, &Config{Token: "old"})
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	reloaded := make(chan struct{}, 1)
	w, err := NewWatcher(cfg, func() { reloaded <- struct{}{} })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	other := path + ".other"
	if err := os.WriteFile(other, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Fatal("watcher reacted to an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}
}
