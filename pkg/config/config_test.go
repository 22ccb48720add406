package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ExplicitMissingPathReturnsError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected an error for an explicit missing path")
	}
	_ = cfg
}

func TestLoad_EmptyPathNoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store != defaultStorePath {
		t.Errorf("Store = %q, want %q", cfg.Store, defaultStorePath)
	}
	if cfg.ProgressInterval != defaultProgressInterval {
		t.Errorf("ProgressInterval = %d, want %d", cfg.ProgressInterval, defaultProgressInterval)
	}
}

func TestLoad_ParsesFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vaultkeep.yaml")
	contents := "store: ./custom.db\nexclude:\n  - \"*.tmp\"\n  - \".git\"\nprogress_interval: 50\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store != "./custom.db" {
		t.Errorf("Store = %q, want ./custom.db", cfg.Store)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "*.tmp" || cfg.Exclude[1] != ".git" {
		t.Errorf("Exclude = %v, want [*.tmp .git]", cfg.Exclude)
	}
	if cfg.ProgressInterval != 50 {
		t.Errorf("ProgressInterval = %d, want 50", cfg.ProgressInterval)
	}
}

func TestLoad_ZeroProgressIntervalFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vaultkeep.yaml")
	if err := os.WriteFile(path, []byte("store: ./x.db\nprogress_interval: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProgressInterval != defaultProgressInterval {
		t.Errorf("ProgressInterval = %d, want %d", cfg.ProgressInterval, defaultProgressInterval)
	}
}
