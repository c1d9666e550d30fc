package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath == "" || cfg.StatePath == "" {
		t.Errorf("expected default paths, got %+v", cfg)
	}
	if cfg.UserID != "local" {
		t.Errorf("expected default user, got %q", cfg.UserID)
	}
	if cfg.GenerateTimeout() != 120*time.Second {
		t.Errorf("expected 120s default timeout, got %v", cfg.GenerateTimeout())
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"db_path": "/tmp/from-file.db", "llm": {"model": "file-model"}, "generate_timeout_sec": 30}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GOALSPACE_LLM_MODEL", "env-model")
	t.Setenv("GOALSPACE_GENERATE_TIMEOUT", "45")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DBPath != "/tmp/from-file.db" {
		t.Errorf("file value lost: %q", cfg.DBPath)
	}
	if cfg.LLM.Model != "env-model" {
		t.Errorf("env override not applied: %q", cfg.LLM.Model)
	}
	if cfg.GenerateTimeoutSec != 45 {
		t.Errorf("env timeout not applied: %d", cfg.GenerateTimeoutSec)
	}
	// Fields the file left out fall back to defaults
	if cfg.StatePath == "" {
		t.Error("expected default state path")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}
