package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithNoFileReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Engine.NumBarrels != 64 {
		t.Fatalf("expected default NumBarrels 64, got %d", cfg.Engine.NumBarrels)
	}
	if cfg.Semantic.SimilarityThreshold != 0.65 {
		t.Fatalf("expected default SimilarityThreshold 0.65, got %v", cfg.Semantic.SimilarityThreshold)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected Load to fail for a missing config file")
	}
}

func TestLoadParsesYAMLOverridingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := "engine:\n  numBarrels: 16\n  dataDir: /tmp/custom\nsearch:\n  defaultLimit: 25\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.NumBarrels != 16 || cfg.Engine.DataDir != "/tmp/custom" {
		t.Fatalf("expected YAML values to override defaults, got %+v", cfg.Engine)
	}
	if cfg.Search.DefaultLimit != 25 {
		t.Fatalf("expected DefaultLimit 25, got %d", cfg.Search.DefaultLimit)
	}
	// Unset sections still carry their defaults.
	if cfg.Redis.PoolSize != 10 {
		t.Fatalf("expected an untouched section to keep its default, got PoolSize=%d", cfg.Redis.PoolSize)
	}
}

func TestEnvOverrideWinsOverYAMLAndDefault(t *testing.T) {
	t.Setenv("SS_ENGINE_NUM_BARRELS", "32")
	t.Setenv("SS_LOGGING_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlContent := "engine:\n  numBarrels: 16\nlogging:\n  level: warn\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.NumBarrels != 32 {
		t.Fatalf("expected env override to win, got NumBarrels=%d", cfg.Engine.NumBarrels)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected env override to win, got Level=%q", cfg.Logging.Level)
	}
}

func TestEnvOverrideIgnoresUnparseableInt(t *testing.T) {
	t.Setenv("SS_ENGINE_NUM_BARRELS", "not-a-number")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.NumBarrels != 64 {
		t.Fatalf("expected an unparseable env override to be ignored, got %d", cfg.Engine.NumBarrels)
	}
}
