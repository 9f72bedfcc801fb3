package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != ".woundcore/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, ".woundcore/logs")
	}
	if cfg.ChronicAfterDays != 28 {
		t.Errorf("ChronicAfterDays = %d, want 28", cfg.ChronicAfterDays)
	}
	if !reflect.DeepEqual(cfg.ConstatTables, []string{"C4T01", "C4T02", "C4T03"}) {
		t.Errorf("ConstatTables = %v", cfg.ConstatTables)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `log_level: debug
log_dir: /tmp/logs
schema_dir: ./schemas
schema_db: ./schemas.db
reference_date: 2025-03-15
chronic_after_days: 42
constat_tables: [C4T01]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.LogDir != "/tmp/logs" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/tmp/logs")
	}
	if cfg.SchemaDir != "./schemas" {
		t.Errorf("SchemaDir = %q", cfg.SchemaDir)
	}
	if cfg.SchemaDB != "./schemas.db" {
		t.Errorf("SchemaDB = %q", cfg.SchemaDB)
	}
	if cfg.ChronicAfterDays != 42 {
		t.Errorf("ChronicAfterDays = %d, want 42", cfg.ChronicAfterDays)
	}
	if !reflect.DeepEqual(cfg.ConstatTables, []string{"C4T01"}) {
		t.Errorf("ConstatTables = %v, want [C4T01]", cfg.ConstatTables)
	}

	ref, ok, err := cfg.Reference()
	if err != nil || !ok {
		t.Fatalf("Reference() = %v, %v, %v", ref, ok, err)
	}
	if !ref.Equal(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Reference() = %v", ref)
	}
}

// TestLoadConfigFileNotExists tests fallback to defaults when file doesn't exist
func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

// TestLoadConfigMalformed tests that invalid YAML is reported
func TestLoadConfigMalformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

// TestLoadConfigPartialKeepsDefaults verifies unset keys keep their defaults
func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.ChronicAfterDays != 28 || len(cfg.ConstatTables) != 3 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

// TestLoadConfigEmptyConstatTables verifies an explicit empty list is kept
func TestLoadConfigEmptyConstatTables(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("constat_tables: []\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.ConstatTables) != 0 {
		t.Errorf("ConstatTables = %v, want empty", cfg.ConstatTables)
	}
}

// TestLoadConfigFromDir tests loading from the .woundcore directory
func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".woundcore"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".woundcore", "config.yaml"), []byte("log_level: error\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFromDir(dir)
	if err != nil {
		t.Fatalf("LoadConfigFromDir() error = %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", cfg.LogLevel)
	}
}

// TestMergeWithFlags verifies non-nil flags override config values
func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	level := "debug"
	ref := "2024-01-31"

	cfg.MergeWithFlags(&level, nil, nil, nil, &ref, []string{"C4T02"})

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogDir != ".woundcore/logs" {
		t.Errorf("LogDir changed to %q", cfg.LogDir)
	}
	if cfg.ReferenceDate != ref {
		t.Errorf("ReferenceDate = %q, want %q", cfg.ReferenceDate, ref)
	}
	if !reflect.DeepEqual(cfg.ConstatTables, []string{"C4T02"}) {
		t.Errorf("ConstatTables = %v", cfg.ConstatTables)
	}
}

// TestValidate covers invalid configurations
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"zero chronic threshold", func(c *Config) { c.ChronicAfterDays = 0 }},
		{"bad reference date", func(c *Config) { c.ReferenceDate = "15/03/2025" }},
		{"empty table id", func(c *Config) { c.ConstatTables = []string{""} }},
		{"duplicate table id", func(c *Config) { c.ConstatTables = []string{"C4T01", "C4T01"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetHome(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("WOUNDCORE_HOME", "/srv/woundcore")
		home, err := GetHome()
		if err != nil {
			t.Fatal(err)
		}
		if home != "/srv/woundcore" {
			t.Errorf("GetHome() = %q", home)
		}
	})

	t.Run("marker root", func(t *testing.T) {
		t.Setenv("WOUNDCORE_HOME", "")
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, ".woundcore-root"), nil, 0644); err != nil {
			t.Fatal(err)
		}
		sub := filepath.Join(root, "a", "b")
		if err := os.MkdirAll(sub, 0755); err != nil {
			t.Fatal(err)
		}
		oldwd, err := os.Getwd()
		if err != nil {
			t.Fatal(err)
		}
		if err := os.Chdir(sub); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { _ = os.Chdir(oldwd) })

		home, err := GetHome()
		if err != nil {
			t.Fatal(err)
		}
		want, _ := filepath.EvalSymlinks(filepath.Join(root, ".woundcore"))
		got, _ := filepath.EvalSymlinks(home)
		if got != want {
			t.Errorf("GetHome() = %q, want %q", got, want)
		}

		dbPath, err := GetSchemaDBPath()
		if err != nil {
			t.Fatal(err)
		}
		if filepath.Base(dbPath) != "schemas.db" {
			t.Errorf("GetSchemaDBPath() = %q", dbPath)
		}
	})
}
