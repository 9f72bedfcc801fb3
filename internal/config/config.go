package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"gopkg.in/yaml.v3"
)

// DateLayout is the format of reference_date.
const DateLayout = "2006-01-02"

// Config represents woundcore configuration options
type Config struct {
	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// SchemaDir is a directory of <table-id>.yaml documents that override the built-in schemas
	SchemaDir string `yaml:"schema_dir"`

	// SchemaDB is an SQLite database of schema documents consulted before the built-ins
	SchemaDB string `yaml:"schema_db"`

	// ConstatTables lists the constat tables generated for every evaluation
	ConstatTables []string `yaml:"constat_tables"`

	// ReferenceDate pins the evaluation date (YYYY-MM-DD); empty means today
	ReferenceDate string `yaml:"reference_date"`

	// ChronicAfterDays is the wound age in days past which a wound is chronic
	ChronicAfterDays int `yaml:"chronic_after_days"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogDir:           ".woundcore/logs",
		SchemaDir:        "",
		SchemaDB:         "",
		ConstatTables:    []string{"C4T01", "C4T02", "C4T03"},
		ReferenceDate:    "",
		ChronicAfterDays: 28,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg Config
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.SchemaDir != "" {
		cfg.SchemaDir = yamlCfg.SchemaDir
	}
	if yamlCfg.SchemaDB != "" {
		cfg.SchemaDB = yamlCfg.SchemaDB
	}
	if yamlCfg.ReferenceDate != "" {
		cfg.ReferenceDate = yamlCfg.ReferenceDate
	}
	if yamlCfg.ChronicAfterDays != 0 {
		cfg.ChronicAfterDays = yamlCfg.ChronicAfterDays
	}

	// An explicit empty constat_tables list disables generation, so presence
	// is checked rather than length.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["constat_tables"]; exists {
			cfg.ConstatTables = yamlCfg.ConstatTables
		}
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .woundcore/config.yaml in the specified directory
// If the directory or file doesn't exist, returns default configuration without error
func LoadConfigFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ".woundcore", "config.yaml")
	return LoadConfig(configPath)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel, logDir, schemaDir, schemaDB, referenceDate *string, constatTables []string) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if logDir != nil {
		c.LogDir = *logDir
	}
	if schemaDir != nil {
		c.SchemaDir = *schemaDir
	}
	if schemaDB != nil {
		c.SchemaDB = *schemaDB
	}
	if referenceDate != nil {
		c.ReferenceDate = *referenceDate
	}
	if constatTables != nil {
		c.ConstatTables = constatTables
	}
}

// Reference returns the pinned reference date, or ok=false when none is set.
func (c *Config) Reference() (time.Time, bool, error) {
	if c.ReferenceDate == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(DateLayout, c.ReferenceDate)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid reference_date %q: %w", c.ReferenceDate, err)
	}
	return t, true, nil
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	if c.ChronicAfterDays <= 0 {
		return fmt.Errorf("chronic_after_days must be > 0, got %d", c.ChronicAfterDays)
	}

	if _, _, err := c.Reference(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.ConstatTables))
	for _, id := range c.ConstatTables {
		if id == "" {
			return fmt.Errorf("constat_tables cannot contain an empty id")
		}
		if seen[id] {
			return fmt.Errorf("constat_tables lists %q twice", id)
		}
		seen[id] = true
	}

	return nil
}
