// =============================================================================
// FRSC Operations E-Dashboard - Configuration Module
// =============================================================================
//
// This module is responsible for loading the main application configuration.
//
// CONFIGURATION FILE:
//   config.yaml: listen address, storage backend, export output settings,
//   credentials, simulated network latency and the optional catalog file.
//
// A missing configuration file is not an error: every setting has a default,
// so `edash serve` works out of the box.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	// ListenAddr is the address the HTTP API binds to.
	// Default: ":8080"
	ListenAddr string `yaml:"listen_addr"`

	// =========================================================================
	// STORAGE SETTINGS
	// =========================================================================

	// Store selects and configures the key-value backend holding the draft
	// and the submitted report collection.
	Store StoreConfig `yaml:"store"`

	// OnlineSaveLatency is the artificial delay applied before a submitted
	// report is written to the store.
	// Default: 1s
	OnlineSaveLatency time.Duration `yaml:"online_save_latency"`

	// =========================================================================
	// EXPORT SETTINGS
	// =========================================================================

	// OutputDir is where export files are written by the CLI.
	// Default: "./exports"
	OutputDir string `yaml:"output_dir"`

	// FileNameFormat is the export file name without extension.
	// Placeholders:
	//   {date}      - Current date (YYYY-MM-DD)
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	// Default: "FRSC_Reports_{date}"
	FileNameFormat string `yaml:"file_name_format"`

	// =========================================================================
	// CATALOG SETTINGS
	// =========================================================================

	// CatalogFile optionally points at a YAML, CSV or XLSX file replacing the
	// built-in team leader, route, offence and currency lists.
	CatalogFile string `yaml:"catalog_file"`

	// =========================================================================
	// AUTHENTICATION
	// =========================================================================

	Auth AuthConfig `yaml:"auth"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	// Driver is one of "file", "sqlite" or "memory".
	// Default: "file"
	Driver string `yaml:"driver"`

	// Path is the backing file for the file and sqlite drivers.
	// Default: "./data/edash.json" (file) or "./data/edash.db" (sqlite)
	Path string `yaml:"path"`

	// QuotaBytes caps the total stored bytes. Writes beyond it are rejected
	// the way a browser rejects writes past its storage quota.
	// 0 means unlimited.
	QuotaBytes int `yaml:"quota_bytes"`
}

// AuthConfig holds the single accepted credential pair.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. When the file does not exist the
//     defaults are returned.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration data and applies defaults.
func Parse(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.Store.Driver == "" {
		config.Store.Driver = DriverFile
	}
	config.Store.Driver = strings.ToLower(config.Store.Driver)
	if config.Store.Path == "" {
		switch config.Store.Driver {
		case DriverSQLite:
			config.Store.Path = "./data/edash.db"
		default:
			config.Store.Path = "./data/edash.json"
		}
	}
	if config.OnlineSaveLatency == 0 {
		config.OnlineSaveLatency = time.Second
	}
	if config.OutputDir == "" {
		config.OutputDir = "./exports"
	}
	if config.FileNameFormat == "" {
		config.FileNameFormat = "FRSC_Reports_{date}"
	}
	if config.Auth.Username == "" {
		config.Auth.Username = "frsc"
	}
	if config.Auth.Password == "" {
		config.Auth.Password = "admin123"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch config.Store.Driver {
	case DriverFile, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	if config.Store.QuotaBytes < 0 {
		return fmt.Errorf("store.quota_bytes must not be negative")
	}
	if config.OnlineSaveLatency < 0 {
		return fmt.Errorf("online_save_latency must not be negative")
	}

	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}

	if config.CatalogFile != "" {
		switch strings.ToLower(filepath.Ext(config.CatalogFile)) {
		case ".yaml", ".yml", ".csv", ".xlsx":
		default:
			return fmt.Errorf("unsupported catalog file type: %s", config.CatalogFile)
		}
	}

	return nil
}
