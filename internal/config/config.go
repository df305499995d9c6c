// Package config loads the scheduling engine's JSON application
// configuration: server, engine, and persistence sections.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ServerConfig controls the HTTP surface (C9).
type ServerConfig struct {
	Addr         string `json:"addr"`
	ReadTimeoutS int    `json:"read_timeout_seconds"`
	WriteTimeoutS int   `json:"write_timeout_seconds"`
}

// EngineConfig holds the engine's log level and default project dates.
// cpmctl reads only LogLevel; new schedules take their dates from
// schedule.DefaultMetadata, not from DefaultStartDate/DefaultEndDate.
type EngineConfig struct {
	DefaultStartDate string `json:"default_start_date"`
	DefaultEndDate   string `json:"default_end_date"`
	LogLevel         string `json:"log_level"`
}

// PersistenceConfig names a default snapshot format and storage paths.
// cpmctl does not read it: the CLI's "save"/"load" commands and the
// --load flag take the format and path explicitly.
type PersistenceConfig struct {
	DefaultFormat string `json:"default_format"` // "json" | "csv" | "sqlite"
	SQLitePath    string `json:"sqlite_path"`
	GraphMirrorDir string `json:"graph_mirror_dir,omitempty"`
}

// AppConfig is the top-level configuration document, JSON-tagged for
// //go:embed-or-file loading with no env/flag library layered on top.
type AppConfig struct {
	Server      ServerConfig      `json:"server"`
	Engine      EngineConfig      `json:"engine"`
	Persistence PersistenceConfig `json:"persistence"`
}

// Default returns the configuration used when no config file is given.
func Default() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:          ":8080",
			ReadTimeoutS:  15,
			WriteTimeoutS: 15,
		},
		Engine: EngineConfig{
			DefaultStartDate: "2025-01-01",
			DefaultEndDate:   "2025-12-31",
			LogLevel:         "info",
		},
		Persistence: PersistenceConfig{
			DefaultFormat: "json",
			SQLitePath:    "schedule.db",
		},
	}
}

// Load reads and parses the JSON configuration file at path, applying it
// on top of Default() so a partial file only overrides what it sets.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}
