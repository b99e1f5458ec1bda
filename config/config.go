package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rustyeddy/pitlane/journal"
	"github.com/rustyeddy/pitlane/league"
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/pkg/logger"
	"github.com/rustyeddy/pitlane/sim"
	"gopkg.in/yaml.v3"
)

// Config represents the complete pitlane configuration
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	League     LeagueConfig     `json:"league" yaml:"league"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Log        logger.Config    `json:"log" yaml:"log"`
}

// ServerConfig contains the HTTP listener settings
type ServerConfig struct {
	Addr        string   `json:"addr" yaml:"addr"`
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`
}

// SimulationConfig contains market and clock parameters
type SimulationConfig struct {
	Scenario       string  `json:"scenario" yaml:"scenario"`
	Interval       string  `json:"interval" yaml:"interval"` // one of 10s, 30s, 1m, 5m
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	Seed           int64   `json:"seed,omitempty" yaml:"seed,omitempty"` // 0 seeds from the clock
	Paused         bool    `json:"paused" yaml:"paused"`
}

// IntervalDuration parses Interval, falling back to the default tick interval.
func (s SimulationConfig) IntervalDuration() (time.Duration, error) {
	if s.Interval == "" {
		return sim.DefaultInterval, nil
	}
	return time.ParseDuration(s.Interval)
}

// LeagueConfig contains the scripted competitors
type LeagueConfig struct {
	InitialCapital float64             `json:"initial_capital" yaml:"initial_capital"`
	Members        []league.MemberSpec `json:"members" yaml:"members"`
}

// JournalConfig contains journaling parameters
type JournalConfig struct {
	Type   string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	Dir    string `json:"dir,omitempty" yaml:"dir,omitempty"`
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// Options converts the section for journal.Open.
func (j JournalConfig) Options() journal.Options {
	return journal.Options{Type: j.Type, Dir: j.Dir, Path: j.DBPath}
}

// Load reads path (or the defaults when path is empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Missing keys keep their defaults.
	cfg := Default()

	// Try YAML first, fall back to JSON
	if err := yaml.Unmarshal(data, cfg); err != nil {
		cfg = Default()
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", jerr)
		}
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from PITLANE_* environment variables, loading
// a .env file first when one exists.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	c.Server.Addr = getEnv("PITLANE_ADDR", c.Server.Addr)
	c.Log.Level = getEnv("PITLANE_LOG_LEVEL", c.Log.Level)
	c.Log.Pretty = getEnvAsBool("PITLANE_LOG_PRETTY", c.Log.Pretty)
	c.Simulation.Scenario = getEnv("PITLANE_SCENARIO", c.Simulation.Scenario)
	c.Simulation.Interval = getEnv("PITLANE_INTERVAL", c.Simulation.Interval)
	c.Journal.Type = getEnv("PITLANE_JOURNAL", c.Journal.Type)

	if v := os.Getenv("PITLANE_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PITLANE_SEED: %w", err)
		}
		c.Simulation.Seed = seed
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := market.LookupScenario(c.Simulation.Scenario); err != nil {
		return fmt.Errorf("simulation.scenario: %w", err)
	}
	d, err := c.Simulation.IntervalDuration()
	if err != nil {
		return fmt.Errorf("simulation.interval: %w", err)
	}
	if !sim.ValidInterval(d) {
		return fmt.Errorf("simulation.interval must be one of %s", sim.IntervalNames())
	}
	if c.Simulation.InitialBalance <= 0 {
		return fmt.Errorf("simulation.initial_balance must be positive")
	}
	if c.League.InitialCapital <= 0 {
		return fmt.Errorf("league.initial_capital must be positive")
	}

	seen := map[string]bool{}
	for i, m := range c.League.Members {
		if m.Username == "" {
			return fmt.Errorf("league.members[%d].username is required", i)
		}
		if _, err := league.ParseAlgorithm(m.Algorithm); err != nil {
			return fmt.Errorf("league.members[%d]: %w", i, err)
		}
		if m.ID != "" {
			if seen[m.ID] {
				return fmt.Errorf("league.members[%d]: duplicate id %q", i, m.ID)
			}
			seen[m.ID] = true
		}
	}

	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.Dir == "" {
			return fmt.Errorf("journal dir required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			CORSOrigins: []string{"*"},
		},
		Simulation: SimulationConfig{
			Scenario:       string(market.Midweek),
			Interval:       "1m",
			InitialBalance: 100000,
		},
		League: LeagueConfig{
			InitialCapital: league.DefaultInitialCapital,
			Members:        league.DefaultMembers(),
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Log: logger.Config{
			Level: "info",
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
