package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/pitlane/config"
	"github.com/rustyeddy/pitlane/journal"
	"github.com/rustyeddy/pitlane/pkg/logger"
	"github.com/rustyeddy/pitlane/sim"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pitlane",
	Short: "A racing-driver stock market simulator",
	Long: `Pitlane simulates a small stock market whose instruments are racing drivers.

Prices take a bounded random walk every tick, you trade against a shared
inventory of shares, and a league of scripted bots trades alongside you with
value and momentum strategies.

It provides:
  - An HTTP API and websocket stream (pitlane serve)
  - Headless runs for a fixed number of ticks (pitlane run)
  - Configuration management (pitlane config)
  - A trade and standings journal (pitlane journal)`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults plus PITLANE_* env when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadConfig reads the config named by --config and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}

// newEngine builds the logger, journal and engine described by cfg.
func newEngine(cfg *config.Config) (*sim.Engine, zerolog.Logger, error) {
	log := logger.New(cfg.Log)
	logger.SetGlobalLogger(log)

	j, err := journal.Open(cfg.Journal.Options())
	if err != nil {
		return nil, log, fmt.Errorf("open journal: %w", err)
	}

	e, err := sim.NewEngine(sim.Options{
		Scenario:       cfg.Simulation.Scenario,
		InitialBalance: cfg.Simulation.InitialBalance,
		InitialCapital: cfg.League.InitialCapital,
		Members:        cfg.League.Members,
		Seed:           cfg.Simulation.Seed,
		Journal:        j,
		Logger:         log,
	})
	if err != nil {
		_ = j.Close()
		return nil, log, fmt.Errorf("create engine: %w", err)
	}
	return e, log, nil
}
