package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rustyeddy/pitlane/server"
	"github.com/rustyeddy/pitlane/sim"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the market clock and serve the HTTP API",
	Long: `Start the simulation clock and the HTTP API.

The clock ticks on the configured interval (10s, 30s, 1m or 5m) and can be
paused, stepped and re-timed through /api/clock. Events are streamed over a
websocket at /api/stream.

Examples:
  pitlane serve
  pitlane serve --addr :9090 --paused
  PITLANE_SCENARIO=raceday pitlane serve`,
	RunE: runServe,
}

var (
	serveAddr   string
	servePaused bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&servePaused, "paused", false, "start with the clock paused")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	e, log, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	interval, err := cfg.Simulation.IntervalDuration()
	if err != nil {
		return fmt.Errorf("interval: %w", err)
	}
	clock, err := sim.NewScheduler(e, interval, e.Bus(), log)
	if err != nil {
		return err
	}
	if cfg.Simulation.Paused || servePaused {
		clock.Pause()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := clock.Start(ctx); err != nil {
		return err
	}
	defer clock.Stop()

	srv := server.New(server.Config{
		Log:         log,
		Addr:        cfg.Server.Addr,
		CORSOrigins: cfg.Server.CORSOrigins,
		Engine:      e,
		Clock:       clock,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
