package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rustyeddy/pitlane/sim"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the market headlessly for a number of ticks",
	Long: `Advance the simulation a fixed number of ticks without a clock or server
and print the league standings and the player's portfolio.

Examples:
  pitlane run --ticks 100
  pitlane run --ticks 50 --scenario raceday --seed 42
  pitlane run -c pitlane.yaml --ticks 500 -v`,
	RunE: runRun,
}

var (
	runTicks    int
	runScenario string
	runSeed     int64
	runVerbose  bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runTicks, "ticks", "n", 60, "number of ticks to run")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "scenario (midweek, raceday, postseason); overrides config")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "random seed; overrides config when non-zero")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "print league trades as they happen")
}

func runRun(cmd *cobra.Command, args []string) error {
	if runTicks <= 0 {
		return fmt.Errorf("--ticks must be positive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runScenario != "" {
		cfg.Simulation.Scenario = runScenario
	}
	if runSeed != 0 {
		cfg.Simulation.Seed = runSeed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e, _, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Running %d ticks (scenario %s)\n\n", runTicks, e.Scenario().Name)

	trades := 0
	for i := 0; i < runTicks; i++ {
		res, err := e.Tick(cmd.Context())
		if err != nil {
			return fmt.Errorf("tick %d: %w", i+1, err)
		}
		trades += len(res.Trades)
		if runVerbose {
			for _, tr := range res.Trades {
				tx := tr.Transaction
				fmt.Fprintf(out, "tick %4d  %-12s %-4s %4d x %-3s @ %8.2f  %s\n",
					res.Tick, tr.Member, tx.Side, tx.Quantity, tx.InstrumentID, tx.Price, tr.Reason)
			}
		}
	}

	printSummary(out, e.Snapshot(), trades)
	return nil
}

func printSummary(out io.Writer, s sim.Snapshot, trades int) {
	fmt.Fprintf(out, "After %d ticks, %d league trades\n\n", s.Tick, trades)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tDRIVER\tPRICE\tCHANGE\tAVAILABLE")
	for _, inst := range s.Instruments {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%+.2f%%\t%d\n",
			inst.Symbol, inst.Name, inst.Price, inst.ChangePercent(), inst.AvailableShares)
	}
	tw.Flush()

	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMEMBER\tALGORITHM\tPORTFOLIO")
	for _, st := range s.Standings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", st.Rank, st.Username, st.Algorithm, st.PortfolioValue)
	}
	tw.Flush()

	fmt.Fprintf(out, "\nWallet %.2f  Holdings %.2f  Net worth %.2f\n",
		s.Portfolio.Wallet, s.Portfolio.PortfolioValue, s.Portfolio.NetWorth)
}
