package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rustyeddy/pitlane/journal"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the trade journal",
	Long: `Query trade and standings records from a SQLite journal.

Subcommands:
  trades     - List recorded trades
  trade      - Show one trade by ID
  standings  - Show the most recently recorded league standings

Examples:
  pitlane journal trades --account player
  pitlane journal trade 01HZX...
  pitlane journal standings -d pitlane.db`,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List recorded trades",
	Args:  cobra.NoArgs,
	RunE:  runJournalTrades,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Show one trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalStandingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the latest recorded standings",
	Args:  cobra.NoArgs,
	RunE:  runJournalStandings,
}

var (
	journalDBPath  string
	journalAccount string
	journalLimit   int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalStandingsCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./pitlane.db", "path to SQLite journal DB")
	journalTradesCmd.Flags().StringVar(&journalAccount, "account", "", "only trades of this account (player or a member id)")
	journalTradesCmd.Flags().IntVarP(&journalLimit, "limit", "n", 0, "maximum number of trades (0 for all)")
}

func openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades(journalAccount, journalLimit)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	printTrades(cmd.OutOrStdout(), recs)
	return nil
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	printTrades(cmd.OutOrStdout(), []journal.TradeRecord{rec})
	return nil
}

func runJournalStandings(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.LatestStandings()
	if err != nil {
		return fmt.Errorf("query standings: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintln(out, "no standings recorded")
		return nil
	}
	fmt.Fprintf(out, "Tick %d at %s\n\n", recs[0].Tick, recs[0].Time.Local().Format(time.DateTime))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tMEMBER\tALGORITHM\tPORTFOLIO")
	for _, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\n", r.Rank, r.Username, r.Algorithm, r.PortfolioValue)
	}
	return tw.Flush()
}

func printTrades(out io.Writer, recs []journal.TradeRecord) {
	if len(recs) == 0 {
		fmt.Fprintln(out, "no trades recorded")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tID\tACCOUNT\tSIDE\tQTY\tSYMBOL\tPRICE\tVALUE")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%.2f\t%.2f\n",
			r.Time.Local().Format(time.DateTime), r.TradeID, r.Account, r.Side, r.Quantity, r.Symbol, r.Price, r.Value)
	}
	tw.Flush()
}
