package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVJournalHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	standingsPath := filepath.Join(dir, "standings.csv")

	j, err := NewCSV(tradesPath, standingsPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.Equal(t, [][]string{tradesHeader}, readCSV(t, tradesPath))
	assert.Equal(t, [][]string{standingsHeader}, readCSV(t, standingsPath))
}

func openFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		if target, err := os.Readlink(filepath.Join("/proc/self/fd", e.Name())); err == nil {
			out = append(out, target)
		}
	}
	return out
}

func TestNewCSVClosesFilesOnHeaderError(t *testing.T) {
	t.Parallel()

	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	if _, err := os.Stat("/proc/self/fd"); err != nil {
		t.Skip("/proc/self/fd not available")
	}

	tradesPath := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(tradesPath, "/dev/full")
	require.Error(t, err)
	assert.Nil(t, j)
	assert.NotContains(t, openFiles(t), tradesPath)
}

func TestCSVJournalRecords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tradesPath := filepath.Join(dir, "trades.csv")
	standingsPath := filepath.Join(dir, "standings.csv")

	j, err := NewCSV(tradesPath, standingsPath)
	require.NoError(t, err)

	at := time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordTrade(TradeRecord{
		TradeID:    "T1",
		Account:    "player",
		Instrument: "1",
		Symbol:     "VER",
		Side:       "buy",
		Quantity:   10,
		Price:      350.25,
		Value:      3502.5,
		Time:       at,
	}))
	require.NoError(t, j.RecordStanding(StandingRecord{
		Time:           at,
		Tick:           3,
		MemberID:       "2",
		Username:       "MomentumBot",
		Algorithm:      "Aggressive",
		Rank:           1,
		PortfolioValue: 101234.5,
	}))
	require.NoError(t, j.Close())

	trades := readCSV(t, tradesPath)
	require.Len(t, trades, 2)
	assert.Equal(t, []string{"T1", "player", "1", "VER", "buy", "10", "350.25", "3502.50", "2024-05-26T13:00:00Z"}, trades[1])

	standings := readCSV(t, standingsPath)
	require.Len(t, standings, 2)
	assert.Equal(t, []string{"2024-05-26T13:00:00Z", "3", "2", "MomentumBot", "Aggressive", "1", "101234.50"}, standings[1])
}

func TestOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	j, err := Open(Options{Type: "none"})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, j)
	assert.NoError(t, j.RecordTrade(TradeRecord{}))

	j, err = Open(Options{Type: "csv", Dir: dir})
	require.NoError(t, err)
	require.NoError(t, j.Close())
	assert.FileExists(t, filepath.Join(dir, "trades.csv"))
	assert.FileExists(t, filepath.Join(dir, "standings.csv"))

	j, err = Open(Options{Type: "sqlite", Path: filepath.Join(dir, "j.db")})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = Open(Options{Type: "sqlite"})
	assert.Error(t, err)

	_, err = Open(Options{Type: "parquet"})
	assert.Error(t, err)
}
