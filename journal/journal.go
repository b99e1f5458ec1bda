// Package journal is a write-only audit trail of executed trades and league
// standings. Nothing in a running session reads it back.
package journal

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// TradeRecord is one executed buy or sell.
type TradeRecord struct {
	TradeID    string
	Account    string
	Instrument string
	Symbol     string
	Side       string
	Quantity   int64
	Price      float64
	Value      float64
	Time       time.Time
}

// StandingRecord is one member's place after a tick.
type StandingRecord struct {
	Time           time.Time
	Tick           int64
	MemberID       string
	Username       string
	Algorithm      string
	Rank           int
	PortfolioValue float64
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordStanding(StandingRecord) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordTrade(TradeRecord) error       { return nil }
func (Nop) RecordStanding(StandingRecord) error { return nil }
func (Nop) Close() error                        { return nil }

// Options selects and locates a journal.
type Options struct {
	// Type is "none", "csv" or "sqlite".
	Type string
	// Path is the sqlite database file.
	Path string
	// Dir receives trades.csv and standings.csv.
	Dir string
}

// Open returns the journal described by opts.
func Open(opts Options) (Journal, error) {
	switch strings.ToLower(opts.Type) {
	case "", "none":
		return Nop{}, nil
	case "csv":
		dir := opts.Dir
		if dir == "" {
			dir = "."
		}
		return NewCSV(filepath.Join(dir, "trades.csv"), filepath.Join(dir, "standings.csv"))
	case "sqlite":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite journal requires a path")
		}
		return NewSQLite(opts.Path)
	default:
		return nil, fmt.Errorf("unknown journal type %q (supported: none, csv, sqlite)", opts.Type)
	}
}
