package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	tradesHeader    = []string{"trade_id", "account", "instrument", "symbol", "side", "quantity", "price", "value", "time"}
	standingsHeader = []string{"time", "tick", "member_id", "username", "algorithm", "rank", "portfolio_value"}
)

type CSVJournal struct {
	mu        sync.Mutex
	trades    *csv.Writer
	standings *csv.Writer
	tf, sf    *os.File
}

func NewCSV(tradesPath, standingsPath string) (*CSVJournal, error) {
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(standingsPath)
	if err != nil {
		_ = tf.Close()
		return nil, err
	}

	j := &CSVJournal{trades: csv.NewWriter(tf), standings: csv.NewWriter(sf), tf: tf, sf: sf}
	if err := j.writeHeaders(); err != nil {
		_ = tf.Close()
		_ = sf.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) writeHeaders() error {
	if err := j.trades.Write(tradesHeader); err != nil {
		return err
	}
	if err := j.standings.Write(standingsHeader); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.standings.Flush()
	return j.standings.Error()
}

func (j *CSVJournal) RecordTrade(t TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.trades.Write([]string{
		t.TradeID,
		t.Account,
		t.Instrument,
		t.Symbol,
		t.Side,
		strconv.FormatInt(t.Quantity, 10),
		f(t.Price),
		f(t.Value),
		t.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) RecordStanding(s StandingRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.standings.Write([]string{
		s.Time.UTC().Format(time.RFC3339Nano),
		strconv.FormatInt(s.Tick, 10),
		s.MemberID,
		s.Username,
		s.Algorithm,
		strconv.Itoa(s.Rank),
		f(s.PortfolioValue),
	})
	if err != nil {
		return err
	}
	j.standings.Flush()
	return j.standings.Error()
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}
	j.standings.Flush()
	if err := j.standings.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.sf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
