package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, account, instrument, symbol, side, quantity, price, value, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Account, t.Instrument, t.Symbol, t.Side,
		t.Quantity, t.Price, t.Value, t.Time.UTC(),
	)
	return err
}

func (j *SQLite) RecordStanding(s StandingRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO standings
		(time, tick, member_id, username, algorithm, rank, portfolio_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Time.UTC(), s.Tick, s.MemberID, s.Username, s.Algorithm, s.Rank, s.PortfolioValue,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
