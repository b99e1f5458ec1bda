package journal

import (
	"database/sql"
	"fmt"
	"time"
)

const tradeColumns = `trade_id, account, instrument, symbol, side, quantity, price, value, time`

func scanTrade(s interface{ Scan(...any) error }) (TradeRecord, error) {
	var rec TradeRecord
	err := s.Scan(
		&rec.TradeID,
		&rec.Account,
		&rec.Instrument,
		&rec.Symbol,
		&rec.Side,
		&rec.Quantity,
		&rec.Price,
		&rec.Value,
		&rec.Time,
	)
	return rec, err
}

// GetTrade returns a single trade record by ID.
func (j *SQLite) GetTrade(tradeID string) (TradeRecord, error) {
	row := j.db.QueryRow(`SELECT `+tradeColumns+` FROM trades WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
		}
		return TradeRecord{}, err
	}
	return rec, nil
}

// ListTrades returns trades oldest first. account filters when non-empty and
// limit <= 0 means all.
func (j *SQLite) ListTrades(account string, limit int) ([]TradeRecord, error) {
	q := `SELECT ` + tradeColumns + ` FROM trades`
	var args []any
	if account != "" {
		q += ` WHERE account = ?`
		args = append(args, account)
	}
	q += ` ORDER BY time ASC, trade_id ASC`
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	return j.queryTrades(q, args...)
}

// ListTradesBetween returns trades whose time is within [start, end).
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]TradeRecord, error) {
	return j.queryTrades(`
		SELECT `+tradeColumns+`
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, trade_id ASC`, start.UTC(), end.UTC())
}

func (j *SQLite) queryTrades(q string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestStandings returns the standings recorded at the highest tick, best
// rank first.
func (j *SQLite) LatestStandings() ([]StandingRecord, error) {
	rows, err := j.db.Query(`
		SELECT time, tick, member_id, username, algorithm, rank, portfolio_value
		FROM standings
		WHERE tick = (SELECT MAX(tick) FROM standings)
		ORDER BY rank ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StandingRecord
	for rows.Next() {
		var rec StandingRecord
		if err := rows.Scan(
			&rec.Time,
			&rec.Tick,
			&rec.MemberID,
			&rec.Username,
			&rec.Algorithm,
			&rec.Rank,
			&rec.PortfolioValue,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
