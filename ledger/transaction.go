// Package ledger keeps accounts: a wallet (for the player), per-instrument
// holdings and an append-only transaction log. Every trade executes at the
// instrument's current price against the shared inventory.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of a transaction.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Transaction is an accepted trade. It is never modified once logged.
type Transaction struct {
	ID           string    `json:"id" msgpack:"id"`
	AccountID    string    `json:"account_id" msgpack:"account_id"`
	InstrumentID string    `json:"instrument_id" msgpack:"instrument_id"`
	Side         Side      `json:"side" msgpack:"side"`
	Quantity     int64     `json:"quantity" msgpack:"quantity"`
	Price        float64   `json:"price" msgpack:"price"`
	Time         time.Time `json:"time" msgpack:"time"`
}

// Value is quantity times the execution price, exact to the cent.
func (t Transaction) Value() decimal.Decimal {
	return cost(t.Price, t.Quantity)
}

func cost(price float64, qty int64) decimal.Decimal {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(qty))
}

// Position is a non-zero holding.
type Position struct {
	InstrumentID string `json:"instrument_id" msgpack:"instrument_id"`
	Quantity     int64  `json:"quantity" msgpack:"quantity"`
}
