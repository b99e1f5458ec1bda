package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/pkg/id"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	ErrUnknownInstrument  = market.ErrUnknownInstrument
	ErrInsufficientShares = market.ErrInsufficientShares
)

// Inventory is the shared share pool trades draw from. *market.Catalog
// implements it.
type Inventory interface {
	Quote(id string) (price float64, available int64, err error)
	Reserve(id string, qty int64) error
	Release(id string, qty int64) error
}

// Account is a set of holdings with a transaction log. A funded account also
// has a wallet that buys are checked against; league members trade unfunded
// accounts and size their orders against capital instead.
type Account struct {
	mu       sync.Mutex
	id       string
	funded   bool
	wallet   decimal.Decimal
	holdings map[string]int64
	txns     []Transaction
}

// NewPortfolio returns a funded account holding balance.
func NewPortfolio(id string, balance decimal.Decimal) *Account {
	return &Account{
		id:       id,
		funded:   true,
		wallet:   balance,
		holdings: make(map[string]int64),
	}
}

// NewUnfunded returns an account without a wallet.
func NewUnfunded(id string) *Account {
	return &Account{
		id:       id,
		holdings: make(map[string]int64),
	}
}

func (a *Account) ID() string   { return a.id }
func (a *Account) Funded() bool { return a.funded }

// Buy purchases qty shares of instrumentID at its current price.
//
// It fails, leaving everything unchanged, when qty is not positive, the
// instrument is unknown, a funded wallet cannot cover the cost, or the
// inventory has fewer than qty shares.
func (a *Account) Buy(inv Inventory, instrumentID string, qty int64, at time.Time) (Transaction, error) {
	if qty <= 0 {
		return Transaction{}, fmt.Errorf("buy %d of %q: %w", qty, instrumentID, ErrInvalidQuantity)
	}
	price, available, err := inv.Quote(instrumentID)
	if err != nil {
		return Transaction{}, fmt.Errorf("buy: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	total := cost(price, qty)
	if a.funded && total.GreaterThan(a.wallet) {
		return Transaction{}, fmt.Errorf("buy %d of %q costs %s, wallet %s: %w",
			qty, instrumentID, total.StringFixed(2), a.wallet.StringFixed(2), ErrInsufficientFunds)
	}
	if qty > available {
		return Transaction{}, fmt.Errorf("buy %d of %q (%d available): %w",
			qty, instrumentID, available, ErrInsufficientShares)
	}
	if err := inv.Reserve(instrumentID, qty); err != nil {
		return Transaction{}, fmt.Errorf("buy: %w", err)
	}

	if a.funded {
		a.wallet = a.wallet.Sub(total)
	}
	a.holdings[instrumentID] += qty
	return a.appendLocked(instrumentID, Buy, qty, price, at), nil
}

// Sell disposes of qty held shares of instrumentID at its current price.
//
// It fails, leaving everything unchanged, when qty is not positive, the
// instrument is unknown, or the account holds fewer than qty shares.
func (a *Account) Sell(inv Inventory, instrumentID string, qty int64, at time.Time) (Transaction, error) {
	if qty <= 0 {
		return Transaction{}, fmt.Errorf("sell %d of %q: %w", qty, instrumentID, ErrInvalidQuantity)
	}
	price, _, err := inv.Quote(instrumentID)
	if err != nil {
		return Transaction{}, fmt.Errorf("sell: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	held := a.holdings[instrumentID]
	if qty > held {
		return Transaction{}, fmt.Errorf("sell %d of %q (%d held): %w",
			qty, instrumentID, held, ErrInsufficientHoldings)
	}
	if err := inv.Release(instrumentID, qty); err != nil {
		return Transaction{}, fmt.Errorf("sell: %w", err)
	}

	if a.funded {
		a.wallet = a.wallet.Add(cost(price, qty))
	}
	if held == qty {
		delete(a.holdings, instrumentID)
	} else {
		a.holdings[instrumentID] = held - qty
	}
	return a.appendLocked(instrumentID, Sell, qty, price, at), nil
}

func (a *Account) appendLocked(instrumentID string, side Side, qty int64, price float64, at time.Time) Transaction {
	if at.IsZero() {
		at = time.Now()
	}
	t := Transaction{
		ID:           id.At(at),
		AccountID:    a.id,
		InstrumentID: instrumentID,
		Side:         side,
		Quantity:     qty,
		Price:        price,
		Time:         at,
	}
	a.txns = append(a.txns, t)
	return t
}

// Wallet is the cash balance; always zero for an unfunded account.
func (a *Account) Wallet() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wallet
}

// Holding is the number of shares held of instrumentID.
func (a *Account) Holding(instrumentID string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.holdings[instrumentID]
}

// Positions lists the non-zero holdings ordered by instrument id.
func (a *Account) Positions() []Position {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Position, 0, len(a.holdings))
	for inst, q := range a.holdings {
		out = append(out, Position{InstrumentID: inst, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstrumentID < out[j].InstrumentID })
	return out
}

// Transactions returns a copy of the log, oldest first.
func (a *Account) Transactions() []Transaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Transaction(nil), a.txns...)
}

// MarketValue values the holdings at prices. Instruments without a price
// count as zero.
func (a *Account) MarketValue(prices map[string]float64) decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := decimal.Zero
	for inst, q := range a.holdings {
		total = total.Add(cost(prices[inst], q))
	}
	return total
}

// NetWorth is the wallet plus the market value of the holdings.
func (a *Account) NetWorth(prices map[string]float64) decimal.Decimal {
	return a.Wallet().Add(a.MarketValue(prices))
}
