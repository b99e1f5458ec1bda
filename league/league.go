package league

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/pitlane/ledger"
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/strategies"
)

// DefaultInitialCapital is the notional capital every member starts with.
const DefaultInitialCapital = 100000.0

// Market is what a trading round needs from the catalog.
type Market interface {
	ledger.Inventory
	List() []market.Instrument
	Prices() map[string]float64
}

// Trade is a member transaction with the reason its strategy gave.
type Trade struct {
	Member      string             `json:"member" msgpack:"member"`
	Transaction ledger.Transaction `json:"transaction" msgpack:"transaction"`
	Reason      string             `json:"reason" msgpack:"reason"`
}

// Standing is a member's place in the league.
type Standing struct {
	Rank           int               `json:"rank" msgpack:"rank"`
	ID             string            `json:"id" msgpack:"id"`
	Username       string            `json:"username" msgpack:"username"`
	Algorithm      Algorithm         `json:"algorithm" msgpack:"algorithm"`
	PortfolioValue float64           `json:"portfolio_value" msgpack:"portfolio_value"`
	Holdings       []ledger.Position `json:"holdings" msgpack:"holdings"`
}

// League is the ordered set of members.
type League struct {
	mu             sync.Mutex
	initialCapital float64
	members        []*Member
	log            zerolog.Logger
}

// New returns an empty league. initialCapital <= 0 uses DefaultInitialCapital.
func New(initialCapital float64, log zerolog.Logger) *League {
	if initialCapital <= 0 {
		initialCapital = DefaultInitialCapital
	}
	return &League{
		initialCapital: initialCapital,
		log:            log.With().Str("component", "league").Logger(),
	}
}

func (l *League) InitialCapital() float64 { return l.initialCapital }

// Add creates a member from spec.
func (l *League) Add(spec MemberSpec) (*Member, error) {
	m, err := newMember(spec, l.initialCapital)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.members {
		if existing.ID == m.ID {
			return nil, fmt.Errorf("add member: duplicate id %q", m.ID)
		}
	}
	l.members = append(l.members, m)
	l.log.Info().
		Str("member", m.Username).
		Str("algorithm", string(m.Algorithm)).
		Msg("member joined")
	return m, nil
}

// Member looks a member up by id.
func (l *League) Member(id string) (*Member, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

func (l *League) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.members)
}

// ExecuteTrades runs one round: every member evaluates every instrument and
// the resulting orders are applied to the member's account against mkt.
//
// A member's capital is the initial capital less the current value of its
// holdings, computed once at the start of its turn.
func (l *League) ExecuteTrades(mkt Market, at time.Time) []Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	var trades []Trade
	for _, m := range l.members {
		holdingsValue, _ := m.Account.MarketValue(mkt.Prices()).Float64()
		cash := l.initialCapital - holdingsValue

		for _, inst := range mkt.List() {
			holding := m.Account.Holding(inst.ID)
			d := m.Strategy.Evaluate(inst, cash, holding)

			l.log.Debug().
				Str("member", m.Username).
				Str("symbol", inst.Symbol).
				Int64("holding", holding).
				Float64("cash", cash).
				Str("action", string(d.Action)).
				Int64("quantity", d.Quantity).
				Msg("evaluated")

			tx, err := apply(m.Account, mkt, inst.ID, d, at)
			if err != nil {
				l.log.Debug().Err(err).Str("member", m.Username).Str("symbol", inst.Symbol).Msg("order rejected")
				continue
			}
			if tx == nil {
				continue
			}
			l.log.Info().
				Str("member", m.Username).
				Str("side", string(tx.Side)).
				Int64("quantity", tx.Quantity).
				Str("symbol", inst.Symbol).
				Float64("price", tx.Price).
				Msg("member traded")
			trades = append(trades, Trade{Member: m.ID, Transaction: *tx, Reason: d.Reason})
		}
	}
	return trades
}

func apply(a *ledger.Account, inv ledger.Inventory, instrumentID string, d strategies.Decision, at time.Time) (*ledger.Transaction, error) {
	var (
		tx  ledger.Transaction
		err error
	)
	switch d.Action {
	case strategies.ActionBuy:
		tx, err = a.Buy(inv, instrumentID, d.Quantity, at)
	case strategies.ActionSell:
		tx, err = a.Sell(inv, instrumentID, d.Quantity, at)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// Revalue sets every member's portfolio value to the initial capital plus the
// market value of its holdings at prices.
func (l *League) Revalue(prices map[string]float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.members {
		mv, _ := m.Account.MarketValue(prices).Float64()
		m.PortfolioValue = l.initialCapital + mv
	}
}

// Standings ranks members by portfolio value, highest first. Ties keep join
// order.
func (l *League) Standings() []Standing {
	l.mu.Lock()
	out := make([]Standing, 0, len(l.members))
	for _, m := range l.members {
		out = append(out, Standing{
			ID:             m.ID,
			Username:       m.Username,
			Algorithm:      m.Algorithm,
			PortfolioValue: m.PortfolioValue,
			Holdings:       m.Account.Positions(),
		})
	}
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PortfolioValue > out[j].PortfolioValue
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
