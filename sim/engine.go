// Package sim runs the market: it owns the catalog, the player's portfolio and
// the league, advances them one tick at a time and drives ticks on a clock.
package sim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/pitlane/events"
	"github.com/rustyeddy/pitlane/journal"
	"github.com/rustyeddy/pitlane/league"
	"github.com/rustyeddy/pitlane/ledger"
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/pricing"
	"github.com/shopspring/decimal"
)

// PlayerID is the account id of the human player.
const PlayerID = "player"

// Options configures an Engine. Zero values fall back to defaults.
type Options struct {
	Scenario       string
	InitialBalance float64
	InitialCapital float64
	Members        []league.MemberSpec
	Seed           int64

	Journal journal.Journal
	Bus     *events.Bus
	Logger  zerolog.Logger

	// Now is the clock, time.Now when nil.
	Now func() time.Time
}

// TickResult is what one tick changed.
type TickResult struct {
	Tick      int64             `json:"tick" msgpack:"tick"`
	Time      time.Time         `json:"time" msgpack:"time"`
	Prices    []pricing.Tick    `json:"prices" msgpack:"prices"`
	Trades    []league.Trade    `json:"trades" msgpack:"trades"`
	Standings []league.Standing `json:"standings" msgpack:"standings"`
}

type Engine struct {
	mu      sync.Mutex
	catalog *market.Catalog
	walker  *pricing.Walker
	player  *ledger.Account
	league  *league.League
	bus     *events.Bus
	journal journal.Journal
	log     zerolog.Logger
	now     func() time.Time

	ticks    int64
	lastTick time.Time
}

func NewEngine(opts Options) (*Engine, error) {
	log := opts.Logger.With().Str("component", "engine").Logger()

	name := opts.Scenario
	if name == "" {
		name = string(market.Midweek)
	}
	s, err := market.LookupScenario(name)
	if err != nil {
		return nil, err
	}

	balance := opts.InitialBalance
	if balance <= 0 {
		balance = 100000
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	j := opts.Journal
	if j == nil {
		j = journal.Nop{}
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus(opts.Logger)
	}

	lg := league.New(opts.InitialCapital, opts.Logger)
	members := opts.Members
	if members == nil {
		members = league.DefaultMembers()
	}
	for _, m := range members {
		if _, err := lg.Add(m); err != nil {
			return nil, err
		}
	}

	walker := pricing.NewWalker(opts.Seed, pricing.WithLogger(opts.Logger))
	e := &Engine{
		catalog: market.Generate(s, walker, now()),
		walker:  walker,
		player:  ledger.NewPortfolio(PlayerID, decimal.NewFromFloat(balance)),
		league:  lg,
		bus:     bus,
		journal: j,
		log:     log,
		now:     now,
	}

	log.Info().
		Str("scenario", string(s.Name)).
		Int("instruments", e.catalog.Len()).
		Int("members", lg.Len()).
		Float64("balance", balance).
		Msg("engine ready")
	return e, nil
}

func (e *Engine) Bus() *events.Bus { return e.bus }

// Tick advances every price, runs a league trading round, revalues the
// league and records the outcome. Journal failures are logged and do not
// fail the tick.
func (e *Engine) Tick(ctx context.Context) (TickResult, error) {
	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}

	e.mu.Lock()
	at := e.now()
	e.ticks++
	e.lastTick = at

	moves := e.catalog.Advance(e.walker, at)
	trades := e.league.ExecuteTrades(e.catalog, at)
	prices := e.catalog.Prices()
	e.league.Revalue(prices)
	standings := e.league.Standings()

	res := TickResult{
		Tick:      e.ticks,
		Time:      at,
		Prices:    moves,
		Trades:    trades,
		Standings: standings,
	}
	for _, tr := range trades {
		e.recordTrade(tr.Transaction)
	}
	for _, st := range standings {
		e.recordStanding(res.Tick, at, st)
	}
	e.mu.Unlock()

	e.log.Debug().
		Int64("tick", res.Tick).
		Int("trades", len(trades)).
		Msg("tick")

	e.bus.Publish(events.PricesUpdated, moves)
	for _, tr := range trades {
		e.bus.Publish(events.TradeExecuted, tr)
	}
	e.bus.Publish(events.LeagueUpdated, standings)
	return res, nil
}

// Buy purchases qty shares of instrumentID for the player.
func (e *Engine) Buy(instrumentID string, qty int64) (ledger.Transaction, error) {
	return e.Trade(ledger.Buy, instrumentID, qty)
}

// Sell sells qty held shares of instrumentID for the player.
func (e *Engine) Sell(instrumentID string, qty int64) (ledger.Transaction, error) {
	return e.Trade(ledger.Sell, instrumentID, qty)
}

// Trade executes a player order at the current price.
func (e *Engine) Trade(side ledger.Side, instrumentID string, qty int64) (ledger.Transaction, error) {
	e.mu.Lock()
	var (
		tx  ledger.Transaction
		err error
	)
	switch side {
	case ledger.Buy:
		tx, err = e.player.Buy(e.catalog, instrumentID, qty, e.now())
	case ledger.Sell:
		tx, err = e.player.Sell(e.catalog, instrumentID, qty, e.now())
	default:
		err = fmt.Errorf("unknown side %q", side)
	}
	if err != nil {
		e.mu.Unlock()
		e.log.Debug().Err(err).Str("instrument", instrumentID).Int64("quantity", qty).Msg("order rejected")
		return ledger.Transaction{}, err
	}
	e.recordTrade(tx)
	e.mu.Unlock()

	e.log.Info().
		Str("side", string(tx.Side)).
		Str("instrument", tx.InstrumentID).
		Int64("quantity", tx.Quantity).
		Float64("price", tx.Price).
		Msg("player traded")
	e.bus.Publish(events.TradeExecuted, league.Trade{Member: PlayerID, Transaction: tx})
	return tx, nil
}

// SetScenario regenerates the catalog for the named scenario. Holdings are
// kept; inventory starts again from the scenario's share counts.
func (e *Engine) SetScenario(name string) (market.Scenario, error) {
	s, err := market.LookupScenario(name)
	if err != nil {
		return market.Scenario{}, err
	}

	e.mu.Lock()
	e.catalog = market.Generate(s, e.walker, e.now())
	e.league.Revalue(e.catalog.Prices())
	e.mu.Unlock()

	e.log.Info().Str("scenario", string(s.Name)).Msg("scenario changed")
	e.bus.Publish(events.ScenarioChanged, s)
	return s, nil
}

func (e *Engine) Scenario() market.Scenario {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Scenario()
}

// Ticks is the number of ticks run so far.
func (e *Engine) Ticks() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ticks
}

func (e *Engine) Instruments() []market.Instrument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.List()
}

func (e *Engine) Instrument(id string) (market.Instrument, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Instrument(id)
}

// Search filters instruments by name, symbol or team.
func (e *Engine) Search(q string) []market.Instrument {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Search(strings.TrimSpace(q))
}

// News returns up to limit recent headlines across all instruments.
func (e *Engine) News(limit int) []market.FeedItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.News(limit)
}

func (e *Engine) Standings() []league.Standing {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.league.Standings()
}

func (e *Engine) Transactions() []ledger.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.player.Transactions()
}

// Close releases the journal.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.journal.Close()
}

func (e *Engine) recordTrade(tx ledger.Transaction) {
	symbol := tx.InstrumentID
	if inst, ok := e.catalog.Instrument(tx.InstrumentID); ok {
		symbol = inst.Symbol
	}
	err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:    tx.ID,
		Account:    tx.AccountID,
		Instrument: tx.InstrumentID,
		Symbol:     symbol,
		Side:       string(tx.Side),
		Quantity:   tx.Quantity,
		Price:      tx.Price,
		Value:      tx.Value().InexactFloat64(),
		Time:       tx.Time,
	})
	if err != nil {
		e.log.Error().Err(err).Str("trade", tx.ID).Msg("journal trade failed")
	}
}

func (e *Engine) recordStanding(tick int64, at time.Time, st league.Standing) {
	err := e.journal.RecordStanding(journal.StandingRecord{
		Time:           at,
		Tick:           tick,
		MemberID:       st.ID,
		Username:       st.Username,
		Algorithm:      string(st.Algorithm),
		Rank:           st.Rank,
		PortfolioValue: st.PortfolioValue,
	})
	if err != nil {
		e.log.Error().Err(err).Str("member", st.Username).Msg("journal standing failed")
	}
}
