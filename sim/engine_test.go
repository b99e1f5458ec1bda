package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/pitlane/events"
	"github.com/rustyeddy/pitlane/journal"
	"github.com/rustyeddy/pitlane/league"
	"github.com/rustyeddy/pitlane/ledger"
	"github.com/rustyeddy/pitlane/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)

func stepClock() func() time.Time {
	now := t0
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newEngine(t *testing.T, mutate ...func(*Options)) *Engine {
	t.Helper()
	opts := Options{
		Seed:   42,
		Logger: zerolog.Nop(),
		Now:    stepClock(),
	}
	for _, m := range mutate {
		m(&opts)
	}
	e, err := NewEngine(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func noMembers(o *Options) { o.Members = []league.MemberSpec{} }

type recordingJournal struct {
	trades    []journal.TradeRecord
	standings []journal.StandingRecord
	err       error
}

func (j *recordingJournal) RecordTrade(r journal.TradeRecord) error {
	j.trades = append(j.trades, r)
	return j.err
}

func (j *recordingJournal) RecordStanding(r journal.StandingRecord) error {
	j.standings = append(j.standings, r)
	return j.err
}

func (j *recordingJournal) Close() error { return nil }

func TestNewEngineDefaults(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	assert.Equal(t, market.Midweek, e.Scenario().Name)
	assert.Len(t, e.Instruments(), 6)
	assert.Len(t, e.Standings(), 2)

	p := e.Portfolio()
	assert.Equal(t, PlayerID, p.AccountID)
	assert.Equal(t, 100000.0, p.Wallet)
	assert.Empty(t, p.Holdings)
	assert.Zero(t, p.PortfolioValue)
	assert.Equal(t, 100000.0, p.NetWorth)

	for _, inst := range e.Instruments() {
		assert.Len(t, inst.History, market.MaxHistory)
	}
}

func TestNewEngineErrors(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(Options{Scenario: "testing", Logger: zerolog.Nop()})
	assert.Error(t, err)

	_, err = NewEngine(Options{
		Logger:  zerolog.Nop(),
		Members: []league.MemberSpec{{Username: "X", Algorithm: "dice"}},
	})
	assert.Error(t, err)
}

func TestPlayerBuy(t *testing.T) {
	t.Parallel()

	j := &recordingJournal{}
	e := newEngine(t, func(o *Options) { o.Journal = j })

	tx, err := e.Buy("1", 10)
	require.NoError(t, err)
	assert.Equal(t, 350.25, tx.Price)
	assert.Equal(t, ledger.Buy, tx.Side)

	p := e.Portfolio()
	assert.InDelta(t, 96497.50, p.Wallet, 1e-9)
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, "VER", p.Holdings[0].Symbol)
	assert.Equal(t, int64(10), p.Holdings[0].Quantity)
	assert.InDelta(t, 3502.50, p.PortfolioValue, 1e-9)
	assert.InDelta(t, 100000.0, p.NetWorth, 1e-9)

	inst, ok := e.Instrument("1")
	require.True(t, ok)
	assert.Equal(t, int64(990), inst.AvailableShares)

	require.Len(t, j.trades, 1)
	assert.Equal(t, "VER", j.trades[0].Symbol)
	assert.Equal(t, PlayerID, j.trades[0].Account)
	assert.InDelta(t, 3502.50, j.trades[0].Value, 1e-9)
}

func TestPlayerBuyFailuresLeaveStateUnchanged(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	_, err := e.Buy("1", 2000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	_, err = e.Buy("1", 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidQuantity)
	_, err = e.Buy("42", 1)
	assert.ErrorIs(t, err, ledger.ErrUnknownInstrument)
	_, err = e.Sell("1", 1)
	assert.ErrorIs(t, err, ledger.ErrInsufficientHoldings)
	_, err = e.Trade(ledger.Side("short"), "1", 1)
	assert.Error(t, err)

	p := e.Portfolio()
	assert.Equal(t, 100000.0, p.Wallet)
	assert.Empty(t, p.Holdings)
	assert.Empty(t, e.Transactions())

	inst, _ := e.Instrument("1")
	assert.Equal(t, int64(1000), inst.AvailableShares)
}

func TestPlayerBuyBeyondAvailableShares(t *testing.T) {
	t.Parallel()

	e := newEngine(t, func(o *Options) { o.InitialBalance = 1e9 })

	_, err := e.Buy("1", 2000)
	assert.ErrorIs(t, err, ledger.ErrInsufficientShares)

	p := e.Portfolio()
	assert.Equal(t, 1e9, p.Wallet)
	assert.Empty(t, p.Holdings)
	assert.Empty(t, e.Transactions())

	inst, _ := e.Instrument("1")
	assert.Equal(t, int64(1000), inst.AvailableShares)
}

func TestPlayerRoundTripRestoresWallet(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	_, err := e.Buy("4", 7)
	require.NoError(t, err)
	_, err = e.Sell("4", 7)
	require.NoError(t, err)

	assert.Equal(t, 100000.0, e.Portfolio().Wallet)
	assert.Len(t, e.Transactions(), 2)
}

func TestTickAdvancesPrices(t *testing.T) {
	t.Parallel()

	e := newEngine(t, noMembers)
	before := e.Instruments()

	res, err := e.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Tick)
	assert.Equal(t, int64(1), e.Ticks())
	require.Len(t, res.Prices, len(before))

	after := e.Instruments()
	for i, inst := range after {
		prev := before[i].Price
		assert.Equal(t, prev, inst.PreviousPrice)
		assert.LessOrEqual(t, math.Abs(inst.Price-prev), 0.025*prev+0.005, inst.Symbol)
		assert.Equal(t, math.Round(inst.Price*100)/100, inst.Price)
		assert.Len(t, inst.History, market.MaxHistory)
		assert.Equal(t, prev, inst.History[len(inst.History)-1].Price)
	}
}

func TestTickHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Tick(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, e.Ticks())
}

func TestTickConservesShares(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	initial := map[string]int64{}
	for _, inst := range e.Instruments() {
		initial[inst.ID] = inst.AvailableShares
	}

	_, err := e.Buy("2", 25)
	require.NoError(t, err)

	for i := 0; i < 60; i++ {
		_, err := e.Tick(context.Background())
		require.NoError(t, err)
	}

	for _, inst := range e.Instruments() {
		held := e.player.Holding(inst.ID)
		for _, st := range e.Standings() {
			m, ok := e.league.Member(st.ID)
			require.True(t, ok)
			held += m.Account.Holding(inst.ID)
		}
		assert.GreaterOrEqual(t, inst.AvailableShares, int64(0))
		assert.Equal(t, initial[inst.ID], inst.AvailableShares+held, inst.Symbol)
	}
}

func TestTickRecordsStandingsAndSurvivesJournalErrors(t *testing.T) {
	t.Parallel()

	j := &recordingJournal{err: errors.New("disk full")}
	e := newEngine(t, func(o *Options) { o.Journal = j })

	res, err := e.Tick(context.Background())
	require.NoError(t, err)
	require.Len(t, j.standings, 2)
	assert.Equal(t, int64(1), j.standings[0].Tick)
	assert.Equal(t, res.Standings[0].Username, j.standings[0].Username)
	assert.Equal(t, 1, j.standings[0].Rank)

	_, err = e.Buy("1", 1)
	assert.NoError(t, err)
}

func TestTickPublishesEvents(t *testing.T) {
	t.Parallel()

	bus := events.NewBus(zerolog.Nop())
	e := newEngine(t, noMembers, func(o *Options) { o.Bus = bus })
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	_, err := e.Tick(context.Background())
	require.NoError(t, err)

	ev := <-ch
	assert.Equal(t, events.PricesUpdated, ev.Type)
	ev = <-ch
	assert.Equal(t, events.LeagueUpdated, ev.Type)

	_, err = e.Buy("1", 1)
	require.NoError(t, err)
	ev = <-ch
	assert.Equal(t, events.TradeExecuted, ev.Type)
	tr, ok := ev.Data.(league.Trade)
	require.True(t, ok)
	assert.Equal(t, PlayerID, tr.Member)
}

func TestSetScenarioScalesInventory(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	mid := map[string]int64{}
	for _, inst := range e.Instruments() {
		mid[inst.ID] = inst.AvailableShares
	}

	s, err := e.SetScenario("raceday")
	require.NoError(t, err)
	assert.Equal(t, market.Raceday, s.Name)
	assert.Equal(t, market.Raceday, e.Scenario().Name)
	for _, inst := range e.Instruments() {
		assert.Equal(t, 2*mid[inst.ID], inst.AvailableShares, inst.Symbol)
	}

	_, err = e.SetScenario("postseason")
	require.NoError(t, err)
	vs, _ := e.Instrument("1")
	assert.Equal(t, int64(500), vs.AvailableShares)

	_, err = e.SetScenario("testing")
	assert.Error(t, err)
	assert.Equal(t, market.Postseason, e.Scenario().Name)
}

func TestSetScenarioKeepsHoldings(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	_, err := e.Buy("1", 10)
	require.NoError(t, err)

	_, err = e.SetScenario("raceday")
	require.NoError(t, err)
	p := e.Portfolio()
	require.Len(t, p.Holdings, 1)
	assert.Equal(t, int64(10), p.Holdings[0].Quantity)
	assert.InDelta(t, 96497.50, p.Wallet, 1e-9)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	got := e.Search(" mercedes ")
	require.Len(t, got, 2)
	assert.Equal(t, "HAM", got[0].Symbol)
	assert.Equal(t, "RUS", got[1].Symbol)

	assert.Len(t, e.Search(""), 6)
	assert.Empty(t, e.Search("williams"))
}

func TestDetail(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	_, err := e.Buy("3", 4)
	require.NoError(t, err)

	d, err := e.Detail("3")
	require.NoError(t, err)
	assert.Equal(t, "HAM", d.Instrument.Symbol)
	assert.Equal(t, int64(4), d.Holding)
	assert.GreaterOrEqual(t, d.RSI, 0.0)
	assert.LessOrEqual(t, d.RSI, 100.0)
	assert.Equal(t, d.Momentum.MACD, d.MACD)
	assert.InDelta(t, 20.0, d.Valuation.PE, 1e-9)
	assert.LessOrEqual(t, d.Low, d.High)
	assert.NotNil(t, d.Moves)
	for _, m := range d.Moves {
		assert.GreaterOrEqual(t, math.Abs(m.ChangePercent), 2.0-1e-9)
	}

	_, err = e.Detail("99")
	assert.ErrorIs(t, err, market.ErrUnknownInstrument)
}

func TestSnapshot(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	_, err := e.Buy("1", 10)
	require.NoError(t, err)
	_, err = e.Tick(context.Background())
	require.NoError(t, err)

	s := e.Snapshot()
	assert.Equal(t, int64(1), s.Tick)
	assert.False(t, s.LastTick.IsZero())
	assert.Equal(t, market.Midweek, s.Scenario.Name)
	assert.Len(t, s.Instruments, 6)
	assert.Len(t, s.Transactions, 1)
	assert.Len(t, s.Standings, 2)
	assert.LessOrEqual(t, len(s.News), NewsLimit)
	assert.NotEmpty(t, s.News)
}

func TestSameSeedSameMarket(t *testing.T) {
	t.Parallel()

	a := newEngine(t, noMembers)
	b := newEngine(t, noMembers)
	for i := 0; i < 5; i++ {
		_, err := a.Tick(context.Background())
		require.NoError(t, err)
		_, err = b.Tick(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, a.Instruments(), b.Instruments())
}
