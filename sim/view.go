package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/pitlane/indicators"
	"github.com/rustyeddy/pitlane/league"
	"github.com/rustyeddy/pitlane/ledger"
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/strategies"
)

// Holding is a player position valued at the current price.
type Holding struct {
	InstrumentID string  `json:"instrument_id" msgpack:"instrument_id"`
	Symbol       string  `json:"symbol" msgpack:"symbol"`
	Quantity     int64   `json:"quantity" msgpack:"quantity"`
	Price        float64 `json:"price" msgpack:"price"`
	Value        float64 `json:"value" msgpack:"value"`
}

// Portfolio is the player's account. PortfolioValue is the value of the
// holdings and NetWorth adds the wallet.
type Portfolio struct {
	AccountID      string    `json:"account_id" msgpack:"account_id"`
	Wallet         float64   `json:"wallet" msgpack:"wallet"`
	Holdings       []Holding `json:"holdings" msgpack:"holdings"`
	PortfolioValue float64   `json:"portfolio_value" msgpack:"portfolio_value"`
	NetWorth       float64   `json:"net_worth" msgpack:"net_worth"`
}

// Detail is the analysis shown for a single instrument.
type Detail struct {
	Instrument market.Instrument          `json:"instrument" msgpack:"instrument"`
	RSI        float64                    `json:"rsi" msgpack:"rsi"`
	MACD       indicators.Signal          `json:"macd" msgpack:"macd"`
	Momentum   indicators.MomentumSignals `json:"momentum" msgpack:"momentum"`
	Valuation  strategies.ValueMetrics    `json:"valuation" msgpack:"valuation"`
	Volatility float64                    `json:"volatility" msgpack:"volatility"`
	Low        float64                    `json:"low" msgpack:"low"`
	High       float64                    `json:"high" msgpack:"high"`
	Moves      []market.Move              `json:"moves" msgpack:"moves"`
	Holding    int64                      `json:"holding" msgpack:"holding"`
}

// Snapshot is the whole observable state.
type Snapshot struct {
	Time         time.Time            `json:"time" msgpack:"time"`
	Tick         int64                `json:"tick" msgpack:"tick"`
	LastTick     time.Time            `json:"last_tick" msgpack:"last_tick"`
	Scenario     market.Scenario      `json:"scenario" msgpack:"scenario"`
	Instruments  []market.Instrument  `json:"instruments" msgpack:"instruments"`
	Portfolio    Portfolio            `json:"portfolio" msgpack:"portfolio"`
	Transactions []ledger.Transaction `json:"transactions" msgpack:"transactions"`
	Standings    []league.Standing    `json:"standings" msgpack:"standings"`
	News         []market.FeedItem    `json:"news" msgpack:"news"`
}

// NewsLimit bounds the feed in a snapshot.
const NewsLimit = 10

// Portfolio values the player's account at current prices.
func (e *Engine) Portfolio() Portfolio {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.portfolioLocked()
}

func (e *Engine) portfolioLocked() Portfolio {
	prices := e.catalog.Prices()
	p := Portfolio{
		AccountID:      e.player.ID(),
		Wallet:         e.player.Wallet().InexactFloat64(),
		Holdings:       []Holding{},
		PortfolioValue: e.player.MarketValue(prices).InexactFloat64(),
		NetWorth:       e.player.NetWorth(prices).InexactFloat64(),
	}
	for _, pos := range e.player.Positions() {
		h := Holding{InstrumentID: pos.InstrumentID, Quantity: pos.Quantity}
		if inst, ok := e.catalog.Instrument(pos.InstrumentID); ok {
			h.Symbol = inst.Symbol
			h.Price = inst.Price
			h.Value = inst.Price * float64(pos.Quantity)
		}
		p.Holdings = append(p.Holdings, h)
	}
	return p
}

// Detail computes indicators, valuation and significant moves for id.
func (e *Engine) Detail(id string) (Detail, error) {
	e.mu.Lock()
	inst, ok := e.catalog.Instrument(id)
	holding := e.player.Holding(id)
	e.mu.Unlock()
	if !ok {
		return Detail{}, fmt.Errorf("detail %q: %w", id, market.ErrUnknownInstrument)
	}

	prices := inst.Prices()
	mom := indicators.Momentum(prices)
	lo, hi := indicators.Range(prices)
	moves := inst.SignificantMoves(market.SignificantMoveThreshold)
	if moves == nil {
		moves = []market.Move{}
	}
	return Detail{
		Instrument: inst,
		RSI:        mom.RSI,
		MACD:       mom.MACD,
		Momentum:   mom,
		Valuation:  strategies.AnalyzeValue(inst.Price),
		Volatility: indicators.Volatility(prices),
		Low:        lo,
		High:       hi,
		Moves:      moves,
		Holding:    holding,
	}, nil
}

// Snapshot copies the whole state under one lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Snapshot{
		Time:         e.now(),
		Tick:         e.ticks,
		LastTick:     e.lastTick,
		Scenario:     e.catalog.Scenario(),
		Instruments:  e.catalog.List(),
		Portfolio:    e.portfolioLocked(),
		Transactions: e.player.Transactions(),
		Standings:    e.league.Standings(),
		News:         e.catalog.News(NewsLimit),
	}
}
