package strategies

import (
	"github.com/rustyeddy/pitlane/indicators"
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/risk"
)

// Momentum buys on an oversold RSI confirmed by a bullish crossover and sells
// the whole position on an overbought RSI confirmed by a bearish one.
type Momentum struct {
	Policy risk.Policy
}

func (m *Momentum) Name() string { return "Momentum" }
func (m *Momentum) Kind() Kind   { return KindMomentum }

func (m *Momentum) Evaluate(inst market.Instrument, capital float64, holding int64) Decision {
	s := indicators.Momentum(inst.Prices())

	if s.StrongBuy && holding < m.Policy.MaxShares(capital, inst.Price) {
		return sizedBuy(m.Policy, inst, capital, holding,
			"Strong momentum buy signal (RSI + MACD)")
	}
	if s.StrongSell && holding > 0 {
		return sellAll(holding, "Strong momentum sell signal (RSI + MACD)")
	}
	return hold("No clear momentum signal")
}
