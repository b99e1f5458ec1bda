// Package indicators provides the simplified technical indicators the
// momentum strategy and the instrument detail view are built on. They are
// heuristics over short price series, not textbook formulas.
package indicators

// Default periods.
const (
	RSIPeriod  = 14
	MACDFast   = 12
	MACDSlow   = 26
	Oversold   = 30.0
	Overbought = 70.0
)

// Signal is the direction suggested by a crossover.
type Signal string

const (
	Buy     Signal = "buy"
	Sell    Signal = "sell"
	Neutral Signal = "neutral"
)

// MomentumSignals combines RSI and the MACD crossover.
type MomentumSignals struct {
	StrongBuy  bool    `json:"strong_buy" msgpack:"strong_buy"`
	StrongSell bool    `json:"strong_sell" msgpack:"strong_sell"`
	RSI        float64 `json:"rsi" msgpack:"rsi"`
	MACD       Signal  `json:"macd" msgpack:"macd"`
}

// Momentum evaluates prices (oldest first). A strong buy is an oversold RSI
// with a bullish crossover; a strong sell is an overbought RSI with a bearish
// one.
func Momentum(prices []float64) MomentumSignals {
	rsi := RSI(prices, RSIPeriod)
	macd := MACD(prices)
	return MomentumSignals{
		StrongBuy:  rsi < Oversold && macd == Buy,
		StrongSell: rsi > Overbought && macd == Sell,
		RSI:        rsi,
		MACD:       macd,
	}
}
