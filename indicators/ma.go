package indicators

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// SMA is the simple moving average of the last period prices.
func SMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(prices) < period {
		return 0, fmt.Errorf("not enough prices: need %d, got %d", period, len(prices))
	}
	return stat.Mean(prices[len(prices)-period:], nil), nil
}

// MACD compares the fast and slow simple moving averages. It is neutral until
// there are MACDSlow prices.
func MACD(prices []float64) Signal {
	if len(prices) < MACDSlow {
		return Neutral
	}
	fast, _ := SMA(prices, MACDFast)
	slow, _ := SMA(prices, MACDSlow)

	switch {
	case fast > slow:
		return Buy
	case fast < slow:
		return Sell
	default:
		return Neutral
	}
}
