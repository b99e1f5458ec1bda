package indicators

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Returns converts prices into fractional step returns. Steps from a zero
// price are skipped.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// Volatility is the sample standard deviation of the step returns, 0 when
// there are fewer than two returns.
func Volatility(prices []float64) float64 {
	r := Returns(prices)
	if len(r) < 2 {
		return 0
	}
	v := stat.StdDev(r, nil)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// Range returns the lowest and highest price, both 0 for an empty series.
func Range(prices []float64) (lo, hi float64) {
	if len(prices) == 0 {
		return 0, 0
	}
	lo, hi = prices[0], prices[0]
	for _, p := range prices[1:] {
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	return lo, hi
}
