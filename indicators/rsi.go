package indicators

// RSI is the relative strength index over the last period price changes,
// using plain averages of gains and losses.
//
// It returns 50 until there are period+1 prices. A window with gains and no
// losses is 100, one with losses and no gains is 0, and a flat window is 50.
func RSI(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period+1 {
		return 50
	}

	var gains, losses float64
	n := len(prices)
	for i := 1; i <= period; i++ {
		d := prices[n-i] - prices[n-i-1]
		if d >= 0 {
			gains += d
		} else {
			losses -= d
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	switch {
	case avgLoss == 0 && avgGain == 0:
		return 50
	case avgLoss == 0:
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
