package strategies

import (
	"testing"
	"time"

	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withHistory(price float64, available int64, prices []float64) market.Instrument {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	in := market.Instrument{ID: "1", Symbol: "VER", Price: price, AvailableShares: available}
	for i, p := range prices {
		in.History = append(in.History, market.PricePoint{Time: t0.Add(time.Duration(i) * time.Hour), Price: p})
	}
	return in
}

// dipAfterRally ends oversold while the fast average is still above the slow.
func dipAfterRally() []float64 {
	var out []float64
	for i := 0; i < 20; i++ {
		out = append(out, 100+2*float64(i))
	}
	for i := 0; i < 14; i++ {
		out = append(out, out[len(out)-1]-1)
	}
	return out
}

// bounceAfterSlide ends overbought while the fast average is still below.
func bounceAfterSlide() []float64 {
	var out []float64
	for i := 0; i < 20; i++ {
		out = append(out, 200-2*float64(i))
	}
	for i := 0; i < 14; i++ {
		out = append(out, out[len(out)-1]+1)
	}
	return out
}

func TestAnalyzeValueDefaults(t *testing.T) {
	for _, p := range []float64{5, 100, 350.25, 10000} {
		m := AnalyzeValue(p)
		assert.InDelta(t, 20, m.PE, 1e-9)
		assert.InDelta(t, 1/0.7, m.PriceToBook, 1e-9)
		assert.False(t, m.Undervalued)
		assert.False(t, m.Overvalued)
	}
}

func TestAnalyzeValueWithCap(t *testing.T) {
	cheap := AnalyzeValueWithCap(100, 200e6)
	assert.InDelta(t, 10, cheap.PE, 1e-9)
	assert.True(t, cheap.Undervalued)

	dear := AnalyzeValueWithCap(100, 50e6)
	assert.InDelta(t, 40, dear.PE, 1e-9)
	assert.True(t, dear.Overvalued)
}

func TestValueHoldsOnSyntheticFundamentals(t *testing.T) {
	v := &Value{Policy: risk.DefaultPolicy()}
	d := v.Evaluate(withHistory(350.25, 1000, nil), 100000, 0)
	assert.Equal(t, ActionHold, d.Action)
	assert.Zero(t, d.Quantity)
	assert.Equal(t, "No clear value signal", d.Reason)
}

func TestValueDecisions(t *testing.T) {
	under := func(float64) ValueMetrics { return ValueMetrics{Undervalued: true} }
	over := func(float64) ValueMetrics { return ValueMetrics{Overvalued: true} }

	tests := []struct {
		name     string
		analyze  func(float64) ValueMetrics
		price    float64
		avail    int64
		holding  int64
		action   Action
		quantity int64
	}{
		{"buy up to cap", under, 350.25, 1000, 0, ActionBuy, 28},
		{"buy remaining headroom", under, 350.25, 1000, 25, ActionBuy, 3},
		{"buy limited by inventory", under, 100, 40, 0, ActionBuy, 40},
		{"at cap holds", under, 350.25, 1000, 28, ActionHold, 0},
		{"no inventory holds", under, 350.25, 0, 0, ActionHold, 0},
		{"sell everything", over, 350.25, 1000, 17, ActionSell, 17},
		{"overvalued without holding", over, 350.25, 1000, 0, ActionHold, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Value{Policy: risk.DefaultPolicy(), Analyze: tt.analyze}
			d := v.Evaluate(withHistory(tt.price, tt.avail, nil), 100000, tt.holding)
			assert.Equal(t, tt.action, d.Action)
			assert.Equal(t, tt.quantity, d.Quantity)
			assert.NotEmpty(t, d.Reason)
		})
	}
}

func TestMomentumDecisions(t *testing.T) {
	m := &Momentum{Policy: risk.DefaultPolicy()}

	d := m.Evaluate(withHistory(100, 1000, dipAfterRally()), 100000, 0)
	assert.Equal(t, ActionBuy, d.Action)
	assert.Equal(t, int64(100), d.Quantity)

	d = m.Evaluate(withHistory(100, 1000, dipAfterRally()), 100000, 100)
	assert.Equal(t, ActionHold, d.Action)

	d = m.Evaluate(withHistory(100, 1000, bounceAfterSlide()), 100000, 42)
	assert.Equal(t, ActionSell, d.Action)
	assert.Equal(t, int64(42), d.Quantity)

	d = m.Evaluate(withHistory(100, 1000, bounceAfterSlide()), 100000, 0)
	assert.Equal(t, ActionHold, d.Action)
}

func TestMomentumNeutralOnShortHistory(t *testing.T) {
	m := &Momentum{Policy: risk.DefaultPolicy()}
	d := m.Evaluate(withHistory(100, 1000, dipAfterRally()[:20]), 100000, 0)
	assert.Equal(t, ActionHold, d.Action)
	assert.Equal(t, "No clear momentum signal", d.Reason)
}

func TestMomentumNegativeCapitalHolds(t *testing.T) {
	m := &Momentum{Policy: risk.DefaultPolicy()}
	d := m.Evaluate(withHistory(100, 1000, dipAfterRally()), -5000, 0)
	assert.Equal(t, ActionHold, d.Action)
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"Conservative", KindValue},
		{"value", KindValue},
		{"Aggressive", KindMomentum},
		{" MOMENTUM ", KindMomentum},
	}
	for _, tt := range tests {
		s, err := ByName(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.kind, s.Kind())
	}

	_, err := ByName("Random")
	assert.Error(t, err)

	_, err = New(Kind("martingale"), risk.DefaultPolicy())
	assert.Error(t, err)
}
