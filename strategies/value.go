package strategies

import (
	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/risk"
)

// ValueMetrics are the synthetic fundamentals of a price.
type ValueMetrics struct {
	Undervalued bool    `json:"undervalued" msgpack:"undervalued"`
	Overvalued  bool    `json:"overvalued" msgpack:"overvalued"`
	PE          float64 `json:"pe" msgpack:"pe"`
	PriceToBook float64 `json:"price_to_book" msgpack:"price_to_book"`
}

const (
	sharesOutstanding = 1_000_000
	earningsYield     = 0.05
	bookRatio         = 0.7
)

// AnalyzeValue derives fundamentals from price alone, assuming a market cap
// of price times one million shares.
func AnalyzeValue(price float64) ValueMetrics {
	return AnalyzeValueWithCap(price, price*sharesOutstanding)
}

// AnalyzeValueWithCap derives fundamentals from price and marketCap.
// Earnings are 5% and book value 70% of the market cap.
func AnalyzeValueWithCap(price, marketCap float64) ValueMetrics {
	earnings := marketCap * earningsYield
	book := marketCap * bookRatio

	pe := price / (earnings / sharesOutstanding)
	ptb := price / (book / sharesOutstanding)
	return ValueMetrics{
		Undervalued: pe < 15 && ptb < 1.5,
		Overvalued:  pe > 25 || ptb > 3,
		PE:          pe,
		PriceToBook: ptb,
	}
}

// Value buys undervalued drivers up to the position cap and dumps overvalued
// ones.
type Value struct {
	Policy risk.Policy

	// Analyze overrides AnalyzeValue.
	Analyze func(price float64) ValueMetrics
}

func (v *Value) Name() string { return "Value" }
func (v *Value) Kind() Kind   { return KindValue }

func (v *Value) Evaluate(inst market.Instrument, capital float64, holding int64) Decision {
	analyze := v.Analyze
	if analyze == nil {
		analyze = AnalyzeValue
	}
	m := analyze(inst.Price)

	if m.Undervalued && holding < v.Policy.MaxShares(capital, inst.Price) {
		return sizedBuy(v.Policy, inst, capital, holding,
			"Stock appears undervalued based on P/E and P/B ratios")
	}
	if m.Overvalued && holding > 0 {
		return sellAll(holding, "Stock appears overvalued based on fundamentals")
	}
	return hold("No clear value signal")
}
