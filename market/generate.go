package market

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/pitlane/pricing"
)

const day = 24 * time.Hour

// Generate builds a fresh catalog for scenario s. Randomness comes from src so
// a seeded walker yields a reproducible catalog.
func Generate(s Scenario, src pricing.Source, now time.Time) *Catalog {
	instruments := make([]Instrument, 0, len(drivers))
	for _, d := range drivers {
		instruments = append(instruments, Instrument{
			ID:              d.id,
			Symbol:          d.symbol,
			Name:            d.name,
			Team:            d.team,
			Price:           d.price,
			PreviousPrice:   d.previousPrice,
			AvailableShares: int64(math.Round(float64(d.shares) * s.VolumeMultiplier)),
			History:         seedHistory(d.historyBase, s.Volatility, src, now),
			News:            seedNews(s, src, now),
		})
	}
	return NewCatalog(s, instruments)
}

// seedHistory returns MaxHistory daily samples ending at now, each within
// volatility of base.
func seedHistory(base, volatility float64, src pricing.Source, now time.Time) []PricePoint {
	out := make([]PricePoint, 0, MaxHistory)
	for i := MaxHistory - 1; i >= 0; i-- {
		change := (src.Float64() - 0.5) * 2 * volatility * base
		out = append(out, PricePoint{
			Time:  now.Add(-time.Duration(i) * day),
			Price: pricing.Round2(base + change),
		})
	}
	return out
}

// seedNews places the scenario headlines on the previous day and sprinkles
// performance updates across the rest of the history window.
func seedNews(s Scenario, src pricing.Source, now time.Time) []NewsItem {
	var out []NewsItem
	for i := MaxHistory - 1; i >= 0; i-- {
		ts := now.Add(-time.Duration(i) * day)
		if i == 1 {
			for k, h := range s.Headlines {
				out = append(out, NewsItem{
					Title: h.Title,
					URL:   h.URL,
					Time:  ts.Add(time.Duration(k) * time.Hour),
				})
			}
			continue
		}
		if src.Float64() > 0.7 {
			out = append(out, NewsItem{
				Title: fmt.Sprintf("Performance Update %d days ago", i),
				Time:  ts,
			})
		}
	}
	return out
}
