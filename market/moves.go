package market

import (
	"math"
	"time"
)

// SignificantMoveThreshold is the fractional move that counts as significant.
const SignificantMoveThreshold = 0.02

// Move is a history step at or beyond the significance threshold, with the
// news published the same day if there was any.
type Move struct {
	Time          time.Time  `json:"time" msgpack:"time"`
	Price         float64    `json:"price" msgpack:"price"`
	ChangePercent float64    `json:"change_percent" msgpack:"change_percent"`
	News          []NewsItem `json:"news,omitempty" msgpack:"news,omitempty"`
}

// SignificantMoves scans the history for steps of at least threshold.
func (i Instrument) SignificantMoves(threshold float64) []Move {
	var out []Move
	for k := 1; k < len(i.History); k++ {
		prev := i.History[k-1].Price
		if prev == 0 {
			continue
		}
		cur := i.History[k]
		change := (cur.Price - prev) / prev
		if math.Abs(change) < threshold {
			continue
		}
		out = append(out, Move{
			Time:          cur.Time,
			Price:         cur.Price,
			ChangePercent: change * 100,
			News:          i.newsOn(cur.Time),
		})
	}
	return out
}

func (i Instrument) newsOn(t time.Time) []NewsItem {
	y, m, d := t.Date()
	var out []NewsItem
	for _, n := range i.News {
		ny, nm, nd := n.Time.Date()
		if ny == y && nm == m && nd == d && n.Title != "" {
			out = append(out, n)
		}
	}
	return out
}
