// Package market holds the tradable instruments (drivers), the scenarios that
// generate them, and the catalog shared by the player and the league.
package market

import (
	"strings"
	"time"

	"github.com/rustyeddy/pitlane/pricing"
)

// MaxHistory bounds the price history kept per instrument.
const MaxHistory = 30

// PricePoint is one sample of an instrument's price history.
type PricePoint struct {
	Time  time.Time `json:"time" msgpack:"time"`
	Price float64   `json:"price" msgpack:"price"`
}

// NewsItem is a headline attached to an instrument.
type NewsItem struct {
	Title string    `json:"title" msgpack:"title"`
	URL   string    `json:"url,omitempty" msgpack:"url,omitempty"`
	Time  time.Time `json:"time" msgpack:"time"`
}

// Instrument is a tradable driver.
type Instrument struct {
	ID              string       `json:"id" msgpack:"id"`
	Symbol          string       `json:"symbol" msgpack:"symbol"`
	Name            string       `json:"name" msgpack:"name"`
	Team            string       `json:"team" msgpack:"team"`
	Price           float64      `json:"price" msgpack:"price"`
	PreviousPrice   float64      `json:"previous_price" msgpack:"previous_price"`
	AvailableShares int64        `json:"available_shares" msgpack:"available_shares"`
	History         []PricePoint `json:"history" msgpack:"history"`
	News            []NewsItem   `json:"news" msgpack:"news"`
}

// ApplyPrice replaces the price with next, remembering the old price as the
// previous price and as the newest history sample.
func (i *Instrument) ApplyPrice(next float64, at time.Time) pricing.Tick {
	tick := pricing.Tick{
		Instrument: i.ID,
		Time:       at,
		Previous:   i.Price,
		Price:      next,
	}

	i.History = append(i.History, PricePoint{Time: at, Price: i.Price})
	if n := len(i.History); n > MaxHistory {
		i.History = append([]PricePoint(nil), i.History[n-MaxHistory:]...)
	}
	i.PreviousPrice = i.Price
	i.Price = next
	return tick
}

// Prices returns the history prices, oldest first.
func (i Instrument) Prices() []float64 {
	out := make([]float64, len(i.History))
	for k, p := range i.History {
		out[k] = p.Price
	}
	return out
}

// Change is the move since the previous price.
func (i Instrument) Change() float64 {
	return pricing.Round2(i.Price - i.PreviousPrice)
}

// ChangePercent is Change relative to the previous price.
func (i Instrument) ChangePercent() float64 {
	if i.PreviousPrice == 0 {
		return 0
	}
	return (i.Price - i.PreviousPrice) / i.PreviousPrice * 100
}

// Matches reports whether q appears in the name, symbol or team, ignoring case.
// An empty query matches everything.
func (i Instrument) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Name), q) ||
		strings.Contains(strings.ToLower(i.Symbol), q) ||
		strings.Contains(strings.ToLower(i.Team), q)
}

// Clone returns a deep copy safe to hand outside the catalog lock.
func (i Instrument) Clone() Instrument {
	c := i
	c.History = append([]PricePoint(nil), i.History...)
	c.News = append([]NewsItem(nil), i.News...)
	return c
}
