package market

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rustyeddy/pitlane/pricing"
)

var (
	ErrUnknownInstrument  = errors.New("unknown instrument")
	ErrInsufficientShares = errors.New("insufficient shares available")
)

// Stepper produces the next price of a random walk.
type Stepper interface {
	Next(p float64) float64
}

// Catalog is the ordered set of instruments of one scenario. Inventory
// changes go through Reserve and Release, which check and update available
// shares under a single lock so inventory never goes negative.
type Catalog struct {
	mu          sync.RWMutex
	scenario    Scenario
	instruments []*Instrument
	index       map[string]*Instrument
}

// NewCatalog wraps instruments, keeping their order.
func NewCatalog(s Scenario, instruments []Instrument) *Catalog {
	c := &Catalog{
		scenario: s,
		index:    make(map[string]*Instrument, len(instruments)),
	}
	for _, inst := range instruments {
		in := inst.Clone()
		c.instruments = append(c.instruments, &in)
		c.index[in.ID] = &in
	}
	return c
}

func (c *Catalog) Scenario() Scenario {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scenario
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instruments)
}

// Instrument returns a copy of the instrument with the given id.
func (c *Catalog) Instrument(id string) (Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in, ok := c.index[id]
	if !ok {
		return Instrument{}, false
	}
	return in.Clone(), true
}

// List returns copies of every instrument in catalog order.
func (c *Catalog) List() []Instrument {
	return c.Search("")
}

// Search returns the instruments whose name, symbol or team contain q.
func (c *Catalog) Search(q string) []Instrument {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Instrument, 0, len(c.instruments))
	for _, in := range c.instruments {
		if in.Matches(q) {
			out = append(out, in.Clone())
		}
	}
	return out
}

// Quote returns the current price and available shares of id.
func (c *Catalog) Quote(id string) (float64, int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	in, ok := c.index[id]
	if !ok {
		return 0, 0, fmt.Errorf("quote %q: %w", id, ErrUnknownInstrument)
	}
	return in.Price, in.AvailableShares, nil
}

// Prices maps every instrument id to its current price.
func (c *Catalog) Prices() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]float64, len(c.instruments))
	for _, in := range c.instruments {
		out[in.ID] = in.Price
	}
	return out
}

// Reserve takes qty shares out of the available inventory of id.
func (c *Catalog) Reserve(id string, qty int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	in, ok := c.index[id]
	if !ok {
		return fmt.Errorf("reserve %q: %w", id, ErrUnknownInstrument)
	}
	if qty > in.AvailableShares {
		return fmt.Errorf("reserve %d of %s (%d available): %w", qty, in.Symbol, in.AvailableShares, ErrInsufficientShares)
	}
	in.AvailableShares -= qty
	return nil
}

// Release returns qty shares to the available inventory of id.
func (c *Catalog) Release(id string, qty int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	in, ok := c.index[id]
	if !ok {
		return fmt.Errorf("release %q: %w", id, ErrUnknownInstrument)
	}
	in.AvailableShares += qty
	return nil
}

// Advance moves every instrument one step along the walk.
func (c *Catalog) Advance(w Stepper, at time.Time) []pricing.Tick {
	c.mu.Lock()
	defer c.mu.Unlock()
	ticks := make([]pricing.Tick, 0, len(c.instruments))
	for _, in := range c.instruments {
		ticks = append(ticks, in.ApplyPrice(w.Next(in.Price), at))
	}
	return ticks
}

// FeedItem is a headline tagged with the instrument it belongs to.
type FeedItem struct {
	Symbol string `json:"symbol" msgpack:"symbol"`
	NewsItem
}

// News returns up to limit headlines across the catalog, newest first.
// limit <= 0 returns everything.
func (c *Catalog) News(limit int) []FeedItem {
	c.mu.RLock()
	var out []FeedItem
	for _, in := range c.instruments {
		for _, n := range in.News {
			if n.Title == "" {
				continue
			}
			out = append(out, FeedItem{Symbol: in.Symbol, NewsItem: n})
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
