// Package pricing generates the synthetic prices the simulation trades on.
package pricing

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxChange is the maximum swing as a fraction of the current price.
const DefaultMaxChange = 0.05

// Round2 rounds x to cents.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// NextPrice moves p by (draw-0.5) * maxChange * p and rounds to cents.
// draw is a uniform sample in [0,1), so the move never exceeds half of
// maxChange in either direction.
//
// No floor is applied: a non-positive p, or a long run of down moves on a
// tiny price, can produce a price <= 0.
func NextPrice(p, draw, maxChange float64) float64 {
	change := (draw - 0.5) * maxChange * p
	return Round2(p + change)
}

// Source is the randomness the simulation draws from.
type Source interface {
	Float64() float64
}

// Walker is a seeded random walk over prices. It is safe for concurrent use.
type Walker struct {
	mu        sync.Mutex
	rng       *rand.Rand
	maxChange float64
	log       zerolog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithMaxChange overrides DefaultMaxChange.
func WithMaxChange(f float64) Option {
	return func(w *Walker) {
		if f > 0 {
			w.maxChange = f
		}
	}
}

// WithLogger attaches a logger used to flag non-positive prices.
func WithLogger(l zerolog.Logger) Option {
	return func(w *Walker) {
		w.log = l.With().Str("component", "pricing").Logger()
	}
}

// NewWalker returns a walker seeded with seed; seed 0 picks a time based seed.
func NewWalker(seed int64, opts ...Option) *Walker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	w := &Walker{
		rng:       rand.New(rand.NewSource(seed)),
		maxChange: DefaultMaxChange,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// MaxChange reports the configured swing fraction.
func (w *Walker) MaxChange() float64 { return w.maxChange }

// Float64 draws a uniform sample in [0,1).
func (w *Walker) Float64() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rng.Float64()
}

// Next returns the next price after p.
func (w *Walker) Next(p float64) float64 {
	next := NextPrice(p, w.Float64(), w.maxChange)
	if next <= 0 {
		w.log.Warn().
			Float64("from", p).
			Float64("to", next).
			Msg("random walk produced a non-positive price")
	}
	return next
}
