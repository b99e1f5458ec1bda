// Package events fans simulation changes out to stream subscribers.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Type names an event.
type Type string

const (
	PricesUpdated   Type = "prices.updated"
	TradeExecuted   Type = "trade.executed"
	LeagueUpdated   Type = "league.updated"
	ScenarioChanged Type = "scenario.changed"
	ClockChanged    Type = "clock.changed"

	// Snapshot carries the full state, sent first on a new stream.
	Snapshot Type = "snapshot"
)

// Event is one published change. Data is whatever the publisher attached and
// must be serializable.
type Event struct {
	Type      Type      `json:"type" msgpack:"type"`
	Timestamp time.Time `json:"timestamp" msgpack:"timestamp"`
	Data      any       `json:"data,omitempty" msgpack:"data,omitempty"`
}

// DefaultBuffer is the per-subscriber channel size.
const DefaultBuffer = 32

// Bus delivers events to subscribers without blocking the publisher. A
// subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	buffer int
	log    zerolog.Logger
}

func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[chan Event]struct{}),
		buffer: DefaultBuffer,
		log:    log.With().Str("component", "events").Logger(),
	}
}

// Subscribe returns a channel receiving every event published from now on.
func (b *Bus) Subscribe() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	b.subs[ch] = struct{}{}
	b.log.Debug().Int("subscribers", len(b.subs)).Msg("subscriber added")
	return ch
}

// Unsubscribe removes and closes ch. Unknown channels are ignored.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
	b.log.Debug().Int("subscribers", len(b.subs)).Msg("subscriber removed")
}

// Publish stamps and delivers an event.
func (b *Bus) Publish(t Type, data any) {
	ev := Event{Type: t, Timestamp: time.Now(), Data: data}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.log.Warn().Str("event", string(t)).Msg("subscriber channel full, event dropped")
		}
	}
}

func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
