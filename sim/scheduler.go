package sim

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rustyeddy/pitlane/events"
)

// DefaultInterval is the time between ticks when none is configured.
const DefaultInterval = time.Minute

// AllowedIntervals is the fixed set of tick intervals.
var AllowedIntervals = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	time.Minute,
	5 * time.Minute,
}

// ValidInterval reports whether d is one of AllowedIntervals.
func ValidInterval(d time.Duration) bool {
	for _, a := range AllowedIntervals {
		if d == a {
			return true
		}
	}
	return false
}

// IntervalName formats d the way intervals are configured: 10s, 1m.
func IntervalName(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return d.String()
}

// IntervalNames lists AllowedIntervals for messages.
func IntervalNames() string {
	names := make([]string, len(AllowedIntervals))
	for i, d := range AllowedIntervals {
		names[i] = IntervalName(d)
	}
	return strings.Join(names, ", ")
}

// Ticker is what the scheduler drives.
type Ticker interface {
	Tick(ctx context.Context) (TickResult, error)
}

// ClockState describes the scheduler.
type ClockState struct {
	Running    bool      `json:"running" msgpack:"running"`
	Paused     bool      `json:"paused" msgpack:"paused"`
	Interval   string    `json:"interval" msgpack:"interval"`
	IntervalMS int64     `json:"interval_ms" msgpack:"interval_ms"`
	Next       time.Time `json:"next,omitempty" msgpack:"next,omitempty"`
	LastTick   time.Time `json:"last_tick,omitempty" msgpack:"last_tick,omitempty"`
	Ticks      int64     `json:"ticks" msgpack:"ticks"`
}

// Scheduler fires ticks on a cron "@every" entry. A tick still running when
// the next one is due makes the due one skip. Pausing removes the entry and
// leaves a running tick alone.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	entry    cron.EntryID
	interval time.Duration
	running  bool
	paused   bool
	ctx      context.Context

	lastTick time.Time
	ticks    int64

	target Ticker
	bus    *events.Bus
	log    zerolog.Logger
}

// NewScheduler returns a stopped scheduler. bus may be nil.
func NewScheduler(target Ticker, interval time.Duration, bus *events.Bus, log zerolog.Logger) (*Scheduler, error) {
	if interval == 0 {
		interval = DefaultInterval
	}
	if !ValidInterval(interval) {
		return nil, fmt.Errorf("interval %s must be one of %s", interval, IntervalNames())
	}

	l := log.With().Str("component", "scheduler").Logger()
	cl := cron.PrintfLogger(&l)
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		interval: interval,
		ctx:      context.Background(),
		target:   target,
		bus:      bus,
		log:      l,
	}, nil
}

// Start begins firing ticks unless paused. ctx is handed to every tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.ctx = ctx
	if !s.paused {
		if err := s.scheduleLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.running = true
	s.cron.Start()
	s.mu.Unlock()

	s.log.Info().Str("interval", IntervalName(s.interval)).Msg("scheduler started")
	s.changed()
	return nil
}

// Stop halts the clock and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.unscheduleLocked()
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
	s.changed()
}

// Pause stops scheduling ticks. Step still works while paused.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	ok := s.pauseLocked()
	s.mu.Unlock()

	if ok {
		s.log.Info().Msg("paused")
		s.changed()
	}
}

// Resume schedules ticks again.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	ok, err := s.resumeLocked()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if ok {
		s.log.Info().Msg("resumed")
		s.changed()
	}
	return nil
}

// Toggle flips between paused and running and returns the new paused state.
func (s *Scheduler) Toggle() (bool, error) {
	s.mu.Lock()
	var err error
	if s.paused {
		_, err = s.resumeLocked()
	} else {
		s.pauseLocked()
	}
	paused := s.paused
	s.mu.Unlock()

	if err != nil {
		return paused, err
	}
	s.log.Info().Bool("paused", paused).Msg("toggled")
	s.changed()
	return paused, nil
}

func (s *Scheduler) pauseLocked() bool {
	if s.paused {
		return false
	}
	s.paused = true
	s.unscheduleLocked()
	return true
}

func (s *Scheduler) resumeLocked() (bool, error) {
	if !s.paused {
		return false, nil
	}
	if s.running {
		if err := s.scheduleLocked(); err != nil {
			return false, err
		}
	}
	s.paused = false
	return true, nil
}

// Step runs one tick now, paused or not.
func (s *Scheduler) Step(ctx context.Context) (TickResult, error) {
	return s.fire(ctx)
}

// SetInterval changes the tick interval. d must be one of AllowedIntervals.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if !ValidInterval(d) {
		return fmt.Errorf("interval %s must be one of %s", d, IntervalNames())
	}

	s.mu.Lock()
	s.interval = d
	if s.running && !s.paused {
		s.unscheduleLocked()
		if err := s.scheduleLocked(); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	s.mu.Unlock()

	s.log.Info().Str("interval", IntervalName(d)).Msg("interval changed")
	s.changed()
	return nil
}

func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *Scheduler) State() ClockState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := ClockState{
		Running:    s.running,
		Paused:     s.paused,
		Interval:   IntervalName(s.interval),
		IntervalMS: s.interval.Milliseconds(),
		LastTick:   s.lastTick,
		Ticks:      s.ticks,
	}
	if s.entry != 0 {
		st.Next = s.cron.Entry(s.entry).Next
	}
	return st
}

func (s *Scheduler) scheduleLocked() error {
	id, err := s.cron.AddFunc("@every "+s.interval.String(), func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if _, err := s.fire(ctx); err != nil {
			s.log.Error().Err(err).Msg("tick failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}
	s.entry = id
	return nil
}

func (s *Scheduler) unscheduleLocked() {
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
}

func (s *Scheduler) fire(ctx context.Context) (TickResult, error) {
	res, err := s.target.Tick(ctx)
	if err != nil {
		return res, err
	}

	s.mu.Lock()
	s.ticks++
	s.lastTick = res.Time
	s.mu.Unlock()
	return res, nil
}

func (s *Scheduler) changed() {
	if s.bus != nil {
		s.bus.Publish(events.ClockChanged, s.State())
	}
}
