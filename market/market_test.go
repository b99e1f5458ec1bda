package market

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)

type fixedStep float64

func (f fixedStep) Next(p float64) float64 { return p + float64(f) }

func mustScenario(t *testing.T, name ScenarioName) Scenario {
	t.Helper()
	s, err := LookupScenario(string(name))
	require.NoError(t, err)
	return s
}

func generate(t *testing.T, name ScenarioName) *Catalog {
	t.Helper()
	return Generate(mustScenario(t, name), rand.New(rand.NewSource(1)), t0)
}

func TestLookupScenario(t *testing.T) {
	s, err := LookupScenario(" RaceDay ")
	require.NoError(t, err)
	assert.Equal(t, Raceday, s.Name)
	assert.Equal(t, 2.0, s.VolumeMultiplier)

	_, err = LookupScenario("qualifying")
	assert.Error(t, err)

	assert.Len(t, ScenarioNames(), 3)
}

func TestGenerateMidweek(t *testing.T) {
	c := generate(t, Midweek)
	require.Equal(t, 6, c.Len())

	ver, ok := c.Instrument("1")
	require.True(t, ok)
	assert.Equal(t, "VER", ver.Symbol)
	assert.Equal(t, "Red Bull Racing", ver.Team)
	assert.Equal(t, 350.25, ver.Price)
	assert.Equal(t, 349.75, ver.PreviousPrice)
	assert.Equal(t, int64(1000), ver.AvailableShares)
	assert.Len(t, ver.History, MaxHistory)

	for _, p := range ver.History {
		assert.InDelta(t, 350, p.Price, 350*0.03+0.01)
	}
	assert.True(t, ver.History[len(ver.History)-1].Time.Equal(t0))
}

func TestScenarioSwitchScalesInventory(t *testing.T) {
	mid := generate(t, Midweek)
	race := generate(t, Raceday)
	post := generate(t, Postseason)

	for _, in := range mid.List() {
		r, ok := race.Instrument(in.ID)
		require.True(t, ok)
		assert.Equal(t, in.AvailableShares*2, r.AvailableShares, in.Symbol)

		p, ok := post.Instrument(in.ID)
		require.True(t, ok)
		assert.Equal(t, in.AvailableShares/2, p.AvailableShares, in.Symbol)
	}
}

func TestScenarioHeadlinesSeeded(t *testing.T) {
	c := generate(t, Raceday)
	ver, _ := c.Instrument("1")

	var titles []string
	for _, n := range ver.News {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Verstappen Takes Pole Position in Qualifying")
	assert.Contains(t, titles, "Ferrari Strategy Blunder Costs Leclerc Podium")
}

func TestApplyPriceBoundsHistory(t *testing.T) {
	in := Instrument{ID: "x", Price: 100}
	for k := 0; k < MaxHistory+5; k++ {
		in.ApplyPrice(in.Price+1, t0.Add(time.Duration(k)*time.Minute))
	}

	assert.Len(t, in.History, MaxHistory)
	assert.Equal(t, 135.0, in.Price)
	assert.Equal(t, 134.0, in.PreviousPrice)
	assert.Equal(t, 134.0, in.History[MaxHistory-1].Price)
	assert.Equal(t, 105.0, in.History[0].Price)
}

func TestApplyPriceReturnsTick(t *testing.T) {
	in := Instrument{ID: "x", Price: 100}
	tick := in.ApplyPrice(101.5, t0)
	assert.Equal(t, "x", tick.Instrument)
	assert.Equal(t, 100.0, tick.Previous)
	assert.Equal(t, 101.5, tick.Price)
	assert.InDelta(t, 1.5, in.Change(), 1e-9)
	assert.InDelta(t, 1.5, in.ChangePercent(), 1e-9)
}

func TestAdvance(t *testing.T) {
	c := generate(t, Midweek)
	before := c.Prices()

	ticks := c.Advance(fixedStep(1), t0.Add(time.Minute))
	require.Len(t, ticks, 6)

	for _, in := range c.List() {
		assert.InDelta(t, before[in.ID]+1, in.Price, 1e-9)
		assert.Equal(t, before[in.ID], in.PreviousPrice)
		assert.Len(t, in.History, MaxHistory)
		assert.Equal(t, before[in.ID], in.History[MaxHistory-1].Price)
	}
}

func TestReserveRelease(t *testing.T) {
	c := generate(t, Midweek)

	require.NoError(t, c.Reserve("1", 400))
	_, avail, err := c.Quote("1")
	require.NoError(t, err)
	assert.Equal(t, int64(600), avail)

	err = c.Reserve("1", 601)
	assert.ErrorIs(t, err, ErrInsufficientShares)

	require.NoError(t, c.Release("1", 400))
	_, avail, _ = c.Quote("1")
	assert.Equal(t, int64(1000), avail)

	assert.ErrorIs(t, c.Reserve("99", 1), ErrUnknownInstrument)
	assert.ErrorIs(t, c.Release("99", 1), ErrUnknownInstrument)
	_, _, err = c.Quote("99")
	assert.ErrorIs(t, err, ErrUnknownInstrument)
}

func TestReserveNeverOversells(t *testing.T) {
	c := generate(t, Midweek)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := int64(0)
	for k := 0; k < 64; k++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Reserve("4", 7) == nil {
				mu.Lock()
				granted += 7
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	_, avail, _ := c.Quote("4")
	assert.GreaterOrEqual(t, avail, int64(0))
	assert.Equal(t, int64(300), granted+avail)
}

func TestSearch(t *testing.T) {
	c := generate(t, Midweek)

	assert.Len(t, c.Search("mercedes"), 2)
	assert.Len(t, c.Search("nor"), 1)
	assert.Len(t, c.Search("Max"), 1)
	assert.Len(t, c.Search(""), 6)
	assert.Empty(t, c.Search("williams"))
}

func TestInstrumentIsACopy(t *testing.T) {
	c := generate(t, Midweek)
	in, _ := c.Instrument("1")
	in.Price = 1
	in.History[0].Price = 1

	again, _ := c.Instrument("1")
	assert.Equal(t, 350.25, again.Price)
	assert.NotEqual(t, 1.0, again.History[0].Price)
}

func TestNewsFeed(t *testing.T) {
	c := generate(t, Midweek)

	all := c.News(0)
	require.NotEmpty(t, all)
	for k := 1; k < len(all); k++ {
		assert.False(t, all[k].Time.After(all[k-1].Time))
	}

	assert.Len(t, c.News(3), 3)
}

func TestSignificantMoves(t *testing.T) {
	day0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	in := Instrument{
		History: []PricePoint{
			{Time: day0, Price: 100},
			{Time: day0.Add(day), Price: 101},
			{Time: day0.Add(2 * day), Price: 98},
			{Time: day0.Add(3 * day), Price: 98.5},
		},
		News: []NewsItem{
			{Title: "Crash in practice", Time: day0.Add(2*day + 3*time.Hour)},
			{Title: "", Time: day0.Add(2 * day)},
		},
	}

	moves := in.SignificantMoves(SignificantMoveThreshold)
	require.Len(t, moves, 1)
	assert.Equal(t, 98.0, moves[0].Price)
	assert.InDelta(t, -2.970297, moves[0].ChangePercent, 1e-5)
	require.Len(t, moves[0].News, 1)
	assert.Equal(t, "Crash in practice", moves[0].News[0].Title)
}
