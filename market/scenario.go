package market

import (
	"fmt"
	"strings"
)

// ScenarioName identifies one of the fixed market scenarios.
type ScenarioName string

const (
	Midweek    ScenarioName = "midweek"
	Raceday    ScenarioName = "raceday"
	Postseason ScenarioName = "postseason"
)

// Headline is scenario specific news seeded into every instrument.
type Headline struct {
	Title string
	URL   string
}

// Scenario controls how a catalog is generated: the swing used to seed price
// history and the multiplier applied to every driver's share inventory.
type Scenario struct {
	Name             ScenarioName `json:"name" msgpack:"name"`
	Volatility       float64      `json:"volatility" msgpack:"volatility"`
	VolumeMultiplier float64      `json:"volume_multiplier" msgpack:"volume_multiplier"`
	Headlines        []Headline   `json:"-" msgpack:"-"`
}

var scenarios = map[ScenarioName]Scenario{
	Midweek: {
		Name:             Midweek,
		Volatility:       0.03,
		VolumeMultiplier: 1,
		Headlines: []Headline{
			{"Breaking: Hamilton in Talks with Ferrari for Next Season", "https://www.espn.com/f1/breaking/hamilton-ferrari"},
			{"Red Bull Unveils Major Upgrade Package for Next Race", "https://www.espn.com/f1/redbull-upgrades"},
		},
	},
	Raceday: {
		Name:             Raceday,
		Volatility:       0.05,
		VolumeMultiplier: 2,
		Headlines: []Headline{
			{"Verstappen Takes Pole Position in Qualifying", "https://www.espn.com/f1/qualifying-results"},
			{"Ferrari Strategy Blunder Costs Leclerc Podium", "https://www.espn.com/f1/ferrari-strategy-error"},
		},
	},
	Postseason: {
		Name:             Postseason,
		Volatility:       0.02,
		VolumeMultiplier: 0.5,
		Headlines: []Headline{
			{"Season Review: Records Broken and Milestones Achieved", "https://www.espn.com/f1/season-review"},
			{"Teams Announce Driver Lineups for Next Season", "https://www.espn.com/f1/driver-lineup"},
		},
	},
}

// ScenarioNames lists the scenarios in presentation order.
func ScenarioNames() []ScenarioName {
	return []ScenarioName{Midweek, Raceday, Postseason}
}

// LookupScenario resolves a scenario by name, case-insensitively.
func LookupScenario(name string) (Scenario, error) {
	s, ok := scenarios[ScenarioName(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario %q (supported: midweek, raceday, postseason)", name)
	}
	return s, nil
}
