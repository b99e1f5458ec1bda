// Package strategies holds the two league trading strategies: a value
// strategy over synthetic fundamentals and a momentum strategy over RSI and a
// moving-average crossover.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/pitlane/market"
	"github.com/rustyeddy/pitlane/risk"
)

// Kind is the closed set of strategies.
type Kind string

const (
	KindValue    Kind = "value"
	KindMomentum Kind = "momentum"
)

// Action is what a decision asks for.
type Action string

const (
	ActionHold Action = "hold"
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
)

// Decision is the result of one evaluation. Quantity is positive for buy
// and sell and zero for hold.
type Decision struct {
	Action   Action `json:"action" msgpack:"action"`
	Quantity int64  `json:"quantity,omitempty" msgpack:"quantity,omitempty"`
	Reason   string `json:"reason" msgpack:"reason"`
}

func hold(reason string) Decision {
	return Decision{Action: ActionHold, Reason: reason}
}

// Strategy maps an instrument, the capital available to the trader and its
// current holding onto a decision.
type Strategy interface {
	Name() string
	Kind() Kind
	Evaluate(inst market.Instrument, capital float64, holding int64) Decision
}

// New returns the strategy of kind k using policy p for sizing.
func New(k Kind, p risk.Policy) (Strategy, error) {
	switch k {
	case KindValue:
		return &Value{Policy: p}, nil
	case KindMomentum:
		return &Momentum{Policy: p}, nil
	default:
		return nil, fmt.Errorf("unknown strategy kind %q (supported: value, momentum)", k)
	}
}

// ByName resolves a strategy by kind or by league algorithm label:
// "Conservative" trades value and "Aggressive" trades momentum.
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "value", "conservative", "fundamentals":
		return New(KindValue, risk.DefaultPolicy())
	case "momentum", "aggressive":
		return New(KindMomentum, risk.DefaultPolicy())
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: value, momentum, conservative, aggressive)", name)
	}
}

// sizedBuy turns a buy signal into a decision, or a hold when the position
// cap leaves nothing to buy.
func sizedBuy(p risk.Policy, inst market.Instrument, capital float64, holding int64, reason string) Decision {
	r := p.Size(risk.Inputs{
		Capital:   capital,
		Price:     inst.Price,
		Holding:   holding,
		Available: inst.AvailableShares,
	})
	if r.Quantity <= 0 {
		return hold("buy signal but no room under the position cap")
	}
	return Decision{Action: ActionBuy, Quantity: r.Quantity, Reason: reason}
}

func sellAll(holding int64, reason string) Decision {
	return Decision{Action: ActionSell, Quantity: holding, Reason: reason}
}
