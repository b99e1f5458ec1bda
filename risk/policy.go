// Package risk sizes positions for the league's strategies.
package risk

// DefaultMaxPositionPct caps a single position at 10% of capital.
const DefaultMaxPositionPct = 0.1

// Policy holds the sizing limits shared by every strategy.
type Policy struct {
	MaxPositionPct float64 // 0.1
}

// DefaultPolicy returns the 10% position cap.
func DefaultPolicy() Policy {
	return Policy{MaxPositionPct: DefaultMaxPositionPct}
}

func (p Policy) pct() float64 {
	if p.MaxPositionPct <= 0 {
		return DefaultMaxPositionPct
	}
	return p.MaxPositionPct
}
