// Package league runs the scripted competitors: each member evaluates every
// instrument with its strategy, trades against the shared inventory through
// its own ledger account, and is ranked by portfolio value.
package league

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rustyeddy/pitlane/ledger"
	"github.com/rustyeddy/pitlane/strategies"
)

// Algorithm is the label shown for a member's strategy.
type Algorithm string

const (
	Conservative Algorithm = "Conservative"
	Aggressive   Algorithm = "Aggressive"
)

// ParseAlgorithm accepts an algorithm label or a strategy kind.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "conservative", "value":
		return Conservative, nil
	case "aggressive", "momentum":
		return Aggressive, nil
	default:
		return "", fmt.Errorf("unknown algorithm %q (supported: Conservative, Aggressive)", s)
	}
}

// MemberSpec describes a member to add.
type MemberSpec struct {
	ID        string `json:"id,omitempty" yaml:"id,omitempty"`
	Username  string `json:"username" yaml:"username"`
	Algorithm string `json:"algorithm" yaml:"algorithm"`
}

// DefaultMembers are the two bots every league starts with.
func DefaultMembers() []MemberSpec {
	return []MemberSpec{
		{ID: "1", Username: "ValueBot", Algorithm: string(Conservative)},
		{ID: "2", Username: "MomentumBot", Algorithm: string(Aggressive)},
	}
}

// Member is a scripted competitor.
type Member struct {
	ID             string
	Username       string
	Algorithm      Algorithm
	Strategy       strategies.Strategy
	Account        *ledger.Account
	PortfolioValue float64
}

func newMember(spec MemberSpec, initialCapital float64) (*Member, error) {
	if strings.TrimSpace(spec.Username) == "" {
		return nil, fmt.Errorf("member username is required")
	}
	algo, err := ParseAlgorithm(spec.Algorithm)
	if err != nil {
		return nil, err
	}
	strat, err := strategies.ByName(string(algo))
	if err != nil {
		return nil, err
	}

	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &Member{
		ID:             id,
		Username:       spec.Username,
		Algorithm:      algo,
		Strategy:       strat,
		Account:        ledger.NewUnfunded(id),
		PortfolioValue: initialCapital,
	}, nil
}
