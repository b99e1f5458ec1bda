package risk

import "math"

// Inputs describe a prospective buy.
type Inputs struct {
	Capital   float64 // capital the position is sized against
	Price     float64 // current instrument price
	Holding   int64   // shares already held
	Available int64   // shares left in the shared inventory
}

// Result is the outcome of sizing.
type Result struct {
	MaxShares  int64 // cap on the total position
	Headroom   int64 // MaxShares - Holding
	CapitalCap int64 // shares affordable with MaxPositionPct of capital
	Quantity   int64 // shares to buy, 0 when nothing should be bought
	LimitedBy  string
}

// Limit names for Result.LimitedBy.
const (
	LimitHeadroom  = "headroom"
	LimitInventory = "inventory"
	LimitCapital   = "capital"
	LimitNone      = "none"
)

// MaxShares is the largest position allowed at price given capital.
func (p Policy) MaxShares(capital, price float64) int64 {
	if price <= 0 {
		return 0
	}
	return int64(math.Floor(capital * p.pct() / price))
}

// Size returns the quantity to buy: the smallest of the position headroom, the
// available inventory and the shares affordable with the capped capital.
// Quantity is never negative.
func (p Policy) Size(in Inputs) Result {
	r := Result{
		MaxShares:  p.MaxShares(in.Capital, in.Price),
		CapitalCap: p.MaxShares(in.Capital, in.Price),
	}
	r.Headroom = r.MaxShares - in.Holding

	r.Quantity, r.LimitedBy = r.Headroom, LimitHeadroom
	if in.Available < r.Quantity {
		r.Quantity, r.LimitedBy = in.Available, LimitInventory
	}
	if r.CapitalCap < r.Quantity {
		r.Quantity, r.LimitedBy = r.CapitalCap, LimitCapital
	}
	if r.Quantity <= 0 {
		r.Quantity, r.LimitedBy = 0, LimitNone
	}
	return r
}
