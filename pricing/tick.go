package pricing

import "time"

// Tick is one observed price move of an instrument.
type Tick struct {
	Instrument string    `json:"instrument" msgpack:"instrument"`
	Time       time.Time `json:"time" msgpack:"time"`
	Previous   float64   `json:"previous" msgpack:"previous"`
	Price      float64   `json:"price" msgpack:"price"`
}

// Change is the absolute move since the previous price.
func (t Tick) Change() float64 {
	return Round2(t.Price - t.Previous)
}

// ChangePercent is the move relative to the previous price, 0 when there is
// no previous price.
func (t Tick) ChangePercent() float64 {
	if t.Previous == 0 {
		return 0
	}
	return (t.Price - t.Previous) / t.Previous * 100
}
