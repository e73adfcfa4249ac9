package weather

import (
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
)

type State string

const (
	Sunny  State = "sunny"
	Cloudy State = "cloudy"
	Rainy  State = "rainy"
	Stormy State = "stormy"
	Snowy  State = "snowy"
)

// Order is the walk order of every table row.
var Order = [...]State{Sunny, Cloudy, Rainy, Stormy, Snowy}

// Row holds one probability per state, indexed like Order.
type Row [len(Order)]float64

// Table is the single distribution shared by live weather and forecasting.
var Table = map[clock.TimeOfDay]Row{
	clock.Morning: {0.60, 0.25, 0.12, 0.03, 0},
	clock.Day:     {0.70, 0.20, 0.08, 0.02, 0},
	clock.Evening: {0.50, 0.30, 0.15, 0.05, 0},
	clock.Night:   {0.10, 0.60, 0.20, 0.05, 0.05},
}

func (s State) Valid() bool {
	for _, o := range Order {
		if s == o {
			return true
		}
	}
	return false
}

// Sample maps r in [0,1) onto the row for tod by walking the cumulative sum.
func Sample(tod clock.TimeOfDay, r float64) State {
	row, ok := Table[tod]
	if !ok {
		row = Table[clock.Night]
	}
	sum := 0.0
	last := Order[0]
	for i, p := range row {
		if p <= 0 {
			continue
		}
		sum += p
		last = Order[i]
		if sum > r {
			return Order[i]
		}
	}
	// Only reachable when rounding leaves the final sum at or below r.
	return last
}
