package tax

import (
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
)

type Category string

const (
	Residential Category = "residential"
	Commercial  Category = "commercial"
	Industrial  Category = "industrial"
	Luxury      Category = "luxury"
)

func (c Category) Valid() bool {
	switch c {
	case Residential, Commercial, Industrial, Luxury:
		return true
	default:
		return false
	}
}

const (
	MinRate = 0
	MaxRate = 30
)

type Policy struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Rate              float64  `json:"rate"`
	Category          Category `json:"category"`
	HappinessImpact   float64  `json:"happinessImpact"`
	RevenueMultiplier float64  `json:"revenueMultiplier"`
	Enabled           bool     `json:"enabled"`
	Description       string   `json:"description,omitempty"`
}

func ClampRate(rate float64) float64 {
	if rate != rate || rate < MinRate { // NaN folds to the floor
		return MinRate
	}
	if rate > MaxRate {
		return MaxRate
	}
	return rate
}

// Ledger holds the city's tax policies in catalog order. Policies are never
// added or removed after construction.
type Ledger struct {
	policies []Policy
}

func NewLedger(policies []Policy) *Ledger {
	l := &Ledger{policies: make([]Policy, len(policies))}
	copy(l.policies, policies)
	for i := range l.policies {
		l.policies[i].Rate = ClampRate(l.policies[i].Rate)
	}
	return l
}

func (l *Ledger) index(id string) int {
	for i := range l.policies {
		if l.policies[i].ID == id {
			return i
		}
	}
	return -1
}

// UpdateRate clamps and stores a new rate. Unknown ids are ignored.
func (l *Ledger) UpdateRate(id string, rate float64) (float64, bool) {
	i := l.index(id)
	if i < 0 {
		return 0, false
	}
	l.policies[i].Rate = ClampRate(rate)
	return l.policies[i].Rate, true
}

// Toggle flips a policy on or off. Unknown ids are ignored.
func (l *Ledger) Toggle(id string) (bool, bool) {
	i := l.index(id)
	if i < 0 {
		return false, false
	}
	l.policies[i].Enabled = !l.policies[i].Enabled
	return l.policies[i].Enabled, true
}

func (l *Ledger) Get(id string) (Policy, bool) {
	i := l.index(id)
	if i < 0 {
		return Policy{}, false
	}
	return l.policies[i], true
}

// Policies returns a copy safe to hand to readers.
func (l *Ledger) Policies() []Policy {
	out := make([]Policy, len(l.policies))
	copy(out, l.policies)
	return out
}

// ComputeRevenue sums count(category) * rate * multiplier over enabled policies.
func ComputeRevenue(buildings []model.Building, policies []Policy) float64 {
	census := TakeCensus(buildings)
	total := 0.0
	for _, p := range policies {
		if !p.Enabled {
			continue
		}
		total += float64(census[p.Category]) * p.Rate * p.RevenueMultiplier
	}
	return total
}

// RevenueByPolicy breaks ComputeRevenue down per enabled policy id.
func RevenueByPolicy(buildings []model.Building, policies []Policy) map[string]float64 {
	census := TakeCensus(buildings)
	out := make(map[string]float64, len(policies))
	for _, p := range policies {
		if !p.Enabled {
			continue
		}
		out[p.ID] = float64(census[p.Category]) * p.Rate * p.RevenueMultiplier
	}
	return out
}

func TotalHappinessImpact(policies []Policy) float64 {
	total := 0.0
	for _, p := range policies {
		if p.Enabled {
			total += p.HappinessImpact
		}
	}
	return total
}
