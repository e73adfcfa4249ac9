package services

import (
	"math"
)

type Effect string

const (
	Satisfaction     Effect = "satisfaction"
	Happiness        Effect = "happiness"
	Income           Effect = "income"
	Pollution        Effect = "pollution"
	LandValue        Effect = "land_value"
	EnergyEfficiency Effect = "energy_efficiency"
	WaterEfficiency  Effect = "water_efficiency"
)

const (
	MinBudget = 50
	MaxBudget = 200

	// Funding band with no happiness change.
	neutralLow  = 80
	neutralHigh = 120

	// Balance constants; keep exact.
	efficiencyBase  = 50.0
	efficiencySlope = 80.0
	qualityExponent = 0.7
)

type Budget struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	BaseCost float64 `json:"baseCost"`

	CurrentBudget float64            `json:"currentBudget"`
	Efficiency    float64            `json:"efficiency"`
	Coverage      float64            `json:"coverage"`
	Effects       map[Effect]float64 `json:"effects,omitempty"`

	MaintenanceMultiplier float64 `json:"maintenanceMultiplier"`
	QualityMultiplier     float64 `json:"qualityMultiplier"`

	Description string `json:"description,omitempty"`
}

func (b Budget) clone() Budget {
	if b.Effects != nil {
		eff := make(map[Effect]float64, len(b.Effects))
		for k, v := range b.Effects {
			eff[k] = v
		}
		b.Effects = eff
	}
	return b
}

func ClampBudget(pct float64) float64 {
	if pct != pct || pct < MinBudget {
		return MinBudget
	}
	if pct > MaxBudget {
		return MaxBudget
	}
	return pct
}

// Efficiency maps a funding percentage to 0..100, linear in the multiplier.
func Efficiency(pct float64) float64 {
	m := pct / 100
	e := efficiencyBase + (m-0.5)*efficiencySlope
	if e < 0 {
		return 0
	}
	if e > 100 {
		return 100
	}
	return e
}

// HappinessDelta penalises funding below 80% and rewards funding above 120%.
func HappinessDelta(pct float64) float64 {
	switch {
	case pct < neutralLow:
		return -2 * math.Floor((neutralLow-pct)/10)
	case pct > neutralHigh:
		return math.Floor((pct - neutralHigh) / 20)
	default:
		return 0
	}
}

// QualityFactor is the sub-linear multiplier applied to secondary effects.
func QualityFactor(pct float64) float64 {
	return math.Pow(pct/100, qualityExponent)
}

// WithBudget returns b re-derived for a new funding percentage. Every derived
// field is computed here so callers can swap the whole value in one assignment.
func WithBudget(b Budget, pct float64) Budget {
	pct = ClampBudget(pct)
	m := pct / 100
	out := b.clone()
	if out.Effects == nil {
		out.Effects = map[Effect]float64{}
	}
	out.CurrentBudget = pct
	out.Efficiency = Efficiency(pct)
	out.Effects[Happiness] = HappinessDelta(pct)
	out.MaintenanceMultiplier = m
	out.QualityMultiplier = m
	return out
}

func DailyCost(b Budget) float64 {
	return b.BaseCost * b.CurrentBudget / 100
}

func TotalDailyCost(services []Budget) float64 {
	total := 0.0
	for _, s := range services {
		total += DailyCost(s)
	}
	return total
}

// ComputeEffects scales each service's declared effects by its quality factor
// and sums them per effect.
func ComputeEffects(services []Budget) map[Effect]float64 {
	out := map[Effect]float64{}
	for _, s := range services {
		q := QualityFactor(s.CurrentBudget)
		for k, v := range s.Effects {
			out[k] += v * q
		}
	}
	return out
}

// AverageEfficiency is the 0..100 mean efficiency; zero services yields 0.
func AverageEfficiency(services []Budget) float64 {
	if len(services) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range services {
		sum += s.Efficiency
	}
	avg := sum / float64(len(services))
	if avg > 100 {
		return 100
	}
	return avg
}
