package model

// Building is the read-only view of a placed building owned by the host game.
type Building struct {
	ID     string  `json:"id"`
	Type   string  `json:"type,omitempty"`
	Income float64 `json:"income"`
	Cost   float64 `json:"cost"`

	// EnergyUsage feeds the periodic utility bill. Zero for buildings that draw nothing.
	EnergyUsage float64 `json:"energyUsage,omitempty"`
}

// LuxuryCostThreshold is the cost above which a building also counts as luxury.
const LuxuryCostThreshold = 2000

func TotalIncome(buildings []Building) float64 {
	sum := 0.0
	for _, b := range buildings {
		sum += b.Income
	}
	return sum
}

func TotalEnergyUsage(buildings []Building) float64 {
	sum := 0.0
	for _, b := range buildings {
		sum += b.EnergyUsage
	}
	return sum
}
