package catalogs

import (
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/infra"
)

func DefaultTaxPolicies() []tax.Policy {
	return []tax.Policy{
		{ID: "residential_tax", Name: "Residential Property Tax", Rate: 5, Category: tax.Residential, HappinessImpact: -2, RevenueMultiplier: 1.0, Enabled: true},
		{ID: "commercial_tax", Name: "Business Tax", Rate: 8, Category: tax.Commercial, HappinessImpact: -1, RevenueMultiplier: 1.2, Enabled: true},
		{ID: "industrial_tax", Name: "Industrial Tax", Rate: 10, Category: tax.Industrial, HappinessImpact: -1, RevenueMultiplier: 1.5, Enabled: true},
		{ID: "luxury_tax", Name: "Luxury Tax", Rate: 15, Category: tax.Luxury, HappinessImpact: 1, RevenueMultiplier: 2.0, Enabled: false},
	}
}

func DefaultServices() []services.Budget {
	defs := []services.Budget{
		{ID: "police", Name: "Police Department", Category: "safety", BaseCost: 50, Coverage: 80,
			Effects: map[services.Effect]float64{services.Satisfaction: 10, services.LandValue: 5}},
		{ID: "fire", Name: "Fire Department", Category: "safety", BaseCost: 40, Coverage: 75,
			Effects: map[services.Effect]float64{services.Satisfaction: 8}},
		{ID: "healthcare", Name: "Healthcare", Category: "health", BaseCost: 60, Coverage: 70,
			Effects: map[services.Effect]float64{services.Satisfaction: 12}},
		{ID: "education", Name: "Education", Category: "education", BaseCost: 55, Coverage: 70,
			Effects: map[services.Effect]float64{services.Satisfaction: 8, services.Income: 10}},
		{ID: "sanitation", Name: "Waste Management", Category: "environment", BaseCost: 30, Coverage: 85,
			Effects: map[services.Effect]float64{services.Pollution: -10, services.Satisfaction: 5}},
		{ID: "transportation", Name: "Public Transport", Category: "transport", BaseCost: 45, Coverage: 60,
			Effects: map[services.Effect]float64{services.Pollution: -5, services.Income: 5, services.LandValue: 6}},
		{ID: "parks", Name: "Parks & Recreation", Category: "recreation", BaseCost: 25, Coverage: 65,
			Effects: map[services.Effect]float64{services.Satisfaction: 6, services.LandValue: 8, services.Pollution: -3}},
		{ID: "utilities", Name: "Power & Water", Category: "utilities", BaseCost: 35, Coverage: 90,
			Effects: map[services.Effect]float64{services.EnergyEfficiency: 10, services.WaterEfficiency: 10}},
	}
	for i := range defs {
		defs[i] = services.WithBudget(defs[i], 100)
	}
	return defs
}

func DefaultUpgrades() []infra.Upgrade {
	return []infra.Upgrade{
		{ID: "smart_grid", Name: "Smart Power Grid", Category: "energy", Cost: 1000, MaintenanceCost: 20, UnlockLevel: 3, BuildTime: 24,
			Effects: map[string]float64{"energy_efficiency": 15}},
		{ID: "solar_farm", Name: "Solar Farm", Category: "energy", Cost: 1500, MaintenanceCost: 10, Prerequisite: "smart_grid", UnlockLevel: 5, BuildTime: 48,
			Effects: map[string]float64{"energy_efficiency": 10, "pollution": -8}},
		{ID: "water_treatment", Name: "Water Treatment Plant", Category: "water", Cost: 900, MaintenanceCost: 15, UnlockLevel: 2, BuildTime: 24,
			Effects: map[string]float64{"water_efficiency": 15}},
		{ID: "water_recycling", Name: "Greywater Recycling", Category: "water", Cost: 1300, MaintenanceCost: 12, Prerequisite: "water_treatment", UnlockLevel: 4, BuildTime: 36,
			Effects: map[string]float64{"water_efficiency": 10, "pollution": -3}},
		{ID: "fiber_network", Name: "Fiber Network", Category: "technology", Cost: 800, MaintenanceCost: 15, UnlockLevel: 2, BuildTime: 12,
			Effects: map[string]float64{"income": 8, "land_value": 5}},
		{ID: "smart_traffic", Name: "Smart Traffic Lights", Category: "transport", Cost: 1200, MaintenanceCost: 18, Prerequisite: "fiber_network", UnlockLevel: 4, BuildTime: 24,
			Effects: map[string]float64{"pollution": -5, "satisfaction": 4}},
		{ID: "green_roofs", Name: "Green Roof Program", Category: "environment", Cost: 700, MaintenanceCost: 5, UnlockLevel: 3, BuildTime: 18,
			Effects: map[string]float64{"pollution": -4, "satisfaction": 3}},
	}
}
