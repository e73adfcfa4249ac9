package budget

import (
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/infra"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
)

// CityBudgetSystem is derived on every read and never stored.
type CityBudgetSystem struct {
	TotalBudget          float64 `json:"totalBudget"`
	AllocatedBudget      float64 `json:"allocatedBudget"`
	UnallocatedBudget    float64 `json:"unallocatedBudget"`
	TaxRevenue           float64 `json:"taxRevenue"`
	BuildingIncome       float64 `json:"buildingIncome"`
	TotalExpenses        float64 `json:"totalExpenses"`
	BudgetSurplus        float64 `json:"budgetSurplus"`
	CitizenSatisfaction  float64 `json:"citizenSatisfaction"`
	InfrastructureHealth float64 `json:"infrastructureHealth"`
}

type Input struct {
	Buildings []model.Building
	Taxes     []tax.Policy
	Services  []services.Budget
	Upgrades  *infra.Catalog
	Owned     infra.Owned
}

const (
	healthBase       = 60
	healthPerUpgrade = 8
)

func Compute(in Input) CityBudgetSystem {
	var out CityBudgetSystem
	out.BuildingIncome = model.TotalIncome(in.Buildings)
	out.TaxRevenue = tax.ComputeRevenue(in.Buildings, in.Taxes)
	out.TotalBudget = out.BuildingIncome + out.TaxRevenue

	serviceCosts := services.TotalDailyCost(in.Services)
	infraCosts := 0.0
	if in.Upgrades != nil {
		infraCosts = in.Upgrades.MaintenanceTotal(in.Owned)
	}
	out.AllocatedBudget = serviceCosts
	out.UnallocatedBudget = out.TotalBudget - serviceCosts
	out.TotalExpenses = serviceCosts + infraCosts
	out.BudgetSurplus = out.TotalBudget - out.TotalExpenses

	out.CitizenSatisfaction = services.AverageEfficiency(in.Services)
	out.InfrastructureHealth = InfrastructureHealth(len(in.Owned))
	return out
}

func InfrastructureHealth(owned int) float64 {
	h := float64(healthBase + healthPerUpgrade*owned)
	if h > 100 {
		return 100
	}
	return h
}

type Health string

const (
	Excellent Health = "excellent"
	Good      Health = "good"
	Fair      Health = "fair"
	Poor      Health = "poor"
	Critical  Health = "critical"
)

// Classify tiers a daily balance.
func Classify(dailyBalance float64) Health {
	switch {
	case dailyBalance >= 100:
		return Excellent
	case dailyBalance >= 50:
		return Good
	case dailyBalance >= 0:
		return Fair
	case dailyBalance >= -50:
		return Poor
	default:
		return Critical
	}
}

func EmergencyFund(balance float64) float64 {
	if f := balance * 5; f > 0 {
		return f
	}
	return 0
}
