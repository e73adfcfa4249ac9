package budget

import (
	"math"
	"math/rand"
	"testing"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/infra"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
)

func TestCompute_Scenario(t *testing.T) {
	got := Compute(Input{
		Buildings: []model.Building{{ID: "house", Income: 100}, {ID: "cafe", Income: 50}},
		Taxes:     []tax.Policy{{ID: "commercial_tax", Category: tax.Commercial, Rate: 8, RevenueMultiplier: 1.2, Enabled: true}},
	})
	if got.BuildingIncome != 150 {
		t.Fatalf("building income %v", got.BuildingIncome)
	}
	if math.Abs(got.TaxRevenue-9.6) > 1e-9 || math.Abs(got.TotalBudget-159.6) > 1e-9 {
		t.Fatalf("unexpected revenue: %+v", got)
	}
	if got.InfrastructureHealth != 60 || got.CitizenSatisfaction != 0 {
		t.Fatalf("unexpected derived metrics: %+v", got)
	}
}

func TestCompute_Expenses(t *testing.T) {
	cat, err := infra.NewCatalog([]infra.Upgrade{
		{ID: "smart_grid", MaintenanceCost: 20},
		{ID: "fiber_network", MaintenanceCost: 15},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	svc := services.NewLedger([]services.Budget{
		{ID: "police", BaseCost: 50, CurrentBudget: 100},
		{ID: "fire", BaseCost: 40, CurrentBudget: 150},
	}).Services()
	got := Compute(Input{
		Buildings: []model.Building{{ID: "house", Income: 200}},
		Services:  svc,
		Upgrades:  cat,
		Owned:     infra.NewOwned("smart_grid"),
	})
	if got.AllocatedBudget != 110 || got.TotalExpenses != 130 {
		t.Fatalf("unexpected expenses: %+v", got)
	}
	if got.UnallocatedBudget != 90 || got.BudgetSurplus != 70 {
		t.Fatalf("unexpected balance: %+v", got)
	}
	if got.CitizenSatisfaction != 95 || got.InfrastructureHealth != 68 {
		t.Fatalf("unexpected metrics: %+v", got)
	}
}

func TestCompute_SurplusIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	cat, _ := infra.NewCatalog([]infra.Upgrade{{ID: "u1", MaintenanceCost: 12.3}, {ID: "u2", MaintenanceCost: 7.77}})
	for i := 0; i < 200; i++ {
		var bs []model.Building
		n := rng.Intn(20)
		for j := 0; j < n; j++ {
			bs = append(bs, model.Building{ID: []string{"house", "cafe", "factory", "park"}[rng.Intn(4)], Income: rng.Float64() * 300, Cost: rng.Float64() * 4000})
		}
		led := services.NewLedger([]services.Budget{{ID: "s", BaseCost: rng.Float64() * 100, CurrentBudget: 100}})
		led.UpdateBudget("s", 50+rng.Float64()*150)
		got := Compute(Input{
			Buildings: bs,
			Taxes:     []tax.Policy{{ID: "lux", Category: tax.Luxury, Rate: rng.Float64() * 30, RevenueMultiplier: 1.7, Enabled: true}},
			Services:  led.Services(),
			Upgrades:  cat,
			Owned:     infra.NewOwned("u1", "u2"),
		})
		if got.TotalBudget-got.TotalExpenses != got.BudgetSurplus {
			t.Fatalf("surplus drift: %+v", got)
		}
	}
}

func TestInfrastructureHealthCap(t *testing.T) {
	if InfrastructureHealth(5) != 100 || InfrastructureHealth(4) != 92 {
		t.Fatalf("unexpected health curve")
	}
}

func TestClassify(t *testing.T) {
	cases := map[float64]Health{
		150: Excellent, 100: Excellent, 99.9: Good, 50: Good, 0: Fair,
		-0.1: Poor, -50: Poor, -50.1: Critical,
	}
	for in, want := range cases {
		if got := Classify(in); got != want {
			t.Fatalf("Classify(%v)=%s want %s", in, got, want)
		}
	}
}

func TestEmergencyFund(t *testing.T) {
	if EmergencyFund(20) != 100 || EmergencyFund(-3) != 0 {
		t.Fatalf("unexpected emergency fund")
	}
}
