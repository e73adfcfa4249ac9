package city

import (
	"fmt"

	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/snapshot"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/infra"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/weather"
)

func (c *City) ExportSnapshot() snapshot.SnapshotV1 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			CityID:  c.cfg.ID,
			Day:     c.day,
			Hour:    c.clk.Hour,
		},
		Day:             c.day,
		GameTime:        c.clk.Hour,
		GameMinutes:     c.clk.Minute,
		TimeOfDay:       c.clk.TimeOfDay(),
		Paused:          c.clk.Paused,
		Weather:         c.weather,
		WeatherForecast: append([]weather.State(nil), c.forecast...),
		TaxPolicies:     c.taxes.Policies(),
		ServiceBudgets:  c.services.Services(),
		OwnedUpgrades:   c.owned.IDs(),
		Buildings:       append([]model.Building(nil), c.buildings...),
		Coins:           c.coins,
		Level:           c.level,
		EnergyRate:      c.energyRate,
		DaysUntilBill:   c.daysUntilBill,
	}
}

// ImportSnapshot replaces the city state. Policies and services missing from
// the snapshot are seeded from the catalogs; ones the catalog no longer knows are
// kept as saved. Owned ids the upgrade catalog does not know are rejected.
func (c *City) ImportSnapshot(s snapshot.SnapshotV1) error {
	for _, id := range s.OwnedUpgrades {
		if _, ok := c.upgrades.Get(id); !ok {
			return fmt.Errorf("import snapshot: %w: %s", infra.ErrUnknownUpgrade, id)
		}
	}

	taxes := mergePolicies(c.cfg.Catalogs.Taxes.Policies, s.TaxPolicies)
	svc := mergeServices(c.cfg.Catalogs.Services.Budgets, s.ServiceBudgets)

	clk := clock.State{Hour: s.GameTime, Minute: s.GameMinutes, Paused: s.Paused}.Normalize()
	day := s.Day
	if day < 1 {
		day = 1
	}
	level := s.Level
	if level < 1 {
		level = 1
	}
	energyRate := s.EnergyRate
	if energyRate <= 0 {
		energyRate = c.cfg.Tuning.EnergyRate
	}
	daysUntilBill := s.DaysUntilBill
	if daysUntilBill <= 0 {
		daysUntilBill = c.cfg.Tuning.BillEveryDays
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.clk = clk
	c.day = day
	c.weather = s.Weather
	if !c.weather.Valid() {
		c.weather = c.proc.UpdateWeather(clk.Hour)
	}
	c.forecast = append([]weather.State(nil), s.WeatherForecast...)
	if len(c.forecast) != weather.ForecastSlots {
		c.forecast = c.proc.GenerateForecast(clk.Hour, nil)
	}
	c.taxes = tax.NewLedger(taxes)
	c.services = services.NewLedger(svc)
	c.owned = infra.NewOwned(s.OwnedUpgrades...)
	c.buildings = append([]model.Building(nil), s.Buildings...)
	c.coins = s.Coins
	c.level = level
	c.energyRate = energyRate
	c.daysUntilBill = daysUntilBill
	return nil
}

func mergePolicies(catalog, saved []tax.Policy) []tax.Policy {
	byID := make(map[string]tax.Policy, len(saved))
	for _, p := range saved {
		byID[p.ID] = p
	}
	out := make([]tax.Policy, 0, len(catalog)+len(saved))
	seen := map[string]bool{}
	for _, p := range catalog {
		if sp, ok := byID[p.ID]; ok {
			p.Rate = sp.Rate
			p.Enabled = sp.Enabled
		}
		out = append(out, p)
		seen[p.ID] = true
	}
	for _, p := range saved {
		if !seen[p.ID] {
			out = append(out, p)
			seen[p.ID] = true
		}
	}
	return out
}

func mergeServices(catalog, saved []services.Budget) []services.Budget {
	byID := make(map[string]services.Budget, len(saved))
	for _, s := range saved {
		byID[s.ID] = s
	}
	out := make([]services.Budget, 0, len(catalog)+len(saved))
	seen := map[string]bool{}
	for _, s := range catalog {
		if ss, ok := byID[s.ID]; ok {
			s.CurrentBudget = ss.CurrentBudget
		}
		out = append(out, s)
		seen[s.ID] = true
	}
	for _, s := range saved {
		if !seen[s.ID] {
			out = append(out, s)
			seen[s.ID] = true
		}
	}
	return out
}
