package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/weather"
)

func sampleSnapshot() SnapshotV1 {
	return SnapshotV1{
		Header:          Header{Version: Version, CityID: "c1", Day: 3, Hour: 14},
		Day:             3,
		GameTime:        14,
		GameMinutes:     30,
		TimeOfDay:       clock.Day,
		Weather:         weather.Rainy,
		WeatherForecast: []weather.State{weather.Sunny, weather.Cloudy, weather.Rainy, weather.Stormy, weather.Snowy, weather.Sunny},
		TaxPolicies:     []tax.Policy{{ID: "commercial_tax", Category: tax.Commercial, Rate: 8, RevenueMultiplier: 1.2, Enabled: true}},
		ServiceBudgets: []services.Budget{services.WithBudget(services.Budget{
			ID: "police", BaseCost: 50, Effects: map[services.Effect]float64{services.Satisfaction: 10},
		}, 120)},
		OwnedUpgrades: []string{"smart_grid"},
		Buildings:     []model.Building{{ID: "cafe", Income: 50, Cost: 300, EnergyUsage: 4}},
		Coins:         1234.5,
		Level:         4,
		EnergyRate:    2,
		DaysUntilBill: 3,
	}
}

func TestWriteReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", FileName(3, 14))
	in := sampleSnapshot()
	if err := WriteSnapshot(path, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	out, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if out.Header != in.Header || out.GameMinutes != 30 || out.Weather != weather.Rainy || len(out.WeatherForecast) != 6 {
		t.Fatalf("unexpected snapshot: %+v", out)
	}
	if out.ServiceBudgets[0].Efficiency != in.ServiceBudgets[0].Efficiency || out.ServiceBudgets[0].Effects[services.Satisfaction] != 10 {
		t.Fatalf("service budgets lost: %+v", out.ServiceBudgets)
	}
	if out.Buildings[0] != in.Buildings[0] || out.Coins != in.Coins {
		t.Fatalf("buildings/coins lost: %+v", out)
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{FileName(2, 23), FileName(10, 1), FileName(10, 0), "junk.snap.zst", "x.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := Latest(dir); filepath.Base(got) != FileName(10, 1) {
		t.Fatalf("latest=%s", got)
	}
	if got := Latest(filepath.Join(dir, "missing")); got != "" {
		t.Fatalf("expected empty, got %s", got)
	}
}

func TestDecodeJSON_Defaults(t *testing.T) {
	snap, err := DecodeJSON([]byte(`{"buildings":[{"id":"house","income":10}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Day != DefaultDay || snap.GameTime != DefaultHour || snap.GameMinutes != 0 {
		t.Fatalf("clock defaults: %+v", snap)
	}
	if snap.TimeOfDay != clock.Morning || snap.Weather != "" || len(snap.WeatherForecast) != 0 {
		t.Fatalf("environment defaults: %+v", snap)
	}
	if snap.EnergyRate != 2 || snap.DaysUntilBill != 5 || snap.Level != 1 {
		t.Fatalf("economy defaults: %+v", snap)
	}
}

func TestDecodeJSON_ClampsAndDerives(t *testing.T) {
	raw := `{
	  "day": 4, "gameTime": 22, "gameMinutes": 75, "timeOfDay": "morning",
	  "taxPolicies": [{"id":"t","category":"industrial","rate":80,"revenueMultiplier":1,"enabled":true}],
	  "serviceBudgets": [{"id":"s","baseCost":10,"currentBudget":500,"efficiency":3}],
	  "ownedUpgrades": ["a","a"," ",""],
	  "energyRate": 0, "daysUntilBill": 0
	}`
	snap, err := DecodeJSON([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.TimeOfDay != clock.Night || snap.GameMinutes != 0 {
		t.Fatalf("time not derived: %+v", snap)
	}
	if snap.TaxPolicies[0].Rate != tax.MaxRate {
		t.Fatalf("rate not clamped: %v", snap.TaxPolicies[0].Rate)
	}
	if s := snap.ServiceBudgets[0]; s.CurrentBudget != 200 || s.Efficiency != 100 || s.MaintenanceMultiplier != 2 {
		t.Fatalf("service not re-derived: %+v", s)
	}
	if len(snap.OwnedUpgrades) != 1 || snap.EnergyRate != 2 || snap.DaysUntilBill != 5 {
		t.Fatalf("unexpected: %+v", snap)
	}
}

func TestDecodeJSON_SchemaRejects(t *testing.T) {
	bad := []string{
		`[]`,
		`{"weather":"foggy"}`,
		`{"gameTime":"noon"}`,
		`{"buildings":[{"income":5}]}`,
		`{"taxPolicies":[{"id":"x","category":"farm"}]}`,
		`{"serviceBudgets":[{"id":"x","baseCost":-1}]}`,
		`{"day":`,
	}
	for _, raw := range bad {
		if _, err := DecodeJSON([]byte(raw)); err == nil {
			t.Fatalf("expected rejection for %s", raw)
		}
	}
}

func TestEncodeDecodeJSON(t *testing.T) {
	raw, err := EncodeJSON(sampleSnapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	snap, err := DecodeJSON(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Day != 3 || snap.GameTime != 14 || snap.Coins != 1234.5 || snap.DaysUntilBill != 3 || snap.Level != 4 {
		t.Fatalf("unexpected: %+v", snap)
	}
}
