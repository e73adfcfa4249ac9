package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	// Real-time length of one simulated minute.
	TickDurationMs int `yaml:"tick_duration_ms"`

	StartHour   int `yaml:"start_hour"`
	StartMinute int `yaml:"start_minute"`

	StartCoins float64 `yaml:"start_coins"`
	StartLevel int     `yaml:"start_level"`

	EnergyRate    float64 `yaml:"energy_rate"`
	BillEveryDays int     `yaml:"bill_every_days"`

	// Flush a snapshot every N simulated hours (0 disables periodic snapshots).
	SnapshotEveryHours int `yaml:"snapshot_every_hours"`
}

func Defaults() Tuning {
	return Tuning{
		TickDurationMs:     300,
		StartHour:          8,
		StartMinute:        0,
		StartCoins:         2000,
		StartLevel:         1,
		EnergyRate:         2,
		BillEveryDays:      5,
		SnapshotEveryHours: 24,
	}
}

// Normalize replaces invalid fields with defaults. Fields whose zero value is
// legal (StartHour, StartMinute, StartCoins) are kept as given.
func (t *Tuning) Normalize() {
	d := Defaults()
	if t.TickDurationMs <= 0 {
		t.TickDurationMs = d.TickDurationMs
	}
	if t.StartHour < 0 || t.StartHour > 23 {
		t.StartHour = d.StartHour
	}
	if t.StartMinute < 0 || t.StartMinute > 59 {
		t.StartMinute = d.StartMinute
	}
	if t.StartLevel <= 0 {
		t.StartLevel = d.StartLevel
	}
	if t.EnergyRate <= 0 {
		t.EnergyRate = d.EnergyRate
	}
	if t.BillEveryDays <= 0 {
		t.BillEveryDays = d.BillEveryDays
	}
	if t.SnapshotEveryHours < 0 {
		t.SnapshotEveryHours = 0
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	return t, nil
}
