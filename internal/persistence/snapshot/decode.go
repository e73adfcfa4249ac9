package snapshot

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/weather"
)

//go:embed snapshot.schema.json
var schemaJSON string

const schemaURL = "snapshot.schema.json"

// Defaults for fields a host snapshot may omit.
const (
	DefaultDay           = 1
	DefaultHour          = 8
	DefaultLevel         = 1
	DefaultEnergyRate    = 2
	DefaultDaysUntilBill = 5
)

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString(schemaURL, schemaJSON)
	})
	return schema, schemaErr
}

// wire mirrors SnapshotV1 with pointers where absence maps to a default.
type wire struct {
	Day             *int              `json:"day"`
	GameTime        *int              `json:"gameTime"`
	GameMinutes     *int              `json:"gameMinutes"`
	Paused          bool              `json:"paused"`
	Weather         weather.State     `json:"weather"`
	WeatherForecast []weather.State   `json:"weatherForecast"`
	TaxPolicies     []tax.Policy      `json:"taxPolicies"`
	ServiceBudgets  []services.Budget `json:"serviceBudgets"`
	OwnedUpgrades   []string          `json:"ownedUpgrades"`
	Buildings       []model.Building  `json:"buildings"`
	Coins           *float64          `json:"coins"`
	Level           *int              `json:"level"`
	EnergyRate      *float64          `json:"energyRate"`
	DaysUntilBill   *int              `json:"daysUntilBill"`
}

// Validate checks raw JSON against the snapshot schema.
func Validate(raw []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile snapshot schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("snapshot json: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("snapshot schema: %w", err)
	}
	return nil
}

// DecodeJSON validates and decodes a host snapshot, filling omitted fields with
// defaults and clamping out-of-range values. Empty policy or service lists are
// left empty for the caller to seed from its catalogs.
func DecodeJSON(raw []byte) (SnapshotV1, error) {
	var out SnapshotV1
	if err := Validate(raw); err != nil {
		return out, err
	}
	var w wire
	if err := json.Unmarshal(raw, &w); err != nil {
		return out, fmt.Errorf("snapshot json: %w", err)
	}

	out.Header.Version = Version
	out.Day = intOr(w.Day, DefaultDay)
	if out.Day < 1 {
		out.Day = DefaultDay
	}
	st := clock.State{Hour: intOr(w.GameTime, DefaultHour), Minute: intOr(w.GameMinutes, 0)}.Normalize()
	out.GameTime = st.Hour
	out.GameMinutes = st.Minute
	// Always derived from the hour; a stored value is never trusted.
	out.TimeOfDay = clock.OfHour(st.Hour)
	out.Paused = w.Paused

	// Left empty when missing; ImportSnapshot samples it for the stored hour.
	out.Weather = w.Weather
	out.WeatherForecast = w.WeatherForecast

	out.TaxPolicies = w.TaxPolicies
	for i := range out.TaxPolicies {
		out.TaxPolicies[i].Rate = tax.ClampRate(out.TaxPolicies[i].Rate)
	}
	out.ServiceBudgets = w.ServiceBudgets
	for i, s := range out.ServiceBudgets {
		pct := s.CurrentBudget
		if pct == 0 {
			pct = 100
		}
		out.ServiceBudgets[i] = services.WithBudget(s, pct)
	}
	out.OwnedUpgrades = dedupe(w.OwnedUpgrades)
	out.Buildings = w.Buildings

	if w.Coins != nil {
		out.Coins = *w.Coins
	}
	out.Level = intOr(w.Level, DefaultLevel)
	if out.Level < 1 {
		out.Level = DefaultLevel
	}
	out.EnergyRate = DefaultEnergyRate
	if w.EnergyRate != nil && *w.EnergyRate > 0 {
		out.EnergyRate = *w.EnergyRate
	}
	out.DaysUntilBill = intOr(w.DaysUntilBill, DefaultDaysUntilBill)
	if out.DaysUntilBill <= 0 {
		out.DaysUntilBill = DefaultDaysUntilBill
	}
	out.Header.Day = out.Day
	out.Header.Hour = out.GameTime
	return out, nil
}

// EncodeJSON renders a snapshot in the shape DecodeJSON accepts.
func EncodeJSON(snap SnapshotV1) ([]byte, error) {
	return json.Marshal(snap)
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
