package city

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/catalogs"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/budget"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/infra"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/tuning"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/weather"
)

type Config struct {
	ID       string
	Catalogs *catalogs.Catalogs

	// Tuning left as the zero value means tuning.Defaults(). A partially set
	// Tuning is normalized field by field; StartHour and StartCoins keep zero.
	Tuning tuning.Tuning

	// Rand drives weather. When nil a generator seeded with Seed is used.
	Rand weather.Source
	Seed int64
}

// EventLogger receives hour, day and settlement events. Implemented in
// internal/persistence/log.
type EventLogger interface {
	WriteEvent(e Event) error
}

// City is one player's simulation. All state sits behind a single mutex so a
// reader never observes a half-applied mutation.
type City struct {
	cfg Config

	mu sync.Mutex

	clk      clock.State
	day      int
	weather  weather.State
	forecast []weather.State
	proc     *weather.Process

	taxes    *tax.Ledger
	services *services.Ledger
	upgrades *infra.Catalog
	owned    infra.Owned

	buildings []model.Building

	coins         float64
	level         int
	energyRate    float64
	daysUntilBill int

	logger EventLogger
	audit  AuditLogger

	stop     chan struct{}
	stopOnce sync.Once
}

func New(cfg Config) (*City, error) {
	if cfg.Catalogs == nil {
		cfg.Catalogs = catalogs.Defaults()
	}
	if cfg.Catalogs.Upgrades.Catalog == nil {
		return nil, fmt.Errorf("city %s: nil upgrade catalog", cfg.ID)
	}
	if cfg.Tuning == (tuning.Tuning{}) {
		cfg.Tuning = tuning.Defaults()
	}
	cfg.Tuning.Normalize()
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(cfg.Seed))
	}

	c := &City{
		cfg:           cfg,
		clk:           clock.State{Hour: cfg.Tuning.StartHour, Minute: cfg.Tuning.StartMinute},
		day:           1,
		proc:          weather.NewProcess(cfg.Rand),
		taxes:         tax.NewLedger(cfg.Catalogs.Taxes.Policies),
		services:      services.NewLedger(cfg.Catalogs.Services.Budgets),
		upgrades:      cfg.Catalogs.Upgrades.Catalog,
		owned:         infra.NewOwned(),
		coins:         cfg.Tuning.StartCoins,
		level:         cfg.Tuning.StartLevel,
		energyRate:    cfg.Tuning.EnergyRate,
		daysUntilBill: cfg.Tuning.BillEveryDays,
		stop:          make(chan struct{}),
	}
	c.weather = c.proc.UpdateWeather(c.clk.Hour)
	c.forecast = c.proc.GenerateForecast(c.clk.Hour, nil)
	return c, nil
}

func (c *City) ID() string { return c.cfg.ID }

func (c *City) SetEventLogger(l EventLogger) {
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// TickInterval is the real-time length of one simulated minute.
func (c *City) TickInterval() time.Duration {
	return time.Duration(c.cfg.Tuning.TickDurationMs) * time.Millisecond
}

func (c *City) SetPaused(p bool) {
	c.mu.Lock()
	c.clk.Paused = p
	c.mu.Unlock()
}

// UpdateTaxRate clamps the rate to 0..30. Unknown ids are ignored.
func (c *City) UpdateTaxRate(id string, rate float64) (float64, bool) {
	c.mu.Lock()
	got, ok := c.taxes.UpdateRate(id, rate)
	e, l := c.auditLocked(AuditTaxRate, id, got, nil), c.audit
	c.mu.Unlock()
	writeAudit(l, e, ok)
	return got, ok
}

func (c *City) ToggleTax(id string) (bool, bool) {
	c.mu.Lock()
	on, ok := c.taxes.Toggle(id)
	v := 0.0
	if on {
		v = 1
	}
	e, l := c.auditLocked(AuditTaxToggle, id, v, nil), c.audit
	c.mu.Unlock()
	writeAudit(l, e, ok)
	return on, ok
}

// UpdateServiceBudget clamps the percentage to 50..200. Unknown ids are ignored.
func (c *City) UpdateServiceBudget(id string, pct float64) (services.Budget, bool) {
	c.mu.Lock()
	s, ok := c.services.UpdateBudget(id, pct)
	e, l := c.auditLocked(AuditServiceBudget, id, s.CurrentBudget, nil), c.audit
	c.mu.Unlock()
	writeAudit(l, e, ok)
	return s, ok
}

// Purchase buys an infrastructure upgrade with city coins. Failed attempts are
// audited with the reason.
func (c *City) Purchase(upgradeID string) error {
	c.mu.Lock()
	left, err := c.upgrades.Buy(upgradeID, c.owned, c.coins, c.level)
	if err == nil {
		c.coins = left
	}
	cost := 0.0
	if u, ok := c.upgrades.Get(upgradeID); ok {
		cost = u.Cost
	}
	e, l := c.auditLocked(AuditPurchase, upgradeID, cost, err), c.audit
	c.mu.Unlock()
	writeAudit(l, e, true)
	return err
}

func (c *City) SetBuildings(bs []model.Building) {
	next := make([]model.Building, len(bs))
	copy(next, bs)
	c.mu.Lock()
	c.buildings = next
	c.mu.Unlock()
}

func (c *City) SetLevel(level int) {
	if level < 1 {
		level = 1
	}
	c.mu.Lock()
	c.level = level
	c.mu.Unlock()
}

func (c *City) AddCoins(delta float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coins += delta
	return c.coins
}

// Budget recomputes the city budget from the current ledgers.
func (c *City) Budget() budget.CityBudgetSystem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.budgetLocked()
}

func (c *City) budgetLocked() budget.CityBudgetSystem {
	return budget.Compute(budget.Input{
		Buildings: c.buildings,
		Taxes:     c.taxes.Policies(),
		Services:  c.services.Services(),
		Upgrades:  c.upgrades,
		Owned:     c.owned,
	})
}

// Status is a read-only view for presentation layers.
type Status struct {
	Day           int                         `json:"day"`
	Hour          int                         `json:"hour"`
	Minute        int                         `json:"minute"`
	Paused        bool                        `json:"paused"`
	TimeOfDay     clock.TimeOfDay             `json:"timeOfDay"`
	Weather       weather.State               `json:"weather"`
	Forecast      []weather.State             `json:"forecast"`
	Coins         float64                     `json:"coins"`
	Level         int                         `json:"level"`
	EnergyRate    float64                     `json:"energyRate"`
	DaysUntilBill int                         `json:"daysUntilBill"`
	Budget        budget.CityBudgetSystem     `json:"budget"`
	Health        budget.Health               `json:"health"`
	EmergencyFund float64                     `json:"emergencyFund"`
	Happiness     float64                     `json:"happiness"`
	Effects       map[services.Effect]float64 `json:"effects"`
	TaxPolicies   []tax.Policy                `json:"taxPolicies"`
	Services      []services.Budget           `json:"services"`
	Owned         []string                    `json:"ownedUpgrades"`
	Available     []infra.Upgrade             `json:"availableUpgrades"`
}

func (c *City) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	b := c.budgetLocked()
	taxes := c.taxes.Policies()
	svc := c.services.Services()

	effects := services.ComputeEffects(svc)
	for k, v := range c.upgrades.Effects(c.owned) {
		effects[services.Effect(k)] += v
	}
	forecast := make([]weather.State, len(c.forecast))
	copy(forecast, c.forecast)

	return Status{
		Day:           c.day,
		Hour:          c.clk.Hour,
		Minute:        c.clk.Minute,
		Paused:        c.clk.Paused,
		TimeOfDay:     c.clk.TimeOfDay(),
		Weather:       c.weather,
		Forecast:      forecast,
		Coins:         c.coins,
		Level:         c.level,
		EnergyRate:    c.energyRate,
		DaysUntilBill: c.daysUntilBill,
		Budget:        b,
		Health:        budget.Classify(b.BudgetSurplus),
		EmergencyFund: budget.EmergencyFund(b.BudgetSurplus),
		Happiness:     tax.TotalHappinessImpact(taxes) + effects[services.Happiness],
		Effects:       effects,
		TaxPolicies:   taxes,
		Services:      svc,
		Owned:         c.owned.IDs(),
		Available:     c.upgrades.Available(c.owned, c.level),
	}
}
