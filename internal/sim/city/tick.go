package city

import (
	"context"
	"time"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/budget"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/weather"
)

const (
	EventHour = "HOUR"
	EventDay  = "DAY"
	EventBill = "BILL"
)

type Event struct {
	Kind      string          `json:"kind"`
	CityID    string          `json:"city_id"`
	Day       int             `json:"day"`
	Hour      int             `json:"hour"`
	TimeOfDay clock.TimeOfDay `json:"time_of_day"`
	Weather   weather.State   `json:"weather"`
	Forecast  []weather.State `json:"forecast,omitempty"`

	Settlement *Settlement `json:"settlement,omitempty"`
}

// Settlement is the daily close of the city's books. Opening is the coin
// balance right before the close; purchases between closes move it.
type Settlement struct {
	Day     int                     `json:"day"`
	Budget  budget.CityBudgetSystem `json:"budget"`
	Balance float64                 `json:"balance"`
	Health  budget.Health           `json:"health"`
	Bill    float64                 `json:"bill,omitempty"`
	Opening float64                 `json:"opening"`
	Coins   float64                 `json:"coins"`
}

type TickResult struct {
	clock.Advance
	Day            int
	Weather        weather.State
	ForecastRolled bool
	Settlement     *Settlement
}

// Tick advances the city by one simulated minute.
func (c *City) Tick() TickResult {
	c.mu.Lock()
	res, events := c.tickLocked()
	logger := c.logger
	c.mu.Unlock()

	if logger != nil {
		for _, e := range events {
			_ = logger.WriteEvent(e)
		}
	}
	return res
}

func (c *City) tickLocked() (TickResult, []Event) {
	adv := c.clk.Tick()
	res := TickResult{Advance: adv, Day: c.day, Weather: c.weather}
	if !adv.HourAdvanced {
		return res, nil
	}

	c.weather = c.proc.UpdateWeather(adv.Hour)
	if weather.ShouldRegenerate(adv.Hour) {
		c.forecast = c.proc.GenerateForecast(adv.Hour, c.forecast)
		res.ForecastRolled = true
	}
	res.Weather = c.weather

	events := []Event{c.eventLocked(EventHour)}
	if adv.DayAdvanced {
		c.day++
		s := c.settleLocked()
		res.Settlement = &s
		ev := c.eventLocked(EventDay)
		ev.Settlement = &s
		events = append(events, ev)
		if s.Bill > 0 {
			bill := c.eventLocked(EventBill)
			bill.Settlement = &s
			events = append(events, bill)
		}
	}
	res.Day = c.day
	return res, events
}

func (c *City) eventLocked(kind string) Event {
	e := Event{
		Kind:      kind,
		CityID:    c.cfg.ID,
		Day:       c.day,
		Hour:      c.clk.Hour,
		TimeOfDay: c.clk.TimeOfDay(),
		Weather:   c.weather,
	}
	if kind == EventHour {
		e.Forecast = append([]weather.State(nil), c.forecast...)
	}
	return e
}

// settleLocked books the day's surplus (or deficit) and, on the billing day,
// charges energy at energyRate per unit of building usage.
func (c *City) settleLocked() Settlement {
	b := c.budgetLocked()
	s := Settlement{
		Day:     c.day,
		Budget:  b,
		Balance: b.BudgetSurplus,
		Health:  budget.Classify(b.BudgetSurplus),
		Opening: c.coins,
	}
	c.coins += b.BudgetSurplus
	c.daysUntilBill--
	if c.daysUntilBill <= 0 {
		s.Bill = c.energyRate * model.TotalEnergyUsage(c.buildings)
		c.coins -= s.Bill
		c.daysUntilBill = c.cfg.Tuning.BillEveryDays
	}
	s.Coins = c.coins
	return s
}

// Advance runs n ticks back to back and returns the settlements that happened.
func (c *City) Advance(n int) []Settlement {
	var out []Settlement
	for i := 0; i < n; i++ {
		if r := c.Tick(); r.Settlement != nil {
			out = append(out, *r.Settlement)
		}
	}
	return out
}

// Run ticks the city at its tuning cadence until ctx is done or Stop is called.
// onTick, if set, sees every tick result on the run goroutine.
func (c *City) Run(ctx context.Context, onTick func(TickResult)) error {
	ticker := time.NewTicker(c.TickInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stop:
			return nil
		case <-ticker.C:
			r := c.Tick()
			if onTick != nil {
				onTick(r)
			}
		}
	}
}

func (c *City) Stop() { c.stopOnce.Do(func() { close(c.stop) }) }
