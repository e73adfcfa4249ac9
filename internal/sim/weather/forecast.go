package weather

import (
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
)

const (
	ForecastSlots     = 6
	ForecastSlotHours = 4
)

// Source is the random stream the process draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Process samples live weather and the rolling forecast from one Source.
type Process struct {
	src Source
}

func NewProcess(src Source) *Process {
	return &Process{src: src}
}

func (p *Process) sample(hour int) State {
	return Sample(clock.OfHour(hour), p.src.Float64())
}

// UpdateWeather draws the weather for a freshly advanced hour.
func (p *Process) UpdateWeather(hour int) State {
	return p.sample(hour)
}

// GenerateForecast fills an empty forecast with independent samples, or rolls a
// non-empty one forward by one slot. The result always has ForecastSlots entries.
func (p *Process) GenerateForecast(currentHour int, existing []State) []State {
	if len(existing) == 0 {
		out := make([]State, ForecastSlots)
		for i := range out {
			out[i] = p.sample(currentHour + ForecastSlotHours*i)
		}
		return out
	}

	out := make([]State, 0, ForecastSlots)
	if len(existing) > 1 {
		out = append(out, existing[1:]...)
	}
	if len(out) > ForecastSlots-1 {
		out = out[:ForecastSlots-1]
	}
	// A short queue (older saves) is padded so slot k still covers currentHour+4k.
	for len(out) < ForecastSlots-1 {
		out = append(out, p.sample(currentHour+ForecastSlotHours*len(out)))
	}
	out = append(out, p.sample(currentHour+ForecastSlotHours*(ForecastSlots-1)))
	return out
}

// ShouldRegenerate reports whether the forecast rolls at this hour.
func ShouldRegenerate(hour int) bool {
	return clock.Mod24(hour)%ForecastSlotHours == 0
}
