package clock

// DayStartHour is the hour whose arrival advances the game day.
const DayStartHour = 6

type TimeOfDay string

const (
	Morning TimeOfDay = "morning"
	Day     TimeOfDay = "day"
	Evening TimeOfDay = "evening"
	Night   TimeOfDay = "night"
)

// OfHour classifies an hour of the day. Hours outside 0..23 are folded first.
func OfHour(hour int) TimeOfDay {
	h := Mod24(hour)
	switch {
	case h >= 5 && h < 10:
		return Morning
	case h >= 10 && h < 17:
		return Day
	case h >= 17 && h < 21:
		return Evening
	default:
		return Night
	}
}

func (t TimeOfDay) Valid() bool {
	switch t {
	case Morning, Day, Evening, Night:
		return true
	default:
		return false
	}
}

func Mod24(h int) int {
	m := h % 24
	if m < 0 {
		m += 24
	}
	return m
}

type State struct {
	Hour   int  `json:"hour"`
	Minute int  `json:"minute"`
	Paused bool `json:"paused"`
}

// Advance describes what a single tick changed.
type Advance struct {
	Ticked       bool
	HourAdvanced bool
	DayAdvanced  bool
	Hour         int
	TimeOfDay    TimeOfDay
}

// Normalize folds hour and minute into their legal ranges.
func (s State) Normalize() State {
	s.Hour = Mod24(s.Hour)
	if s.Minute < 0 || s.Minute > 59 {
		s.Minute = 0
	}
	return s
}

func (s State) TimeOfDay() TimeOfDay { return OfHour(s.Hour) }

// Tick advances one simulated minute. Pausing is checked before the increment.
func (s *State) Tick() Advance {
	if s.Paused {
		return Advance{Hour: s.Hour, TimeOfDay: OfHour(s.Hour)}
	}
	s.Minute++
	if s.Minute <= 59 {
		return Advance{Ticked: true, Hour: s.Hour, TimeOfDay: OfHour(s.Hour)}
	}
	s.Minute = 0
	s.Hour = (s.Hour + 1) % 24
	return Advance{
		Ticked:       true,
		HourAdvanced: true,
		DayAdvanced:  s.Hour == DayStartHour,
		Hour:         s.Hour,
		TimeOfDay:    OfHour(s.Hour),
	}
}
