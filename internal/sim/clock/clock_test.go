package clock

import "testing"

func TestOfHour(t *testing.T) {
	cases := map[int]TimeOfDay{
		0: Night, 4: Night, 5: Morning, 9: Morning, 10: Day, 16: Day,
		17: Evening, 20: Evening, 21: Night, 23: Night, 24: Night, -1: Night,
	}
	for h, want := range cases {
		if got := OfHour(h); got != want {
			t.Fatalf("OfHour(%d)=%s want %s", h, got, want)
		}
	}
}

func TestTick_SixtyTicksAdvanceOneHour(t *testing.T) {
	for start := 0; start < 24; start++ {
		s := State{Hour: start, Minute: 17}
		hourEvents := 0
		for i := 0; i < 60; i++ {
			if s.Tick().HourAdvanced {
				hourEvents++
			}
		}
		if s.Hour != (start+1)%24 || s.Minute != 17 {
			t.Fatalf("start=%d: got %02d:%02d", start, s.Hour, s.Minute)
		}
		if hourEvents != 1 {
			t.Fatalf("start=%d: expected 1 hour advance, got %d", start, hourEvents)
		}
	}
}

func TestTick_Paused(t *testing.T) {
	s := State{Hour: 3, Minute: 59, Paused: true}
	adv := s.Tick()
	if adv.Ticked || adv.HourAdvanced || s.Minute != 59 || s.Hour != 3 {
		t.Fatalf("paused clock moved: %+v %+v", s, adv)
	}
}

func TestTick_DayAdvancesOnlyAtSix(t *testing.T) {
	s := State{}
	days := 0
	for i := 0; i < 24*60*3; i++ {
		adv := s.Tick()
		if adv.DayAdvanced {
			days++
			if adv.Hour != DayStartHour || !adv.HourAdvanced {
				t.Fatalf("day advanced at hour %d", adv.Hour)
			}
		}
		if !adv.HourAdvanced && adv.DayAdvanced {
			t.Fatalf("day advance without hour advance")
		}
	}
	if days != 3 {
		t.Fatalf("expected 3 day advances in 3 days, got %d", days)
	}
}

func TestTick_MidnightWraps(t *testing.T) {
	s := State{Hour: 23, Minute: 59}
	adv := s.Tick()
	if s.Hour != 0 || s.Minute != 0 || !adv.HourAdvanced || adv.DayAdvanced || adv.TimeOfDay != Night {
		t.Fatalf("unexpected midnight rollover: %+v %+v", s, adv)
	}
}

func TestNormalize(t *testing.T) {
	s := State{Hour: 26, Minute: 75}.Normalize()
	if s.Hour != 2 || s.Minute != 0 {
		t.Fatalf("unexpected normalize: %+v", s)
	}
}
