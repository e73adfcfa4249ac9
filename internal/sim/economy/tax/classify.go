package tax

import (
	"strings"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
)

var categoryByName = map[string]Category{
	"residential": Residential,
	"house":       Residential,
	"cottage":     Residential,
	"apartment":   Residential,
	"townhouse":   Residential,
	"condo":       Residential,
	"mansion":     Residential,

	"commercial": Commercial,
	"shop":       Commercial,
	"cafe":       Commercial,
	"bakery":     Commercial,
	"restaurant": Commercial,
	"market":     Commercial,
	"office":     Commercial,
	"hotel":      Commercial,
	"mall":       Commercial,

	"industrial":       Industrial,
	"factory":          Industrial,
	"workshop":         Industrial,
	"warehouse":        Industrial,
	"power_plant":      Industrial,
	"recycling_center": Industrial,
	"water_treatment":  Industrial,
}

// Classify returns the primary category of a building. Type wins over ID; an ID
// such as "house_12" matches by its name stem. ok is false for civic buildings.
func Classify(b model.Building) (Category, bool) {
	if c, ok := lookup(b.Type); ok {
		return c, true
	}
	return lookup(b.ID)
}

func lookup(name string) (Category, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", false
	}
	if c, ok := categoryByName[n]; ok {
		return c, true
	}
	if i := strings.LastIndexAny(n, "_-"); i > 0 && isDigits(n[i+1:]) {
		c, ok := categoryByName[n[:i]]
		return c, ok
	}
	return "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Census counts buildings per category; luxury overlaps the other three.
type Census map[Category]int

func TakeCensus(buildings []model.Building) Census {
	c := Census{}
	for _, b := range buildings {
		if cat, ok := Classify(b); ok {
			c[cat]++
		}
		if b.Cost > model.LuxuryCostThreshold {
			c[Luxury]++
		}
	}
	return c
}
