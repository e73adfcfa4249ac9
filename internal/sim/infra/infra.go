package infra

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrUnknownUpgrade     = errors.New("unknown upgrade")
	ErrAlreadyOwned       = errors.New("upgrade already owned")
	ErrLevelTooLow        = errors.New("player level too low")
	ErrPrerequisiteNotMet = errors.New("prerequisite not met")
	ErrInsufficientFunds  = errors.New("insufficient funds")
)

type Upgrade struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	Category        string             `json:"category"`
	Cost            float64            `json:"cost"`
	MaintenanceCost float64            `json:"maintenanceCost"`
	Effects         map[string]float64 `json:"effects,omitempty"`
	Prerequisite    string             `json:"prerequisite,omitempty"`
	UnlockLevel     int                `json:"unlockLevel"`
	BuildTime       int                `json:"buildTime"` // informational, in game hours
	Description     string             `json:"description,omitempty"`
}

// Owned is the set of purchased upgrade ids.
type Owned map[string]struct{}

func NewOwned(ids ...string) Owned {
	o := make(Owned, len(ids))
	for _, id := range ids {
		if id != "" {
			o[id] = struct{}{}
		}
	}
	return o
}

func (o Owned) Has(id string) bool {
	_, ok := o[id]
	return ok
}

func (o Owned) Clone() Owned {
	out := make(Owned, len(o))
	for id := range o {
		out[id] = struct{}{}
	}
	return out
}

func (o Owned) IDs() []string {
	ids := make([]string, 0, len(o))
	for id := range o {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Check returns the first gate that blocks a purchase, ignoring funds.
func Check(u Upgrade, owned Owned, playerLevel int) error {
	if owned.Has(u.ID) {
		return fmt.Errorf("%s: %w", u.ID, ErrAlreadyOwned)
	}
	if playerLevel < u.UnlockLevel {
		return fmt.Errorf("%s needs level %d, have %d: %w", u.ID, u.UnlockLevel, playerLevel, ErrLevelTooLow)
	}
	if u.Prerequisite != "" && !owned.Has(u.Prerequisite) {
		return fmt.Errorf("%s needs %s: %w", u.ID, u.Prerequisite, ErrPrerequisiteNotMet)
	}
	return nil
}

func IsAvailable(u Upgrade, owned Owned, playerLevel int) bool {
	return Check(u, owned, playerLevel) == nil
}

// Purchase adds u to owned and returns the coins left. On any error owned is
// left untouched.
func Purchase(u Upgrade, owned Owned, coins float64, playerLevel int) (float64, error) {
	if err := Check(u, owned, playerLevel); err != nil {
		return coins, err
	}
	if coins < u.Cost {
		return coins, fmt.Errorf("%s costs %.0f, have %.0f: %w", u.ID, u.Cost, coins, ErrInsufficientFunds)
	}
	owned[u.ID] = struct{}{}
	return coins - u.Cost, nil
}
