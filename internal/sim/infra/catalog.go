package infra

import "fmt"

// Catalog is an immutable, ordered set of upgrade definitions.
type Catalog struct {
	list []Upgrade
	byID map[string]int
}

func NewCatalog(upgrades []Upgrade) (*Catalog, error) {
	c := &Catalog{list: make([]Upgrade, len(upgrades)), byID: make(map[string]int, len(upgrades))}
	copy(c.list, upgrades)
	for i, u := range c.list {
		if u.ID == "" {
			return nil, fmt.Errorf("upgrade %d: empty id", i)
		}
		if _, dup := c.byID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate upgrade id: %s", u.ID)
		}
		c.byID[u.ID] = i
	}
	for _, u := range c.list {
		if u.Prerequisite == "" {
			continue
		}
		if _, ok := c.byID[u.Prerequisite]; !ok {
			return nil, fmt.Errorf("upgrade %s: unknown prerequisite %s", u.ID, u.Prerequisite)
		}
		if u.Prerequisite == u.ID {
			return nil, fmt.Errorf("upgrade %s: self prerequisite", u.ID)
		}
	}
	return c, nil
}

func (c *Catalog) Get(id string) (Upgrade, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Upgrade{}, false
	}
	return c.list[i], true
}

func (c *Catalog) All() []Upgrade {
	out := make([]Upgrade, len(c.list))
	copy(out, c.list)
	return out
}

// Available lists upgrades the player could buy now, ignoring funds.
func (c *Catalog) Available(owned Owned, playerLevel int) []Upgrade {
	var out []Upgrade
	for _, u := range c.list {
		if IsAvailable(u, owned, playerLevel) {
			out = append(out, u)
		}
	}
	return out
}

// MaintenanceTotal sums the per-period maintenance of owned upgrades known to c.
func (c *Catalog) MaintenanceTotal(owned Owned) float64 {
	total := 0.0
	for _, u := range c.list {
		if owned.Has(u.ID) {
			total += u.MaintenanceCost
		}
	}
	return total
}

// Effects sums the permanent effects of owned upgrades.
func (c *Catalog) Effects(owned Owned) map[string]float64 {
	out := map[string]float64{}
	for _, u := range c.list {
		if !owned.Has(u.ID) {
			continue
		}
		for k, v := range u.Effects {
			out[k] += v
		}
	}
	return out
}

// Buy looks id up and purchases it.
func (c *Catalog) Buy(id string, owned Owned, coins float64, playerLevel int) (float64, error) {
	u, ok := c.Get(id)
	if !ok {
		return coins, fmt.Errorf("%s: %w", id, ErrUnknownUpgrade)
	}
	return Purchase(u, owned, coins, playerLevel)
}
