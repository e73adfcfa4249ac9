package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/city"
)

var ErrNotFound = errors.New("city not found")

// Manager owns every city running in the process, keyed by id.
type Manager struct {
	mu     sync.RWMutex
	cities map[string]*city.City
}

func NewManager() *Manager {
	return &Manager{cities: map[string]*city.City{}}
}

// Create builds a city from cfg. An empty cfg.ID gets a fresh uuid.
func (m *Manager) Create(cfg city.Config) (*city.City, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if _, err := uuid.Parse(cfg.ID); err != nil && !validName(cfg.ID) {
		return nil, fmt.Errorf("create city: invalid id %q", cfg.ID)
	}
	c, err := city.New(cfg)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cities[cfg.ID]; ok {
		return nil, fmt.Errorf("create city: duplicate id %q", cfg.ID)
	}
	m.cities[cfg.ID] = c
	return c, nil
}

func (m *Manager) Get(id string) (*city.City, error) {
	m.mu.RLock()
	c, ok := m.cities[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

// Remove stops the city's run loop, if any, and forgets it.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	c, ok := m.cities[id]
	delete(m.cities, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.Stop()
	return nil
}

func (m *Manager) IDs() []string {
	m.mu.RLock()
	out := make([]string, 0, len(m.cities))
	for id := range m.cities {
		out = append(out, id)
	}
	m.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cities)
}

// RunAll runs every registered city until ctx is done. Cities added after the
// call are not picked up.
func (m *Manager) RunAll(ctx context.Context, onTick func(id string, r city.TickResult)) {
	m.mu.RLock()
	cities := make([]*city.City, 0, len(m.cities))
	for _, c := range m.cities {
		cities = append(cities, c)
	}
	m.mu.RUnlock()

	var wg sync.WaitGroup
	for _, c := range cities {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			var fn func(city.TickResult)
			if onTick != nil {
				id := c.ID()
				fn = func(r city.TickResult) { onTick(id, r) }
			}
			_ = c.Run(ctx, fn)
		}()
	}
	wg.Wait()
}

// validName accepts short human ids like "default" or "city-2".
func validName(id string) bool {
	if len(id) == 0 || len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
