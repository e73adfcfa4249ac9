package services

// Ledger holds the city's service budgets in catalog order.
type Ledger struct {
	services []Budget
}

// NewLedger copies the given services and re-derives each from its current budget,
// so a stale or hand-edited save cannot carry inconsistent derived fields.
func NewLedger(services []Budget) *Ledger {
	l := &Ledger{services: make([]Budget, len(services))}
	for i, s := range services {
		pct := s.CurrentBudget
		if pct == 0 {
			pct = 100
		}
		l.services[i] = WithBudget(s, pct)
	}
	return l
}

func (l *Ledger) index(id string) int {
	for i := range l.services {
		if l.services[i].ID == id {
			return i
		}
	}
	return -1
}

// UpdateBudget sets a clamped funding percentage. Unknown ids are ignored.
func (l *Ledger) UpdateBudget(id string, pct float64) (Budget, bool) {
	i := l.index(id)
	if i < 0 {
		return Budget{}, false
	}
	next := WithBudget(l.services[i], pct)
	l.services[i] = next
	return next.clone(), true
}

func (l *Ledger) Get(id string) (Budget, bool) {
	i := l.index(id)
	if i < 0 {
		return Budget{}, false
	}
	return l.services[i].clone(), true
}

func (l *Ledger) Services() []Budget {
	out := make([]Budget, len(l.services))
	for i, s := range l.services {
		out[i] = s.clone()
	}
	return out
}
