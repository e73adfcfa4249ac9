package city

const (
	AuditTaxRate       = "TAX_RATE"
	AuditTaxToggle     = "TAX_TOGGLE"
	AuditServiceBudget = "SERVICE_BUDGET"
	AuditPurchase      = "PURCHASE"
)

// AuditEntry records one player mutation of the city's ledgers.
type AuditEntry struct {
	CityID string  `json:"city_id"`
	Day    int     `json:"day"`
	Hour   int     `json:"hour"`
	Minute int     `json:"minute"`
	Action string  `json:"action"`
	Target string  `json:"target"`
	Value  float64 `json:"value"`
	Coins  float64 `json:"coins"`
	Reason string  `json:"reason,omitempty"`
}

type AuditLogger interface {
	WriteAudit(e AuditEntry) error
}

func (c *City) SetAuditLogger(l AuditLogger) {
	c.mu.Lock()
	c.audit = l
	c.mu.Unlock()
}

// auditLocked snapshots the clock and coins into an entry for action.
func (c *City) auditLocked(action, target string, value float64, err error) AuditEntry {
	e := AuditEntry{
		CityID: c.cfg.ID,
		Day:    c.day,
		Hour:   c.clk.Hour,
		Minute: c.clk.Minute,
		Action: action,
		Target: target,
		Value:  value,
		Coins:  c.coins,
	}
	if err != nil {
		e.Reason = err.Error()
	}
	return e
}

func writeAudit(l AuditLogger, e AuditEntry, ok bool) {
	if l == nil || !ok {
		return
	}
	_ = l.WriteAudit(e)
}
