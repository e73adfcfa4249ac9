package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/snapshot"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/catalogs"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/city"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/tuning"
)

// SQLiteIndex is a queryable read model of a city's history. Writes are queued
// to a single goroutine and dropped when the queue is full; the JSONL logs stay
// the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

type reqKind int

const (
	reqEvent reqKind = iota + 1
	reqAudit
	reqSnapshot
)

type req struct {
	kind reqKind

	event    city.Event
	audit    city.AuditEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Day        int
	Hour       int
	Path       string
	CityID     string
	Coins      float64
	Level      int
	Buildings  int
	Upgrades   int
	RecordedAt string
}

// SettlementRow is one closed day as stored in the index.
type SettlementRow struct {
	Day            int
	TotalBudget    float64
	TaxRevenue     float64
	BuildingIncome float64
	TotalExpenses  float64
	Surplus        float64
	Health         string
	Bill           float64
	Coins          float64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 16384),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS hours (
			day INTEGER NOT NULL,
			hour INTEGER NOT NULL,
			time_of_day TEXT NOT NULL,
			weather TEXT NOT NULL,
			forecast_json TEXT NOT NULL,
			PRIMARY KEY (day, hour)
		);`,
		`CREATE TABLE IF NOT EXISTS settlements (
			day INTEGER PRIMARY KEY,
			total_budget REAL NOT NULL,
			tax_revenue REAL NOT NULL,
			building_income REAL NOT NULL,
			total_expenses REAL NOT NULL,
			surplus REAL NOT NULL,
			health TEXT NOT NULL,
			bill REAL NOT NULL,
			coins REAL NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			day INTEGER NOT NULL,
			hour INTEGER NOT NULL,
			minute INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			action TEXT NOT NULL,
			target TEXT NOT NULL,
			value REAL NOT NULL,
			coins REAL NOT NULL,
			reason TEXT,
			PRIMARY KEY (day, hour, minute, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_action_day ON audits(action, day);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			day INTEGER NOT NULL,
			hour INTEGER NOT NULL,
			path TEXT NOT NULL,
			city_id TEXT NOT NULL,
			coins REAL NOT NULL,
			level INTEGER NOT NULL,
			buildings INTEGER NOT NULL,
			upgrades INTEGER NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (day, hour)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close drains the queue and closes the database. Safe to call twice.
func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped counts writes discarded because the queue was full.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

func (s *SQLiteIndex) enqueue(r req) {
	if s == nil || s.closed.Load() {
		return
	}
	select {
	case s.ch <- r:
	default:
		s.dropped.Add(1)
	}
}

func (s *SQLiteIndex) WriteEvent(e city.Event) error {
	s.enqueue(req{kind: reqEvent, event: e})
	return nil
}

func (s *SQLiteIndex) WriteAudit(e city.AuditEntry) error {
	s.enqueue(req{kind: reqAudit, audit: e})
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	s.enqueue(req{kind: reqSnapshot, snapshot: snapshotRow{
		Day:        snap.Day,
		Hour:       snap.GameTime,
		Path:       path,
		CityID:     snap.Header.CityID,
		Coins:      snap.Coins,
		Level:      snap.Level,
		Buildings:  len(snap.Buildings),
		Upgrades:   len(snap.OwnedUpgrades),
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}})
}

// UpsertCatalogs stores the catalogs and the applied tuning with their digests.
// The raw config file is stored when present so the index matches what was
// loaded byte for byte.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	pick := func(file string, v any) []byte {
		if configDir != "" {
			if b, err := os.ReadFile(filepath.Join(configDir, file)); err == nil && len(b) > 0 {
				return b
			}
		}
		b, _ := json.Marshal(v)
		return b
	}
	var upgrades any
	if cats.Upgrades.Catalog != nil {
		upgrades = cats.Upgrades.Catalog.All()
	}
	rows := []kv{
		{name: "tax_policies", digest: cats.Taxes.Digest, json: pick("tax_policies.json", cats.Taxes.Policies)},
		{name: "services", digest: cats.Services.Digest, json: pick("services.json", cats.Services.Budgets)},
		{name: "upgrades", digest: cats.Upgrades.Digest, json: pick("upgrades.json", upgrades)},
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Settlements returns closed days in [fromDay, toDay], oldest first. Rows still
// queued in the writer are not visible yet.
func (s *SQLiteIndex) Settlements(ctx context.Context, fromDay, toDay int) ([]SettlementRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT day,total_budget,tax_revenue,building_income,total_expenses,surplus,health,bill,coins
		FROM settlements WHERE day BETWEEN ? AND ? ORDER BY day`, fromDay, toDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SettlementRow
	for rows.Next() {
		var r SettlementRow
		if err := rows.Scan(&r.Day, &r.TotalBudget, &r.TaxRevenue, &r.BuildingIncome, &r.TotalExpenses, &r.Surplus, &r.Health, &r.Bill, &r.Coins); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertHour, _ := s.db.Prepare(`INSERT OR REPLACE INTO hours(day,hour,time_of_day,weather,forecast_json) VALUES(?,?,?,?,?)`)
	insertSettlement, _ := s.db.Prepare(`INSERT OR REPLACE INTO settlements(day,total_budget,tax_revenue,building_income,total_expenses,surplus,health,bill,coins,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	insertAudit, _ := s.db.Prepare(`INSERT OR REPLACE INTO audits(day,hour,minute,seq,action,target,value,coins,reason) VALUES(?,?,?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(day,hour,path,city_id,coins,level,buildings,upgrades,recorded_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertHour, insertSettlement, insertAudit, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = 2 * time.Second

		lastAuditKey [3]int
		auditSeq     int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqEvent:
			e := r.event
			switch e.Kind {
			case city.EventHour:
				fc, _ := json.Marshal(e.Forecast)
				exec(insertHour, e.Day, e.Hour, string(e.TimeOfDay), string(e.Weather), string(fc))
			case city.EventDay:
				if st := e.Settlement; st != nil {
					raw, _ := json.Marshal(st)
					b := st.Budget
					exec(insertSettlement, st.Day, b.TotalBudget, b.TaxRevenue, b.BuildingIncome, b.TotalExpenses,
						b.BudgetSurplus, string(st.Health), st.Bill, st.Coins, string(raw))
				}
			}

		case reqAudit:
			a := r.audit
			key := [3]int{a.Day, a.Hour, a.Minute}
			if key != lastAuditKey {
				lastAuditKey = key
				auditSeq = 0
			}
			seq := auditSeq
			auditSeq++
			exec(insertAudit, a.Day, a.Hour, a.Minute, seq, a.Action, a.Target, a.Value, a.Coins, a.Reason)

		case reqSnapshot:
			sn := r.snapshot
			exec(insertSnapshot, sn.Day, sn.Hour, sn.Path, sn.CityID, sn.Coins, sn.Level, sn.Buildings, sn.Upgrades, sn.RecordedAt)
		}

		// Commit when the queue drains so readers sharing the connection are not starved.
		if tx != nil && (len(s.ch) == 0 || opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
