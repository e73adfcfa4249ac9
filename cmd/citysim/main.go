package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/archive"
	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/indexdb"
	persistlog "github.com/d0mkaaa/neighborville-sub003/internal/persistence/log"
	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/snapshot"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/catalogs"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/city"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/registry"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/tuning"
)

func main() {
	var (
		cityID     = flag.String("city", "", "city id (default: fresh uuid, or the id stored in the snapshot)")
		seed       = flag.Int64("seed", 1337, "weather seed")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite history index")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		importJSON = flag.String("import_json", "", "path to a JSON game state to start from (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from the city dir if present (when -snapshot is empty)")

		hours = flag.Int("hours", 0, "fast-forward this many simulated hours, write a snapshot and exit (0: run in real time)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[citysim] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}

	snap, snapSource, err := loadState(*snapPath, *importJSON, *loadLatest, *dataDir, *cityID)
	if err != nil {
		logger.Fatalf("load state: %v", err)
	}
	id := strings.TrimSpace(*cityID)
	if id == "" && snap != nil {
		id = snap.Header.CityID
	}

	reg := registry.NewManager()
	c, err := reg.Create(city.Config{ID: id, Tuning: tune, Catalogs: cats, Seed: *seed})
	if err != nil {
		logger.Fatalf("city: %v", err)
	}
	if snap != nil {
		if snap.Header.CityID != "" && snap.Header.CityID != c.ID() {
			logger.Fatalf("snapshot city id mismatch: flag=%s snap=%s", c.ID(), snap.Header.CityID)
		}
		if err := c.ImportSnapshot(*snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from %s day=%d hour=%d", snapSource, snap.Day, snap.GameTime)
	}

	cityDir := filepath.Join(*dataDir, "cities", c.ID())
	if err := os.MkdirAll(cityDir, 0o755); err != nil {
		logger.Fatalf("city dir: %v", err)
	}

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(cityDir, "index", "city.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*configDir, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	eventLog := persistlog.NewEventLogger(cityDir)
	auditLog := persistlog.NewAuditLogger(cityDir)
	defer eventLog.Close()
	defer auditLog.Close()
	c.SetEventLogger(multiEventLogger{a: eventLog, b: idx, logger: logger})
	c.SetAuditLogger(multiAuditLogger{a: auditLog, b: idx})

	writeSnap := func() {
		s := c.ExportSnapshot()
		path := filepath.Join(cityDir, "snapshots", snapshot.FileName(s.Day, s.GameTime))
		if err := snapshot.WriteSnapshot(path, s); err != nil {
			logger.Printf("snapshot write: %v", err)
			return
		}
		idx.RecordSnapshot(path, s)
		if cycle, archived, ok, err := archive.ArchiveCycleSnapshot(cityDir, path, s, tune.BillEveryDays); err != nil {
			logger.Printf("archive cycle snapshot: %v", err)
		} else if ok {
			logger.Printf("archived cycle %d: %s", cycle, archived)
		}
	}

	every := tune.SnapshotEveryHours
	hoursSeen := 0
	onTick := func(r city.TickResult) {
		if !r.HourAdvanced {
			return
		}
		hoursSeen++
		billed := r.Settlement != nil && r.Settlement.Bill > 0
		if billed || (every > 0 && hoursSeen%every == 0) {
			writeSnap()
		}
	}

	logger.Printf("city=%s configs=%s taxes=%s services=%s upgrades=%s",
		c.ID(), *configDir, short(cats.Taxes.Digest), short(cats.Services.Digest), short(cats.Upgrades.Digest))

	if *hours > 0 {
		for i := 0; i < *hours*60; i++ {
			onTick(c.Tick())
		}
		writeSnap()
		st := c.Status()
		logger.Printf("done day=%d %02d:%02d coins=%.2f health=%s", st.Day, st.Hour, st.Minute, st.Coins, st.Health)
		return
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := c.Run(ctx, onTick); err != nil && err != context.Canceled {
		logger.Printf("city stopped: %v", err)
	}
	writeSnap()
	_ = reg.Remove(c.ID())
}

// loadState picks the starting state: an explicit snapshot, a JSON import, or
// the latest snapshot in the city dir. A nil snapshot means a fresh city.
func loadState(snapPath, importJSON string, loadLatest bool, dataDir, cityID string) (*snapshot.SnapshotV1, string, error) {
	if p := strings.TrimSpace(snapPath); p != "" {
		s, err := snapshot.ReadSnapshot(p)
		if err != nil {
			return nil, "", err
		}
		return &s, filepath.Base(p), nil
	}
	if p := strings.TrimSpace(importJSON); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, "", err
		}
		s, err := snapshot.DecodeJSON(raw)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", p, err)
		}
		s.Header.CityID = strings.TrimSpace(cityID)
		return &s, filepath.Base(p), nil
	}
	if loadLatest && strings.TrimSpace(cityID) != "" {
		if p := snapshot.Latest(filepath.Join(dataDir, "cities", cityID, "snapshots")); p != "" {
			s, err := snapshot.ReadSnapshot(p)
			if err != nil {
				return nil, "", err
			}
			return &s, filepath.Base(p), nil
		}
	}
	return nil, "", nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func short(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

type multiEventLogger struct {
	a      city.EventLogger
	b      *indexdb.SQLiteIndex
	logger *log.Logger
}

func (m multiEventLogger) WriteEvent(e city.Event) error {
	if m.a != nil {
		_ = m.a.WriteEvent(e)
	}
	if m.b != nil {
		_ = m.b.WriteEvent(e)
	}
	if e.Kind == city.EventDay && e.Settlement != nil && m.logger != nil {
		s := e.Settlement
		m.logger.Printf("day %d settled: balance=%.2f health=%s coins=%.2f", s.Day, s.Balance, s.Health, s.Coins)
	}
	if e.Kind == city.EventBill && e.Settlement != nil && m.logger != nil {
		m.logger.Printf("day %d energy bill: %.2f", e.Settlement.Day, e.Settlement.Bill)
	}
	return nil
}

type multiAuditLogger struct {
	a city.AuditLogger
	b *indexdb.SQLiteIndex
}

func (m multiAuditLogger) WriteAudit(e city.AuditEntry) error {
	if m.a != nil {
		_ = m.a.WriteAudit(e)
	}
	if m.b != nil {
		_ = m.b.WriteAudit(e)
	}
	return nil
}
