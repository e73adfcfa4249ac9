package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/snapshot"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
)

type CycleArchiveMeta struct {
	Cycle         int     `json:"cycle"`
	CityID        string  `json:"city_id"`
	Day           int     `json:"day"`
	Coins         float64 `json:"coins"`
	Snapshot      string  `json:"snapshot"`
	CreatedAt     string  `json:"created_at"`
	BillEveryDays int     `json:"bill_every_days"`
}

// IsCycleEnd reports whether snap was taken right after an energy bill: at the
// day start settlement with the bill countdown just reset.
func IsCycleEnd(snap snapshot.SnapshotV1, billEveryDays int) bool {
	return billEveryDays > 0 &&
		snap.Day > 1 &&
		snap.GameTime == clock.DayStartHour &&
		snap.GameMinutes == 0 &&
		snap.DaysUntilBill == billEveryDays
}

// ArchiveCycleSnapshot copies a billing-cycle-end snapshot into
// `cityDir/archives/cycle_<NNN>/` next to a meta.json. It returns
// (cycle, archivedPath, archived=true) when snap closes a cycle.
//
// Cycles are numbered by the bills already archived for the city, so an
// imported city whose bills fall off the day 1+k*N grid still starts at 1.
// Archiving the same close day again reuses its cycle.
func ArchiveCycleSnapshot(cityDir, snapshotPath string, snap snapshot.SnapshotV1, billEveryDays int) (cycle int, archivedPath string, archived bool, err error) {
	if !IsCycleEnd(snap, billEveryDays) {
		return 0, "", false, nil
	}
	cycle, err = cycleFor(filepath.Join(cityDir, "archives"), snap.Day)
	if err != nil {
		return 0, "", false, err
	}

	archiveDir := filepath.Join(cityDir, "archives", fmt.Sprintf("cycle_%03d", cycle))
	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return 0, "", false, err
	}

	dst := filepath.Join(archiveDir, filepath.Base(snapshotPath))
	if err := copyFile(snapshotPath, dst); err != nil {
		return 0, "", false, err
	}

	meta := CycleArchiveMeta{
		Cycle:         cycle,
		CityID:        snap.Header.CityID,
		Day:           snap.Day,
		Coins:         snap.Coins,
		Snapshot:      filepath.Base(dst),
		CreatedAt:     time.Now().UTC().Format(time.RFC3339Nano),
		BillEveryDays: billEveryDays,
	}
	if b, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(filepath.Join(archiveDir, "meta.json"), b, 0o644)
	}

	return cycle, dst, true, nil
}

// cycleFor returns the cycle already archived for day, or one past the highest
// archived cycle.
func cycleFor(archivesDir string, day int) (int, error) {
	ents, err := os.ReadDir(archivesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	last := 0
	for _, e := range ents {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "cycle_") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(archivesDir, e.Name(), "meta.json"))
		if err != nil {
			continue
		}
		var meta CycleArchiveMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			continue
		}
		if meta.Day == day {
			return meta.Cycle, nil
		}
		if meta.Cycle > last {
			last = meta.Cycle
		}
	}
	return last + 1, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
