package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/d0mkaaa/neighborville-sub003/internal/sim/clock"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/services"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/economy/tax"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/model"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/weather"
)

const Version = 1

type Header struct {
	Version int    `json:"version"`
	CityID  string `json:"city_id"`
	Day     int    `json:"day"`
	Hour    int    `json:"hour"`
}

// SnapshotV1 is the city state exchanged with the persistence layer.
type SnapshotV1 struct {
	Header Header `json:"header"`

	Day             int             `json:"day"`
	GameTime        int             `json:"gameTime"`
	GameMinutes     int             `json:"gameMinutes"`
	TimeOfDay       clock.TimeOfDay `json:"timeOfDay"`
	Paused          bool            `json:"paused,omitempty"`
	Weather         weather.State   `json:"weather"`
	WeatherForecast []weather.State `json:"weatherForecast"`

	TaxPolicies    []tax.Policy      `json:"taxPolicies"`
	ServiceBudgets []services.Budget `json:"serviceBudgets"`
	OwnedUpgrades  []string          `json:"ownedUpgrades"`
	Buildings      []model.Building  `json:"buildings"`

	Coins         float64 `json:"coins"`
	Level         int     `json:"level"`
	EnergyRate    float64 `json:"energyRate"`
	DaysUntilBill int     `json:"daysUntilBill"`
}

// FileName is the snapshot file name for a day and hour; it sorts chronologically.
func FileName(day, hour int) string {
	return fmt.Sprintf("%06d-%02d.snap.zst", day, hour)
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	defer enc.Close()

	bw := bufio.NewWriterSize(enc, 64*1024)
	defer bw.Flush()

	if snap.Header.Version == 0 {
		snap.Header.Version = Version
	}
	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	return nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// Header line is for humans and tooling; gob carries it too.
	_, _ = br.ReadBytes('\n')

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("snapshot version %d unsupported", snap.Header.Version)
	}
	return snap, nil
}

// Latest returns the newest snapshot file in dir, or "" when there is none.
func Latest(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var best string
	var bestKey int
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		day, hour, ok := strings.Cut(strings.TrimSuffix(name, ".snap.zst"), "-")
		if !ok {
			continue
		}
		d, err1 := strconv.Atoi(day)
		h, err2 := strconv.Atoi(hour)
		if err1 != nil || err2 != nil {
			continue
		}
		key := d*24 + h
		if best == "" || key > bestKey {
			bestKey = key
			best = filepath.Join(dir, name)
		}
	}
	return best
}
