package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	persistlog "github.com/d0mkaaa/neighborville-sub003/internal/persistence/log"
	"github.com/d0mkaaa/neighborville-sub003/internal/persistence/snapshot"
	"github.com/d0mkaaa/neighborville-sub003/internal/sim/city"
)

func main() {
	var (
		snapPath  = flag.String("snapshot", "", "path to .snap.zst (optional)")
		eventsDir = flag.String("events", "", "events dir containing events-*.jsonl.zst")
		fromDay   = flag.Int("from_day", 0, "start verifying from day (inclusive, optional)")
		toDay     = flag.Int("to_day", 0, "stop at day (inclusive, optional)")
	)
	flag.Parse()

	if *snapPath != "" {
		snap, err := snapshot.ReadSnapshot(*snapPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read snapshot:", err)
			os.Exit(1)
		}
		fmt.Printf("snapshot v%d city=%s day=%d %02d:%02d coins=%.2f level=%d buildings=%d upgrades=%d taxes=%d services=%d\n",
			snap.Header.Version, snap.Header.CityID, snap.Day, snap.GameTime, snap.GameMinutes, snap.Coins, snap.Level,
			len(snap.Buildings), len(snap.OwnedUpgrades), len(snap.TaxPolicies), len(snap.ServiceBudgets))
	}
	if *eventsDir == "" {
		if *snapPath == "" {
			fmt.Fprintln(os.Stderr, "missing -snapshot or -events")
			os.Exit(2)
		}
		return
	}

	files, err := listEventFiles(*eventsDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", *eventsDir)
		os.Exit(1)
	}

	var events []city.Event
	for _, path := range files {
		evs, err := persistlog.ReadFile[city.Event](path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read events:", err)
			os.Exit(1)
		}
		events = append(events, evs...)
	}

	sum, err := verify(events, *fromDay, *toDay)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	fmt.Printf("replay ok: hours=%d days=%d bills=%d net=%.2f final_coins=%.2f\n",
		sum.Hours, sum.Days, sum.Bills, sum.Net, sum.FinalCoins)
}

func listEventFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "events-") && strings.HasSuffix(name, ".jsonl.zst") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, filepath.Join(dir, name))
	}
	return out, nil
}

type summary struct {
	Hours      int
	Days       int
	Bills      int
	Net        float64
	FinalCoins float64
}

// verify walks the event stream and checks that hours advance one at a time,
// days only close at 06:00 and each settlement closes as opening + balance - bill.
// Coins may move between closes (purchases, grants) so only the close itself is
// checked against the books.
func verify(events []city.Event, fromDay, toDay int) (summary, error) {
	var (
		s        summary
		lastHour = -1
		lastDay  = 0
	)
	for _, e := range events {
		if toDay > 0 && e.Day > toDay {
			break
		}
		switch e.Kind {
		case city.EventHour:
			if lastHour >= 0 && e.Hour != (lastHour+1)%24 {
				return s, fmt.Errorf("day %d: hour jumped %d -> %d", e.Day, lastHour, e.Hour)
			}
			lastHour = e.Hour
			if e.Day < fromDay {
				continue
			}
			s.Hours++
		case city.EventDay:
			st := e.Settlement
			if st == nil {
				return s, fmt.Errorf("day %d: settlement missing", e.Day)
			}
			if e.Hour != 6 {
				return s, fmt.Errorf("day %d closed at hour %d", e.Day, e.Hour)
			}
			if lastDay > 0 && e.Day != lastDay+1 {
				return s, fmt.Errorf("day jumped %d -> %d", lastDay, e.Day)
			}
			lastDay = e.Day
			want := st.Opening + st.Balance - st.Bill
			if math.Abs(want-st.Coins) > 1e-6 {
				return s, fmt.Errorf("day %d: coins %.4f, want %.4f", e.Day, st.Coins, want)
			}
			if e.Day < fromDay {
				continue
			}
			s.Days++
			s.Net += st.Balance - st.Bill
			if st.Bill > 0 {
				s.Bills++
			}
			s.FinalCoins = st.Coins
		}
	}
	return s, nil
}
