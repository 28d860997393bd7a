package console

import (
	"fmt"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

// Capacity of the derived-event ring.
const defaultEventMax = 80

// Relay indices the rig actually wires. Snapshots may omit a relay; an
// omitted relay produces no events.
var knownRelays = []int{0, 1, 2}

// EventItem is one derived event, newest first in the feed.
type EventItem struct {
	TS    time.Time `json:"ts"`
	Level string    `json:"level"`
	Text  string    `json:"text"`
}

// RuntimeStats carries the cumulative counters derived from polling. They are
// never reset for the lifetime of a session.
type RuntimeStats struct {
	PumpRuntimeSec map[int]int    `json:"pump_runtime_sec"`
	PumpStarts     map[int]int    `json:"pump_starts"`
	ValveSwitches  map[string]int `json:"valve_switches"`
}

func newRuntimeStats() RuntimeStats {
	return RuntimeStats{
		PumpRuntimeSec: make(map[int]int),
		PumpStarts:     make(map[int]int),
		ValveSwitches:  map[string]int{models.ValveFresh: 0, models.ValveHeat: 0},
	}
}

// clone returns a copy safe to hand out across the session boundary.
func (s RuntimeStats) clone() RuntimeStats {
	out := newRuntimeStats()
	for k, v := range s.PumpRuntimeSec {
		out.PumpRuntimeSec[k] = v
	}
	for k, v := range s.PumpStarts {
		out.PumpStarts[k] = v
	}
	for k, v := range s.ValveSwitches {
		out.ValveSwitches[k] = v
	}
	return out
}

// Deriver turns consecutive snapshots into discrete events and keeps the
// cumulative runtime counters.
type Deriver struct {
	stats RuntimeStats
}

// NewDeriver returns a deriver with zeroed counters.
func NewDeriver() *Deriver {
	return &Deriver{stats: newRuntimeStats()}
}

// Stats returns a copy of the cumulative counters.
func (d *Deriver) Stats() RuntimeStats {
	return d.stats.clone()
}

// Diff compares the previous successful snapshot against the newest one and
// returns the discrete events implied by the transition. A nil prev is the
// first snapshot and yields no events; it only establishes the baseline.
func (d *Deriver) Diff(prev *models.StatusSnapshot, next models.StatusSnapshot, now time.Time) []EventItem {
	if prev == nil {
		return nil
	}
	var out []EventItem

	for _, idx := range knownRelays {
		prevRelay, prevOK := prev.Relay(idx)
		nextRelay, nextOK := next.Relay(idx)
		if !prevOK || !nextOK || prevRelay.On == nextRelay.On {
			continue
		}
		out = append(out, EventItem{now, LevelInfo, fmt.Sprintf("pump %d %s", idx+1, onOff(nextRelay.On))})
		if nextRelay.On {
			d.stats.PumpStarts[idx]++
		}
	}

	if prev.Auto.Fresh != next.Auto.Fresh {
		out = append(out, EventItem{now, LevelInfo, fmt.Sprintf("fresh valve %s", onOff(next.Auto.Fresh))})
		d.stats.ValveSwitches[models.ValveFresh]++
	}
	if prev.Auto.Heat != next.Auto.Heat {
		out = append(out, EventItem{now, LevelInfo, fmt.Sprintf("heat valve %s", onOff(next.Auto.Heat))})
		d.stats.ValveSwitches[models.ValveHeat]++
	}

	if prev.Lift.State != next.Lift.State {
		out = append(out, EventItem{now, LevelWarn, fmt.Sprintf("lift state changed: %s -> %s", prev.Lift.State, next.Lift.State)})
	}

	if prev.Heater.On != next.Heater.On {
		out = append(out, EventItem{now, LevelInfo, fmt.Sprintf("heater %s", onOff(next.Heater.On))})
	}

	return out
}

// OnlineTransition reports the event for a connectivity flip, or nil when the
// online flag did not change. This is driven by the status client's flag, not
// by snapshot contents.
func (d *Deriver) OnlineTransition(prevOnline, online bool, now time.Time) *EventItem {
	if prevOnline == online {
		return nil
	}
	if online {
		return &EventItem{TS: now, Level: LevelInfo, Text: "device back online"}
	}
	return &EventItem{TS: now, Level: LevelCritical, Text: "device offline"}
}

// TickRuntime adds one second of runtime for every relay currently reported
// on. Called from a dedicated 1 s ticker so runtime accuracy does not depend
// on the poll cadence. Offline ticks accumulate nothing.
func (d *Deriver) TickRuntime(snap *models.StatusSnapshot, online bool) {
	if snap == nil || !online {
		return
	}
	for _, r := range snap.Relays {
		if r.On {
			d.stats.PumpRuntimeSec[r.Index]++
		}
	}
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// EventFeed is an append-only capped ring of derived events, newest first.
type EventFeed struct {
	max   int
	items []EventItem
}

// NewEventFeed returns a feed capped at max entries (default 80 when max<=0).
func NewEventFeed(max int) *EventFeed {
	if max <= 0 {
		max = defaultEventMax
	}
	return &EventFeed{max: max}
}

// Push prepends items so the newest event is first, evicting the oldest
// entries beyond the cap.
func (f *EventFeed) Push(items ...EventItem) {
	for _, it := range items {
		f.items = append([]EventItem{it}, f.items...)
	}
	if len(f.items) > f.max {
		f.items = f.items[:f.max]
	}
}

// Items returns a copy of the feed, newest first.
func (f *EventFeed) Items() []EventItem {
	out := make([]EventItem, len(f.items))
	copy(out, f.items)
	return out
}

// Len returns the number of buffered events.
func (f *EventFeed) Len() int { return len(f.items) }
