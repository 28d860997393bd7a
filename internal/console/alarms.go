package console

import (
	"fmt"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

// Severity levels shared by alarms and derived events.
const (
	LevelInfo     = "info"
	LevelWarn     = "warn"
	LevelCritical = "critical"
)

// Alarm thresholds. Readings that are missing or non-finite never trigger a
// rule; unknown is not a boundary violation.
const (
	tempHighC   = 55.0
	tempLowC    = 5.0
	phHigh      = 8.5
	phLow       = 6.0
	levelLowPct = 15.0

	maxAlarms = 10
)

// AlarmItem is one entry of the ranked alarm list.
type AlarmItem struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// Operator-facing tank labels.
var tankLabels = map[string]string{
	models.TankSoak:  "浸泡桶",
	models.TankFresh: "清水桶",
	models.TankHeat:  "加热桶",
}

// Tanks are always evaluated in this order so the alarm list is stable.
var tankOrder = []string{models.TankSoak, models.TankFresh, models.TankHeat}

// NormalizeLevelPct expresses a level reading as a percentage. Values above 1
// are already percentages; values at or below 1 are fractions. Idempotent on
// the percentage branch.
func NormalizeLevelPct(v float64) float64 {
	if v > 1 {
		return v
	}
	return v * 100
}

// EvaluateAlarms derives the ranked alarm list from the given snapshot. It is
// a pure function of the arguments: no memory of prior alarms. A communication
// loss entry always ranks first; if nothing fires, a single "normal operation"
// entry is returned. The result is capped at 10 entries.
func EvaluateAlarms(snap models.StatusSnapshot, online bool) []AlarmItem {
	var out []AlarmItem
	if !online {
		out = append(out, AlarmItem{Level: LevelCritical, Text: "communication lost"})
	}

	for _, key := range tankOrder {
		reading, ok := snap.Tank[key]
		if !ok {
			continue
		}
		out = append(out, evaluateTank(tankLabels[key], reading)...)
	}

	// Pump 3 feeds both valves; with both closed the flow has nowhere to go.
	// Assumes pump 3 is the only path to the valves.
	if snap.RelayOn(2) && snap.Auto.Configured && !snap.Auto.Fresh && !snap.Auto.Heat {
		out = append(out, AlarmItem{
			Level: LevelWarn,
			Text:  "state conflict: pump 3 on but all valves closed",
		})
	}

	if len(out) == 0 {
		out = append(out, AlarmItem{Level: LevelInfo, Text: "normal operation"})
	}
	if len(out) > maxAlarms {
		out = out[:maxAlarms]
	}
	return out
}

func evaluateTank(label string, r models.TankReading) []AlarmItem {
	var out []AlarmItem
	if v, ok := knownValue(r.Temp); ok {
		if v > tempHighC {
			out = append(out, AlarmItem{LevelCritical, fmt.Sprintf("%s high temperature: %.1f°C", label, v)})
		} else if v < tempLowC {
			out = append(out, AlarmItem{LevelWarn, fmt.Sprintf("%s low temperature: %.1f°C", label, v)})
		}
	}
	if v, ok := knownValue(r.PH); ok {
		if v > phHigh {
			out = append(out, AlarmItem{LevelWarn, fmt.Sprintf("%s pH high: %.2f", label, v)})
		} else if v < phLow {
			out = append(out, AlarmItem{LevelWarn, fmt.Sprintf("%s pH low: %.2f", label, v)})
		}
	}
	if v, ok := knownValue(r.Level); ok {
		if pct := NormalizeLevelPct(v); pct < levelLowPct {
			out = append(out, AlarmItem{LevelCritical, fmt.Sprintf("%s low level: %.0f%%", label, pct)})
		}
	}
	return out
}

// knownValue unwraps an optional reading, rejecting non-finite values.
func knownValue(p *float64) (float64, bool) {
	if p == nil || !isFinite(*p) {
		return 0, false
	}
	return *p, true
}

// ActiveAlarmCount counts the non-info entries of an alarm list.
func ActiveAlarmCount(items []AlarmItem) int {
	n := 0
	for _, it := range items {
		if it.Level != LevelInfo {
			n++
		}
	}
	return n
}
