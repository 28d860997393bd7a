package models

import "time"

// ControlEvent is one persisted control action (relay/valve/lift/heater).
type ControlEvent struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Source     string    `json:"source"` // e.g. "api"
	Target     string    `json:"target"` // e.g. "relay:0", "auto:fresh", "lift", "heater"
	PrevValue  string    `json:"prev_value"`
	NextValue  string    `json:"next_value"`
	OK         bool      `json:"ok"`
	Message    string    `json:"message,omitempty"`
}

// ProcessSample is one persisted row of process state.
type ProcessSample struct {
	TS         time.Time `json:"ts"`
	SoakTemp   *float64  `json:"soak_temp"`
	SoakPH     *float64  `json:"soak_ph"`
	SoakLevel  *float64  `json:"soak_level"`
	FreshLevel *float64  `json:"fresh_level"`
	HeatLevel  *float64  `json:"heat_level"`
	Pump1      bool      `json:"pump1"`
	Pump2      bool      `json:"pump2"`
	Pump3      bool      `json:"pump3"`
	ValveFresh bool      `json:"valve_fresh"`
	ValveHeat  bool      `json:"valve_heat"`
	LiftState  string    `json:"lift_state"`
	LiftEstMM  *float64  `json:"lift_estimated_mm"`
	HeaterOn   bool      `json:"heater_on"`
}

// SystemSample is one persisted row of host metrics.
type SystemSample struct {
	TS            time.Time `json:"ts"`
	Host          string    `json:"host"`
	GPIOBackend   string    `json:"gpio_backend"`
	CPUPercent    *float64  `json:"cpu_percent"`
	MemoryPercent *float64  `json:"memory_percent"`
	DiskPercent   *float64  `json:"disk_percent"`
	CPUTemp       *float64  `json:"cpu_temp"`
	UptimeSec     *int64    `json:"uptime_sec"`
	Load1         float64   `json:"load1"`
	Load5         float64   `json:"load5"`
	Load15        float64   `json:"load15"`
}

// RuntimeIncrement is the per-tick delta applied to a day's runtime totals.
type RuntimeIncrement struct {
	Pump1RuntimeSec    int
	Pump2RuntimeSec    int
	Pump3RuntimeSec    int
	HeaterRuntimeSec   int
	Pump1Starts        int
	Pump2Starts        int
	Pump3Starts        int
	HeaterStarts       int
	ValveFreshSwitches int
	ValveHeatSwitches  int
}

// IsZero reports whether the increment carries nothing worth persisting.
func (r RuntimeIncrement) IsZero() bool {
	return r == RuntimeIncrement{}
}

// RuntimeDay is one day's accumulated actuator totals.
type RuntimeDay struct {
	Day                string    `json:"day"` // YYYY-MM-DD
	Pump1RuntimeSec    int       `json:"pump1_runtime_sec"`
	Pump2RuntimeSec    int       `json:"pump2_runtime_sec"`
	Pump3RuntimeSec    int       `json:"pump3_runtime_sec"`
	HeaterRuntimeSec   int       `json:"heater_runtime_sec"`
	Pump1Starts        int       `json:"pump1_starts"`
	Pump2Starts        int       `json:"pump2_starts"`
	Pump3Starts        int       `json:"pump3_starts"`
	HeaterStarts       int       `json:"heater_starts"`
	ValveFreshSwitches int       `json:"valve_fresh_switches"`
	ValveHeatSwitches  int       `json:"valve_heat_switches"`
	UpdatedAt          time.Time `json:"updated_ts"`
}
