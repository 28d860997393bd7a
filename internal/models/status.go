package models

// Tank keys used across the rig. The soak tank carries the live pH probe;
// fresh and heat report configured defaults until instrumented.
const (
	TankSoak  = "soak"
	TankFresh = "fresh"
	TankHeat  = "heat"
)

// Lift states as reported by the backend.
const (
	LiftUp   = "up"
	LiftDown = "down"
	LiftStop = "stop"
)

// Valve (auto-switch) keys.
const (
	ValveFresh = "fresh"
	ValveHeat  = "heat"
)

// RelayStatus is the state of one pump relay.
type RelayStatus struct {
	Index int  `json:"index"`
	Pin   int  `json:"pin"`
	On    bool `json:"on"`
}

// AutoStatus reports both flow valves. Configured=false means the valve
// capability is absent on this rig, not merely switched off.
type AutoStatus struct {
	Fresh      bool `json:"fresh"`
	Heat       bool `json:"heat"`
	Configured bool `json:"configured"`
}

// LiftStatus reports the lift direction and the backend's own open-loop
// position estimate. EstimatedMM and MaxMM are pointers because an
// unconfigured lift reports neither.
type LiftStatus struct {
	Configured       bool     `json:"configured"`
	State            string   `json:"state"`
	EstimatedMM      *float64 `json:"estimated_mm,omitempty"`
	EstimatedPercent int      `json:"estimated_percent,omitempty"`
	MaxMM            *float64 `json:"max_mm,omitempty"`
	SpeedMMS         float64  `json:"speed_mm_s,omitempty"`
}

// HeaterStatus reports the heater relay.
type HeaterStatus struct {
	Configured bool `json:"configured"`
	On         bool `json:"on"`
}

// TankReading holds one tank's sensor values. Nil means unknown; consumers
// must never treat a missing reading as zero. Level may arrive as a fraction
// (<=1) or a percentage (>1).
type TankReading struct {
	Temp  *float64 `json:"temp"`
	PH    *float64 `json:"ph"`
	Level *float64 `json:"level"`
	Color []int    `json:"color,omitempty"` // [r,g,b]
}

// SystemStatus is host-level info. Display only; never drives control logic.
type SystemStatus struct {
	Host          string   `json:"host"`
	GPIOBackend   string   `json:"gpio_backend"`
	CPUPercent    *float64 `json:"cpu_percent"`
	MemoryPercent *float64 `json:"memory_percent"`
	DiskPercent   *float64 `json:"disk_percent"`
	CPUTemp       *float64 `json:"cpu_temp"`
	UptimeSec     *int64   `json:"uptime_sec"`
	Load1         float64  `json:"load1"`
	Load5         float64  `json:"load5"`
	Load15        float64  `json:"load15"`
}

// StatusSnapshot is one complete status response from the backend. It is
// immutable once received and replaced wholesale on every poll.
type StatusSnapshot struct {
	Relays []RelayStatus          `json:"relays"`
	Auto   AutoStatus             `json:"auto"`
	Lift   LiftStatus             `json:"lift"`
	Heater HeaterStatus           `json:"heater"`
	Tank   map[string]TankReading `json:"tank"`
	System SystemStatus           `json:"system"`
}

// Relay returns the relay with the given index, or false when absent.
func (s StatusSnapshot) Relay(index int) (RelayStatus, bool) {
	for _, r := range s.Relays {
		if r.Index == index {
			return r, true
		}
	}
	return RelayStatus{}, false
}

// RelayOn reports whether the relay with the given index is on. Unknown
// relays count as off for actuator bookkeeping (not for alarm readings).
func (s StatusSnapshot) RelayOn(index int) bool {
	r, ok := s.Relay(index)
	return ok && r.On
}

// Float64Ptr is a convenience for building snapshots in services and tests.
func Float64Ptr(v float64) *float64 { return &v }
