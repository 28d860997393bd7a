package models

// RelayCommand switches one pump relay.
type RelayCommand struct {
	Index int  `json:"index"`
	On    bool `json:"on"`
}

// AutoSwitchCommand switches one of the flow valves ("fresh" or "heat").
type AutoSwitchCommand struct {
	Which string `json:"which"`
	On    bool   `json:"on"`
}

// LiftCommand requests a lift direction. Only "up" and "down" are accepted;
// repeating the active direction stops the lift.
type LiftCommand struct {
	State string `json:"state"`
}

// HeaterCommand switches the heater relay.
type HeaterCommand struct {
	On bool `json:"on"`
}

// RelayResponse is the body returned by POST /api/relay.
type RelayResponse struct {
	On bool `json:"on"`
}

// AutoResponse is the body returned by POST /api/auto.
type AutoResponse struct {
	Auto AutoStatus `json:"auto"`
}

// LiftResponse is the body returned by POST /api/lift.
type LiftResponse struct {
	Configured       bool    `json:"configured"`
	State            string  `json:"state"`
	EstimatedMM      float64 `json:"estimated_mm"`
	EstimatedPercent int     `json:"estimated_percent"`
	MaxMM            float64 `json:"max_mm"`
	SpeedMMS         float64 `json:"speed_mm_s"`
}

// HeaterResponse is the body returned by POST /api/heater.
type HeaterResponse struct {
	Configured bool `json:"configured"`
	On         bool `json:"on"`
}
