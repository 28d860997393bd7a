package console

import (
	"math"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

// LiftEstimator dead-reckons the lift position between polls. The physical
// actuator has no continuous position feedback, only a commanded direction
// and a nominal speed, so the displayed position is an open-loop estimate
// corrected against the backend value on every successful sync.
type LiftEstimator struct {
	mm    float64
	maxMM float64
	speed float64 // mm per second
	state string
}

// NewLiftEstimator returns an estimator at position 0 with the given nominal
// speed and travel limit.
func NewLiftEstimator(speedMMS, maxMM float64) *LiftEstimator {
	if speedMMS <= 0 {
		speedMMS = 0.1
	}
	if maxMM <= 0 {
		maxMM = 1
	}
	return &LiftEstimator{speed: speedMMS, maxMM: maxMM, state: models.LiftStop}
}

// Tick advances the estimate by one tick of the given duration according to
// the last known commanded direction. The estimate never leaves [0, max].
func (e *LiftEstimator) Tick(dt time.Duration) {
	step := e.speed * dt.Seconds()
	switch e.state {
	case models.LiftUp:
		e.mm = math.Min(e.maxMM, e.mm+step)
	case models.LiftDown:
		e.mm = math.Max(0, e.mm-step)
	}
}

// Reconcile overwrites the local estimate with authoritative backend values.
// A finite estimated_mm replaces the dead-reckoned position (clamped); a
// positive max_mm replaces the travel limit; a positive speed replaces the
// nominal speed. The commanded direction always follows the backend.
func (e *LiftEstimator) Reconcile(st models.LiftStatus) {
	if st.MaxMM != nil && isFinite(*st.MaxMM) && *st.MaxMM > 0 {
		e.maxMM = *st.MaxMM
	}
	if st.SpeedMMS > 0 && isFinite(st.SpeedMMS) {
		e.speed = st.SpeedMMS
	}
	if st.EstimatedMM != nil && isFinite(*st.EstimatedMM) {
		e.mm = clampFloat(*st.EstimatedMM, 0, e.maxMM)
	}
	if st.State != "" {
		e.state = st.State
	}
}

// SetState updates the commanded direction used by subsequent ticks.
func (e *LiftEstimator) SetState(state string) {
	e.state = state
}

// EstimateMM returns the current position estimate in millimetres.
func (e *LiftEstimator) EstimateMM() float64 { return e.mm }

// Percent returns the estimate as a rounded percentage of max travel.
func (e *LiftEstimator) Percent() int {
	if e.maxMM <= 0 {
		return 0
	}
	pct := int(math.Round(e.mm / e.maxMM * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
