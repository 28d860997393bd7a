package console

import (
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

// Capacity of the in-memory history ring. Eviction is by count only, so
// memory stays bounded regardless of poll rate; time filtering happens at
// read time.
const defaultHistoryMax = 4000

// TankSample is one tank's readings at a point in time. Level is already
// normalized to a percentage at recording time.
type TankSample struct {
	Temp  *float64 `json:"temp"`
	PH    *float64 `json:"ph"`
	Level *float64 `json:"level"`
}

// HistorySample is one poll cycle's readings across all tanks.
type HistorySample struct {
	TS    time.Time             `json:"ts"`
	Tanks map[string]TankSample `json:"values"`
}

// HistoryRecorder keeps a FIFO ring of sensor samples for charting.
type HistoryRecorder struct {
	max     int
	samples []HistorySample
}

// NewHistoryRecorder returns a recorder capped at max samples (default 4000
// when max<=0).
func NewHistoryRecorder(max int) *HistoryRecorder {
	if max <= 0 {
		max = defaultHistoryMax
	}
	return &HistoryRecorder{max: max}
}

// Record appends one sample built from the snapshot's tank readings, evicting
// the oldest sample once the cap is reached.
func (r *HistoryRecorder) Record(snap models.StatusSnapshot, now time.Time) {
	sample := HistorySample{TS: now, Tanks: make(map[string]TankSample, len(snap.Tank))}
	for key, reading := range snap.Tank {
		ts := TankSample{Temp: reading.Temp, PH: reading.PH}
		if v, ok := knownValue(reading.Level); ok {
			pct := NormalizeLevelPct(v)
			ts.Level = &pct
		}
		sample.Tanks[key] = ts
	}
	r.samples = append(r.samples, sample)
	if len(r.samples) > r.max {
		r.samples = r.samples[len(r.samples)-r.max:]
	}
}

// Len returns the number of buffered samples.
func (r *HistoryRecorder) Len() int { return len(r.samples) }

// Oldest returns the oldest retained sample.
func (r *HistoryRecorder) Oldest() (HistorySample, bool) {
	if len(r.samples) == 0 {
		return HistorySample{}, false
	}
	return r.samples[0], true
}

// Window returns the samples within the trailing window ending at now,
// oldest first.
func (r *HistoryRecorder) Window(d time.Duration, now time.Time) []HistorySample {
	cutoff := now.Add(-d)
	// Samples are appended in time order; find the first inside the window.
	i := len(r.samples)
	for i > 0 && !r.samples[i-1].TS.Before(cutoff) {
		i--
	}
	out := make([]HistorySample, len(r.samples)-i)
	copy(out, r.samples[i:])
	return out
}
