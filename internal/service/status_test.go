package service

import (
	"testing"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/models"
)

// fakeRig is an in-memory RigController shared by the service tests.
type fakeRig struct {
	relays  []models.RelayStatus
	auto    models.AutoStatus
	lift    models.LiftStatus
	heater  models.HeaterStatus
	liftMM  float64
	liftPct int

	relayErr error
	liftErr  error

	restoredMM float64
}

func newFakeRig() *fakeRig {
	mm := 120.0
	max := 1000.0
	return &fakeRig{
		relays: []models.RelayStatus{
			{Index: 0, Pin: 4, On: false},
			{Index: 1, Pin: 14, On: false},
			{Index: 2, Pin: 15, On: false},
		},
		auto:    models.AutoStatus{Configured: true},
		lift:    models.LiftStatus{Configured: true, State: models.LiftStop, EstimatedMM: &mm, EstimatedPercent: 12, MaxMM: &max, SpeedMMS: 10},
		heater:  models.HeaterStatus{Configured: true},
		liftMM:  120.0,
		liftPct: 12,
	}
}

func (f *fakeRig) Backend() string                          { return "stub" }
func (f *fakeRig) RelaySnapshot() []models.RelayStatus      { return append([]models.RelayStatus(nil), f.relays...) }
func (f *fakeRig) AutoStatus() models.AutoStatus            { return f.auto }
func (f *fakeRig) LiftStatus() models.LiftStatus            { return f.lift }
func (f *fakeRig) LiftEstimate() (float64, int)             { return f.liftMM, f.liftPct }
func (f *fakeRig) HeaterStatus() models.HeaterStatus        { return f.heater }
func (f *fakeRig) SetLiftEstimateMM(mm float64)             { f.restoredMM = mm }

func (f *fakeRig) SetRelay(index int, on bool) (bool, error) {
	if f.relayErr != nil {
		return false, f.relayErr
	}
	f.relays[index].On = on
	return on, nil
}

func (f *fakeRig) SetAuto(which string, on bool) (models.AutoStatus, error) {
	switch which {
	case models.ValveFresh:
		f.auto.Fresh = on
	case models.ValveHeat:
		f.auto.Heat = on
	}
	return f.auto, nil
}

func (f *fakeRig) SetLift(state string) (string, error) {
	if f.liftErr != nil {
		return f.lift.State, f.liftErr
	}
	f.lift.State = state
	return state, nil
}

func (f *fakeRig) SetHeater(on bool) (bool, error) {
	f.heater.On = on
	return on, nil
}

type fakeProbe struct {
	temp, ph *float64
}

func (f *fakeProbe) Reading() (*float64, *float64) { return f.temp, f.ph }

type fakeHost struct{}

func (fakeHost) Sample(backend string) models.SystemStatus {
	return models.SystemStatus{Host: "rig-01", GPIOBackend: backend}
}

func testTanks() config.TankDefaults {
	return config.TankDefaults{
		Levels: map[string]float64{"soak": 72, "fresh": 58, "heat": 46},
		Temps:  map[string]float64{"soak": 32.5, "fresh": 22.0, "heat": 45.0},
		PHs:    map[string]float64{"soak": 6.8, "fresh": 7.2, "heat": 6.5},
	}
}

func TestStatusSnapshot_LiveSoakReading(t *testing.T) {
	temp := 31.2
	ph := 6.95
	svc := NewStatusService(newFakeRig(), &fakeProbe{temp: &temp, ph: &ph}, fakeHost{}, testTanks())

	snap := svc.Snapshot()
	soak := snap.Tank[models.TankSoak]
	if soak.Temp == nil || *soak.Temp != 31.2 {
		t.Fatalf("soak temp: %v", soak.Temp)
	}
	if soak.PH == nil || *soak.PH != 6.95 {
		t.Fatalf("soak ph: %v", soak.PH)
	}
	if soak.Level == nil || *soak.Level != 72 {
		t.Fatalf("soak level: %v", soak.Level)
	}
	if len(soak.Color) != 3 {
		t.Fatalf("soak color: %v", soak.Color)
	}
	if snap.System.Host != "rig-01" || snap.System.GPIOBackend != "stub" {
		t.Fatalf("system block: %+v", snap.System)
	}
}

func TestStatusSnapshot_StaleProbeKeepsNilsButColors(t *testing.T) {
	svc := NewStatusService(newFakeRig(), &fakeProbe{}, fakeHost{}, testTanks())

	snap := svc.Snapshot()
	soak := snap.Tank[models.TankSoak]
	if soak.Temp != nil || soak.PH != nil {
		t.Fatalf("stale probe must report unknown: %+v", soak)
	}
	// Color still renders from the configured defaults.
	if len(soak.Color) != 3 {
		t.Fatalf("soak color missing: %v", soak.Color)
	}
}

func TestStatusSnapshot_DefaultTanks(t *testing.T) {
	svc := NewStatusService(newFakeRig(), &fakeProbe{}, fakeHost{}, testTanks())

	snap := svc.Snapshot()
	fresh := snap.Tank[models.TankFresh]
	if fresh.Temp == nil || *fresh.Temp != 22.0 {
		t.Fatalf("fresh temp: %v", fresh.Temp)
	}
	if fresh.PH == nil || *fresh.PH != 7.2 {
		t.Fatalf("fresh ph: %v", fresh.PH)
	}
	heat := snap.Tank[models.TankHeat]
	if heat.Level == nil || *heat.Level != 46 {
		t.Fatalf("heat level: %v", heat.Level)
	}
	if len(snap.Relays) != 3 {
		t.Fatalf("relays: %+v", snap.Relays)
	}
}
