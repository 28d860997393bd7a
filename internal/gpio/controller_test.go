package gpio

import (
	"errors"
	"testing"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/models"
)

func testConfig() config.GPIO {
	return config.GPIO{
		Backend:       BackendStub,
		PinPump1:      4,
		PinPump2:      14,
		PinPump3:      15,
		PinValveFresh: 17,
		PinValveHeat:  18,
		PinHeater:     27,
		PinLiftUp:     22,
		PinLiftDown:   24,
		LiftSpeedMMS:  10,
		LiftMaxMM:     1000,
	}
}

// newTestController builds a stub-backed controller with a fake clock.
func newTestController(t *testing.T) (*Controller, *time.Time) {
	t.Helper()
	now := time.Unix(1_700_000_000, 0)
	c, err := newController(testConfig(), stubFactory, BackendStub, func() time.Time { return now })
	if err != nil {
		t.Fatalf("newController: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, &now
}

func TestController_RelaySnapshotAndSet(t *testing.T) {
	c, _ := newTestController(t)
	snap := c.RelaySnapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 relays, got %d", len(snap))
	}
	for _, r := range snap {
		if r.On {
			t.Fatalf("relay %d must start off", r.Index)
		}
	}
	if snap[0].Pin != 4 || snap[2].Pin != 15 {
		t.Fatalf("unexpected pins: %+v", snap)
	}

	on, err := c.SetRelay(1, true)
	if err != nil || !on {
		t.Fatalf("SetRelay(1,true)=%v,%v", on, err)
	}
	if !c.RelaySnapshot()[1].On {
		t.Fatalf("relay 1 not reflected in snapshot")
	}

	if _, err := c.SetRelay(3, true); !errors.Is(err, ErrInvalidRelay) {
		t.Fatalf("expected ErrInvalidRelay, got %v", err)
	}
}

func TestController_AutoSwitches(t *testing.T) {
	c, _ := newTestController(t)
	st, err := c.SetAuto(models.ValveFresh, true)
	if err != nil {
		t.Fatalf("SetAuto: %v", err)
	}
	if !st.Fresh || st.Heat || !st.Configured {
		t.Fatalf("unexpected auto status: %+v", st)
	}
	if _, err := c.SetAuto("drain", true); !errors.Is(err, ErrInvalidAutoSwitch) {
		t.Fatalf("expected ErrInvalidAutoSwitch, got %v", err)
	}
}

func TestController_LiftInterlock(t *testing.T) {
	c, _ := newTestController(t)

	state, err := c.SetLift(models.LiftUp)
	if err != nil || state != models.LiftUp {
		t.Fatalf("SetLift(up)=%q,%v", state, err)
	}
	// Opposite direction while moving is rejected.
	if _, err := c.SetLift(models.LiftDown); !errors.Is(err, ErrLiftMovingUp) {
		t.Fatalf("expected ErrLiftMovingUp, got %v", err)
	}
	// Repeating the active direction stops.
	state, err = c.SetLift(models.LiftUp)
	if err != nil || state != models.LiftStop {
		t.Fatalf("repeat up should stop, got %q,%v", state, err)
	}
	// From stop, down engages.
	state, err = c.SetLift(models.LiftDown)
	if err != nil || state != models.LiftDown {
		t.Fatalf("SetLift(down)=%q,%v", state, err)
	}
	if _, err := c.SetLift("sideways"); !errors.Is(err, ErrInvalidLiftState) {
		t.Fatalf("expected ErrInvalidLiftState, got %v", err)
	}
}

func TestController_LiftEstimateAdvancesWithClock(t *testing.T) {
	c, now := newTestController(t)
	if _, err := c.SetLift(models.LiftUp); err != nil {
		t.Fatalf("SetLift: %v", err)
	}
	*now = now.Add(5 * time.Second)
	mm, pct := c.LiftEstimate()
	if mm != 50 {
		t.Fatalf("estimate=%v, want 50 after 5s at 10mm/s", mm)
	}
	if pct != 5 {
		t.Fatalf("pct=%d, want 5", pct)
	}

	// Stop holds position.
	if _, err := c.SetLift(models.LiftUp); err != nil {
		t.Fatalf("stop: %v", err)
	}
	*now = now.Add(10 * time.Second)
	mm, _ = c.LiftEstimate()
	if mm != 50 {
		t.Fatalf("estimate moved while stopped: %v", mm)
	}
}

func TestController_LiftEstimateClampsAndRestores(t *testing.T) {
	c, now := newTestController(t)
	c.SetLiftEstimateMM(5000)
	if mm, _ := c.LiftEstimate(); mm != 1000 {
		t.Fatalf("restore must clamp to max, got %v", mm)
	}
	c.SetLiftEstimateMM(990)
	if _, err := c.SetLift(models.LiftUp); err != nil {
		t.Fatalf("SetLift: %v", err)
	}
	*now = now.Add(time.Minute)
	if mm, pct := c.LiftEstimate(); mm != 1000 || pct != 100 {
		t.Fatalf("estimate must clamp at travel limit, got %v/%d", mm, pct)
	}
}

func TestController_SnapshotBlocks(t *testing.T) {
	c, _ := newTestController(t)
	if _, err := c.SetHeater(true); err != nil {
		t.Fatalf("SetHeater: %v", err)
	}
	h := c.HeaterStatus()
	if !h.Configured || !h.On {
		t.Fatalf("unexpected heater status: %+v", h)
	}
	ls := c.LiftStatus()
	if !ls.Configured || ls.State != models.LiftStop || ls.EstimatedMM == nil || ls.MaxMM == nil {
		t.Fatalf("unexpected lift status: %+v", ls)
	}
	if *ls.MaxMM != 1000 || ls.SpeedMMS != 10 {
		t.Fatalf("unexpected lift limits: %+v", ls)
	}
}
