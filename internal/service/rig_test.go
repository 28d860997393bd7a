package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

type fakeEventRepo struct {
	appended []models.ControlEvent
	err      error
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.ControlEvent) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, e)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, limit int) ([]models.ControlEvent, error) {
	return f.appended, nil
}

func (f *fakeEventRepo) PruneBefore(ctx context.Context, cutoff time.Time) error { return nil }

func TestRigSetRelay_RecordsEvent(t *testing.T) {
	rig := newFakeRig()
	events := &fakeEventRepo{}
	svc := NewRigService(rig, events)

	resp, err := svc.SetRelay(context.Background(), models.RelayCommand{Index: 0, On: true})
	if err != nil {
		t.Fatalf("SetRelay: %v", err)
	}
	if !resp.On {
		t.Fatalf("resp=%+v", resp)
	}
	if len(events.appended) != 1 {
		t.Fatalf("want 1 event, got %d", len(events.appended))
	}
	e := events.appended[0]
	if e.Target != "relay:0" || e.PrevValue != "false" || e.NextValue != "true" || !e.OK {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestRigSetRelay_InvalidIndexNoEvent(t *testing.T) {
	rig := newFakeRig()
	rig.relayErr = errors.New("invalid relay index")
	events := &fakeEventRepo{}
	svc := NewRigService(rig, events)

	if _, err := svc.SetRelay(context.Background(), models.RelayCommand{Index: 7, On: true}); err == nil {
		t.Fatal("expected error")
	}
	if len(events.appended) != 0 {
		t.Fatalf("rejected command must not log an event: %+v", events.appended)
	}
}

func TestRigSetAuto_RecordsWhichValve(t *testing.T) {
	rig := newFakeRig()
	events := &fakeEventRepo{}
	svc := NewRigService(rig, events)

	resp, err := svc.SetAuto(context.Background(), models.AutoSwitchCommand{Which: models.ValveHeat, On: true})
	if err != nil {
		t.Fatalf("SetAuto: %v", err)
	}
	if !resp.Auto.Heat || resp.Auto.Fresh {
		t.Fatalf("resp=%+v", resp)
	}
	e := events.appended[0]
	if e.Target != "auto:heat" || e.PrevValue != "false" || e.NextValue != "true" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestRigSetLift_Success(t *testing.T) {
	rig := newFakeRig()
	events := &fakeEventRepo{}
	svc := NewRigService(rig, events)

	resp, err := svc.SetLift(context.Background(), models.LiftCommand{State: models.LiftUp})
	if err != nil {
		t.Fatalf("SetLift: %v", err)
	}
	if resp.State != models.LiftUp || !resp.Configured {
		t.Fatalf("resp=%+v", resp)
	}
	if resp.EstimatedMM != 120.0 || resp.MaxMM != 1000 {
		t.Fatalf("estimate in resp: %+v", resp)
	}
	e := events.appended[0]
	if e.Target != "lift" || e.PrevValue != "stop" || e.NextValue != "up" || !e.OK {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestRigSetLift_InterlockRecordsFailure(t *testing.T) {
	rig := newFakeRig()
	rig.lift.State = models.LiftDown
	rig.liftErr = errors.New("lift is moving down")
	events := &fakeEventRepo{}
	svc := NewRigService(rig, events)

	if _, err := svc.SetLift(context.Background(), models.LiftCommand{State: models.LiftUp}); err == nil {
		t.Fatal("expected interlock error")
	}
	if len(events.appended) != 1 {
		t.Fatalf("want 1 event, got %d", len(events.appended))
	}
	e := events.appended[0]
	if e.OK || e.Message != "lift is moving down" {
		t.Fatalf("failure must be logged: %+v", e)
	}
	if e.PrevValue != "down" || e.NextValue != "down" {
		t.Fatalf("state must not change on rejection: %+v", e)
	}
}

func TestRigSetHeater_EventBestEffort(t *testing.T) {
	rig := newFakeRig()
	events := &fakeEventRepo{err: errors.New("db gone")}
	svc := NewRigService(rig, events)

	// Actuator change still succeeds when the event insert fails.
	resp, err := svc.SetHeater(context.Background(), models.HeaterCommand{On: true})
	if err != nil {
		t.Fatalf("SetHeater: %v", err)
	}
	if !resp.On || !resp.Configured {
		t.Fatalf("resp=%+v", resp)
	}
}
