package service

import (
	"context"
	"testing"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/repository"
)

type fakeSampleRepo struct {
	process []models.ProcessSample
	system  []models.SystemSample
	pruned  []time.Time
}

func (f *fakeSampleRepo) InsertProcess(ctx context.Context, s models.ProcessSample) error {
	f.process = append(f.process, s)
	return nil
}

func (f *fakeSampleRepo) InsertSystem(ctx context.Context, s models.SystemSample) error {
	f.system = append(f.system, s)
	return nil
}

func (f *fakeSampleRepo) ListProcess(ctx context.Context, since time.Time, limit int) ([]models.ProcessSample, error) {
	return f.process, nil
}

func (f *fakeSampleRepo) ListSystem(ctx context.Context, since time.Time, limit int) ([]models.SystemSample, error) {
	return f.system, nil
}

func (f *fakeSampleRepo) PruneBefore(ctx context.Context, cutoff time.Time) error {
	f.pruned = append(f.pruned, cutoff)
	return nil
}

type fakeRuntimeRepo struct {
	applied []appliedInc
	days    []models.RuntimeDay
	pruned  []string
}

type appliedInc struct {
	day string
	inc models.RuntimeIncrement
}

func (f *fakeRuntimeRepo) Apply(ctx context.Context, day string, inc models.RuntimeIncrement, updatedAt time.Time) error {
	f.applied = append(f.applied, appliedInc{day: day, inc: inc})
	return nil
}

func (f *fakeRuntimeRepo) ListDays(ctx context.Context, days int) ([]models.RuntimeDay, error) {
	return f.days, nil
}

func (f *fakeRuntimeRepo) PruneBefore(ctx context.Context, cutoffDay string) error {
	f.pruned = append(f.pruned, cutoffDay)
	return nil
}

type fakeKVRepo struct {
	values map[string]string
}

func (f *fakeKVRepo) Set(ctx context.Context, key, value string) error {
	if f.values == nil {
		f.values = map[string]string{}
	}
	f.values[key] = value
	return nil
}

func (f *fakeKVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := f.values[key]
	return v, ok, nil
}

type fakeStatus struct {
	snap models.StatusSnapshot
}

func (f *fakeStatus) Snapshot() models.StatusSnapshot { return f.snap }

func testSnapshot() models.StatusSnapshot {
	mm := 120.0
	temp := 32.5
	ph := 6.8
	level := 72.0
	return models.StatusSnapshot{
		Relays: []models.RelayStatus{
			{Index: 0, On: true},
			{Index: 1, On: false},
			{Index: 2, On: false},
		},
		Auto:   models.AutoStatus{Fresh: true, Configured: true},
		Lift:   models.LiftStatus{Configured: true, State: "stop", EstimatedMM: &mm},
		Heater: models.HeaterStatus{Configured: true, On: true},
		Tank: map[string]models.TankReading{
			models.TankSoak: {Temp: &temp, PH: &ph, Level: &level},
		},
		System: models.SystemStatus{Host: "rig-01", GPIOBackend: "stub"},
	}
}

func newTestRecorder(snap models.StatusSnapshot) (*RecorderService, *fakeSampleRepo, *fakeRuntimeRepo, *fakeKVRepo, *fakeRig) {
	samples := &fakeSampleRepo{}
	runtime := &fakeRuntimeRepo{}
	kv := &fakeKVRepo{}
	rig := newFakeRig()
	repos := &repository.Repository{
		Samples: samples,
		Events:  &fakeEventRepo{},
		Runtime: runtime,
		KV:      kv,
	}
	rec := NewRecorderService(&fakeStatus{snap: snap}, rig, repos, 30)
	return rec, samples, runtime, kv, rig
}

func TestRecorder_PersistSnapshot(t *testing.T) {
	rec, samples, _, kv, _ := newTestRecorder(testSnapshot())
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if err := rec.persistSnapshot(context.Background(), testSnapshot(), now); err != nil {
		t.Fatalf("persistSnapshot: %v", err)
	}
	if len(samples.process) != 1 || len(samples.system) != 1 {
		t.Fatalf("rows: %d process, %d system", len(samples.process), len(samples.system))
	}
	p := samples.process[0]
	if !p.Pump1 || p.Pump2 || !p.ValveFresh || !p.HeaterOn {
		t.Fatalf("actuator columns: %+v", p)
	}
	if p.SoakTemp == nil || *p.SoakTemp != 32.5 {
		t.Fatalf("soak temp: %v", p.SoakTemp)
	}
	if kv.values[kvLiftEstimate] != "120" {
		t.Fatalf("kv lift estimate: %q", kv.values[kvLiftEstimate])
	}
}

func TestRecorder_RuntimeBaselineThenIncrement(t *testing.T) {
	snap := testSnapshot()
	rec, _, runtime, _, _ := newTestRecorder(snap)

	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rec.lastTickAt = start

	// First tick only establishes the baseline.
	if err := rec.updateRuntime(context.Background(), snap, start.Add(5*time.Second)); err != nil {
		t.Fatalf("updateRuntime: %v", err)
	}
	if len(runtime.applied) != 0 {
		t.Fatalf("baseline tick must not write: %+v", runtime.applied)
	}

	// Second tick accumulates runtime for everything on.
	if err := rec.updateRuntime(context.Background(), snap, start.Add(10*time.Second)); err != nil {
		t.Fatalf("updateRuntime: %v", err)
	}
	if len(runtime.applied) != 1 {
		t.Fatalf("want 1 apply, got %d", len(runtime.applied))
	}
	got := runtime.applied[0]
	if got.day != "2026-08-30" {
		t.Fatalf("day=%q", got.day)
	}
	if got.inc.Pump1RuntimeSec != 5 || got.inc.Pump2RuntimeSec != 0 || got.inc.HeaterRuntimeSec != 5 {
		t.Fatalf("runtime secs: %+v", got.inc)
	}
	// Nothing changed between ticks: no starts, no valve flips.
	if got.inc.Pump1Starts != 0 || got.inc.ValveFreshSwitches != 0 {
		t.Fatalf("unexpected edges: %+v", got.inc)
	}
}

func TestRecorder_RuntimeCountsEdges(t *testing.T) {
	snap := testSnapshot()
	rec, _, runtime, _, _ := newTestRecorder(snap)

	start := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	rec.lastTickAt = start
	if err := rec.updateRuntime(context.Background(), snap, start.Add(5*time.Second)); err != nil {
		t.Fatalf("baseline: %v", err)
	}

	// Pump2 starts, fresh valve flips off.
	next := testSnapshot()
	next.Relays[1].On = true
	next.Auto.Fresh = false
	if err := rec.updateRuntime(context.Background(), next, start.Add(10*time.Second)); err != nil {
		t.Fatalf("updateRuntime: %v", err)
	}
	got := runtime.applied[0].inc
	if got.Pump2Starts != 1 || got.Pump2RuntimeSec != 5 {
		t.Fatalf("pump2 edge: %+v", got)
	}
	if got.ValveFreshSwitches != 1 {
		t.Fatalf("valve flip: %+v", got)
	}
	// Pump1 was already on: runtime but no start.
	if got.Pump1Starts != 0 || got.Pump1RuntimeSec != 5 {
		t.Fatalf("pump1: %+v", got)
	}
}

func TestRecorder_RestoreLiftEstimate(t *testing.T) {
	rec, _, _, kv, rig := newTestRecorder(testSnapshot())
	kv.values = map[string]string{kvLiftEstimate: "240.5"}

	rec.RestoreLiftEstimate(context.Background())
	if rig.restoredMM != 240.5 {
		t.Fatalf("restored=%v, want 240.5", rig.restoredMM)
	}
}

func TestRecorder_RestoreLiftEstimate_BadValueIgnored(t *testing.T) {
	rec, _, _, kv, rig := newTestRecorder(testSnapshot())
	kv.values = map[string]string{kvLiftEstimate: "not-a-number"}

	rec.RestoreLiftEstimate(context.Background())
	if rig.restoredMM != 0 {
		t.Fatalf("bad value must be ignored, got %v", rig.restoredMM)
	}
}

func TestRecorder_Prune(t *testing.T) {
	rec, samples, runtime, _, _ := newTestRecorder(testSnapshot())
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	if err := rec.prune(context.Background(), now); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if len(samples.pruned) != 1 || !samples.pruned[0].Equal(now.AddDate(0, 0, -30)) {
		t.Fatalf("sample cutoff: %+v", samples.pruned)
	}
	if len(runtime.pruned) != 1 || runtime.pruned[0] != "2026-07-31" {
		t.Fatalf("runtime cutoff: %+v", runtime.pruned)
	}
}
