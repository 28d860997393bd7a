package service

import (
	"context"
	"strconv"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/logger"
	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/repository"
)

const (
	kvLiftEstimate = "lift_estimated_mm"
	pruneEvery     = time.Hour
	dayFormat      = "2006-01-02"
)

// actuatorState is the on/off picture one tick compares against the next.
type actuatorState struct {
	pump1, pump2, pump3   bool
	heater                bool
	valveFresh, valveHeat bool
}

// RecorderService samples the rig into SQLite on a fixed cadence,
// accumulates per-day actuator runtime, and prunes old rows hourly.
type RecorderService struct {
	status        Status
	ctrl          RigController
	repos         *repository.Repository
	retentionDays int
	now           func() time.Time

	prev       *actuatorState
	lastTickAt time.Time
}

func NewRecorderService(status Status, ctrl RigController, repos *repository.Repository, retentionDays int) *RecorderService {
	return &RecorderService{
		status:        status,
		ctrl:          ctrl,
		repos:         repos,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// RestoreLiftEstimate loads the persisted lift position back into the
// controller. Call once at startup, before the loop runs.
func (s *RecorderService) RestoreLiftEstimate(ctx context.Context) {
	value, found, err := s.repos.KV.Get(ctx, kvLiftEstimate)
	if err != nil || !found {
		return
	}
	mm, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return
	}
	s.ctrl.SetLiftEstimateMM(mm)
}

// Run ticks at the given interval until ctx is canceled.
func (s *RecorderService) Run(ctx context.Context, tick time.Duration) {
	log := logger.Get(logger.InfoLevel).Named("recorder")
	t := time.NewTicker(tick)
	defer t.Stop()

	s.lastTickAt = s.now()
	var lastPruneAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			now := s.now()
			snap := s.status.Snapshot()
			if err := s.persistSnapshot(ctx, snap, now); err != nil {
				log.Warnf("persist snapshot: %v", err)
			}
			if err := s.updateRuntime(ctx, snap, now); err != nil {
				log.Warnf("update runtime: %v", err)
			}
			if now.Sub(lastPruneAt) >= pruneEvery {
				if err := s.prune(ctx, now); err != nil {
					log.Warnf("prune: %v", err)
				} else {
					lastPruneAt = now
				}
			}
		}
	}
}

func (s *RecorderService) persistSnapshot(ctx context.Context, snap models.StatusSnapshot, now time.Time) error {
	soak := snap.Tank[models.TankSoak]
	fresh := snap.Tank[models.TankFresh]
	heat := snap.Tank[models.TankHeat]

	err := s.repos.Samples.InsertProcess(ctx, models.ProcessSample{
		TS:         now,
		SoakTemp:   soak.Temp,
		SoakPH:     soak.PH,
		SoakLevel:  soak.Level,
		FreshLevel: fresh.Level,
		HeatLevel:  heat.Level,
		Pump1:      snap.RelayOn(0),
		Pump2:      snap.RelayOn(1),
		Pump3:      snap.RelayOn(2),
		ValveFresh: snap.Auto.Fresh,
		ValveHeat:  snap.Auto.Heat,
		LiftState:  snap.Lift.State,
		LiftEstMM:  snap.Lift.EstimatedMM,
		HeaterOn:   snap.Heater.On,
	})
	if err != nil {
		return err
	}

	err = s.repos.Samples.InsertSystem(ctx, models.SystemSample{
		TS:            now,
		Host:          snap.System.Host,
		GPIOBackend:   snap.System.GPIOBackend,
		CPUPercent:    snap.System.CPUPercent,
		MemoryPercent: snap.System.MemoryPercent,
		DiskPercent:   snap.System.DiskPercent,
		CPUTemp:       snap.System.CPUTemp,
		UptimeSec:     snap.System.UptimeSec,
		Load1:         snap.System.Load1,
		Load5:         snap.System.Load5,
		Load15:        snap.System.Load15,
	})
	if err != nil {
		return err
	}

	if snap.Lift.EstimatedMM != nil {
		return s.repos.KV.Set(ctx, kvLiftEstimate, strconv.FormatFloat(*snap.Lift.EstimatedMM, 'f', -1, 64))
	}
	return nil
}

// updateRuntime adds this tick's elapsed seconds to every actuator that
// is currently on, and counts off-to-on starts and valve flips. The
// first tick only establishes the baseline.
func (s *RecorderService) updateRuntime(ctx context.Context, snap models.StatusSnapshot, now time.Time) error {
	current := actuatorState{
		pump1:      snap.RelayOn(0),
		pump2:      snap.RelayOn(1),
		pump3:      snap.RelayOn(2),
		heater:     snap.Heater.On,
		valveFresh: snap.Auto.Fresh,
		valveHeat:  snap.Auto.Heat,
	}

	elapsed := int(now.Sub(s.lastTickAt).Round(time.Second).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	s.lastTickAt = now

	if s.prev == nil {
		s.prev = &current
		return nil
	}
	prev := *s.prev
	s.prev = &current

	inc := models.RuntimeIncrement{
		Pump1Starts:        startCount(prev.pump1, current.pump1),
		Pump2Starts:        startCount(prev.pump2, current.pump2),
		Pump3Starts:        startCount(prev.pump3, current.pump3),
		HeaterStarts:       startCount(prev.heater, current.heater),
		ValveFreshSwitches: switchCount(prev.valveFresh, current.valveFresh),
		ValveHeatSwitches:  switchCount(prev.valveHeat, current.valveHeat),
	}
	if current.pump1 {
		inc.Pump1RuntimeSec = elapsed
	}
	if current.pump2 {
		inc.Pump2RuntimeSec = elapsed
	}
	if current.pump3 {
		inc.Pump3RuntimeSec = elapsed
	}
	if current.heater {
		inc.HeaterRuntimeSec = elapsed
	}

	return s.repos.Runtime.Apply(ctx, now.Format(dayFormat), inc, now)
}

func (s *RecorderService) prune(ctx context.Context, now time.Time) error {
	cutoff := now.AddDate(0, 0, -s.retentionDays)
	if err := s.repos.Samples.PruneBefore(ctx, cutoff); err != nil {
		return err
	}
	if err := s.repos.Events.PruneBefore(ctx, cutoff); err != nil {
		return err
	}
	return s.repos.Runtime.PruneBefore(ctx, cutoff.Format(dayFormat))
}

func startCount(prev, current bool) int {
	if !prev && current {
		return 1
	}
	return 0
}

func switchCount(prev, current bool) int {
	if prev != current {
		return 1
	}
	return 0
}
