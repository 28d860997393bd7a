package service

import (
	"context"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/repository"
)

// RigController is the slice of the GPIO layer the services drive.
type RigController interface {
	Backend() string
	RelaySnapshot() []models.RelayStatus
	SetRelay(index int, on bool) (bool, error)
	AutoStatus() models.AutoStatus
	SetAuto(which string, on bool) (models.AutoStatus, error)
	SetLift(state string) (string, error)
	LiftStatus() models.LiftStatus
	LiftEstimate() (float64, int)
	SetLiftEstimateMM(mm float64)
	SetHeater(on bool) (bool, error)
	HeaterStatus() models.HeaterStatus
}

// SoakProbe reports the live soak tank reading, nils once stale.
type SoakProbe interface {
	Reading() (temp, ph *float64)
}

// HostSampler collects host metrics for the status snapshot.
type HostSampler interface {
	Sample(gpioBackend string) models.SystemStatus
}

// Status assembles complete status snapshots.
type Status interface {
	Snapshot() models.StatusSnapshot
}

// Rig exposes control operations, each recorded as a control event.
type Rig interface {
	SetRelay(ctx context.Context, cmd models.RelayCommand) (models.RelayResponse, error)
	SetAuto(ctx context.Context, cmd models.AutoSwitchCommand) (models.AutoResponse, error)
	SetLift(ctx context.Context, cmd models.LiftCommand) (models.LiftResponse, error)
	SetHeater(ctx context.Context, cmd models.HeaterCommand) (models.HeaterResponse, error)
}

// Recorder runs the background persistence loop.
// Stop via context cancellation in main() for graceful shutdown.
type Recorder interface {
	Run(ctx context.Context, tick time.Duration)
	RestoreLiftEstimate(ctx context.Context)
}

// History exposes the persisted sample, event and runtime queries.
type History interface {
	History(ctx context.Context, hours float64, limit int) (HistoryResult, error)
	Events(ctx context.Context, limit int) (EventsResult, error)
	Runtime(ctx context.Context, days int) (RuntimeResult, error)
}

// Service aggregates all sub-services.
type Service struct {
	Status
	Rig
	Recorder
	History
}

func NewService(repos *repository.Repository, ctrl RigController, probe SoakProbe, host HostSampler, cfg *config.Config) *Service {
	status := NewStatusService(ctrl, probe, host, cfg.Tanks)
	return &Service{
		Status:   status,
		Rig:      NewRigService(ctrl, repos.Events),
		Recorder: NewRecorderService(status, ctrl, repos, cfg.RetentionDays),
		History:  NewHistoryService(repos),
	}
}
