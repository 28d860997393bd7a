package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/service"
)

// ---- Service Mocks ----

type mockStatus struct {
	snap models.StatusSnapshot
}

func (m *mockStatus) Snapshot() models.StatusSnapshot { return m.snap }

type mockRig struct {
	relayResp  models.RelayResponse
	relayErr   error
	autoResp   models.AutoResponse
	autoErr    error
	liftResp   models.LiftResponse
	liftErr    error
	heaterResp models.HeaterResponse
	heaterErr  error

	lastRelay  models.RelayCommand
	lastAuto   models.AutoSwitchCommand
	lastLift   models.LiftCommand
	lastHeater models.HeaterCommand
}

func (m *mockRig) SetRelay(ctx context.Context, cmd models.RelayCommand) (models.RelayResponse, error) {
	m.lastRelay = cmd
	return m.relayResp, m.relayErr
}

func (m *mockRig) SetAuto(ctx context.Context, cmd models.AutoSwitchCommand) (models.AutoResponse, error) {
	m.lastAuto = cmd
	return m.autoResp, m.autoErr
}

func (m *mockRig) SetLift(ctx context.Context, cmd models.LiftCommand) (models.LiftResponse, error) {
	m.lastLift = cmd
	return m.liftResp, m.liftErr
}

func (m *mockRig) SetHeater(ctx context.Context, cmd models.HeaterCommand) (models.HeaterResponse, error) {
	m.lastHeater = cmd
	return m.heaterResp, m.heaterErr
}

type mockHistory struct {
	historyResp service.HistoryResult
	historyErr  error
	eventsResp  service.EventsResult
	eventsErr   error
	runtimeResp service.RuntimeResult
	runtimeErr  error

	lastHours float64
	lastLimit int
	lastDays  int
}

func (m *mockHistory) History(ctx context.Context, hours float64, limit int) (service.HistoryResult, error) {
	m.lastHours = hours
	m.lastLimit = limit
	return m.historyResp, m.historyErr
}

func (m *mockHistory) Events(ctx context.Context, limit int) (service.EventsResult, error) {
	m.lastLimit = limit
	return m.eventsResp, m.eventsErr
}

func (m *mockHistory) Runtime(ctx context.Context, days int) (service.RuntimeResult, error) {
	m.lastDays = days
	return m.runtimeResp, m.runtimeErr
}

type mockRecorder struct{}

func (mockRecorder) Run(ctx context.Context, tick time.Duration) {}
func (mockRecorder) RestoreLiftEstimate(ctx context.Context)     {}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
