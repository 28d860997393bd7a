package service

import (
	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/models"
)

// StatusService assembles the complete status snapshot: actuator state
// from GPIO, the live soak reading when fresh, configured fallbacks for
// everything else, and host metrics.
type StatusService struct {
	ctrl  RigController
	probe SoakProbe
	host  HostSampler
	tanks config.TankDefaults
}

func NewStatusService(ctrl RigController, probe SoakProbe, host HostSampler, tanks config.TankDefaults) *StatusService {
	return &StatusService{ctrl: ctrl, probe: probe, host: host, tanks: tanks}
}

func (s *StatusService) Snapshot() models.StatusSnapshot {
	soakTemp, soakPH := s.probe.Reading()

	snap := models.StatusSnapshot{
		Relays: s.ctrl.RelaySnapshot(),
		Auto:   s.ctrl.AutoStatus(),
		Lift:   s.ctrl.LiftStatus(),
		Heater: s.ctrl.HeaterStatus(),
		System: s.host.Sample(s.ctrl.Backend()),
		Tank:   make(map[string]models.TankReading, 3),
	}

	snap.Tank[models.TankSoak] = s.soakReading(soakTemp, soakPH)
	for _, name := range []string{models.TankFresh, models.TankHeat} {
		snap.Tank[name] = s.defaultReading(name)
	}
	return snap
}

// soakReading prefers the live probe values; the color falls back to
// the configured defaults so the tank never renders colorless.
func (s *StatusService) soakReading(temp, ph *float64) models.TankReading {
	colorTemp := s.tanks.Temps[models.TankSoak]
	if temp != nil {
		colorTemp = *temp
	}
	colorPH := s.tanks.PHs[models.TankSoak]
	if ph != nil {
		colorPH = *ph
	}
	level := s.tanks.Levels[models.TankSoak]
	return models.TankReading{
		Temp:  temp,
		PH:    ph,
		Level: &level,
		Color: colorForPHTemp(colorPH, colorTemp),
	}
}

func (s *StatusService) defaultReading(name string) models.TankReading {
	temp := s.tanks.Temps[name]
	ph := s.tanks.PHs[name]
	level := s.tanks.Levels[name]
	return models.TankReading{
		Temp:  &temp,
		PH:    &ph,
		Level: &level,
		Color: colorForPHTemp(ph, temp),
	}
}
