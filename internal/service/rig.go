package service

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/repository"
)

const eventSourceAPI = "api"

// RigService executes control commands and records each attempt as a
// control event. Event persistence is best effort; a failed insert
// never blocks an actuator change.
type RigService struct {
	ctrl   RigController
	events repository.EventRepo
}

func NewRigService(ctrl RigController, events repository.EventRepo) *RigService {
	return &RigService{ctrl: ctrl, events: events}
}

func (s *RigService) SetRelay(ctx context.Context, cmd models.RelayCommand) (models.RelayResponse, error) {
	prev := s.ctrl.RelaySnapshot()
	next, err := s.ctrl.SetRelay(cmd.Index, cmd.On)
	if err != nil {
		return models.RelayResponse{}, err
	}
	prevOn := false
	for _, r := range prev {
		if r.Index == cmd.Index {
			prevOn = r.On
			break
		}
	}
	s.record(ctx, fmt.Sprintf("relay:%d", cmd.Index), strconv.FormatBool(prevOn), strconv.FormatBool(next), true, "")
	return models.RelayResponse{On: next}, nil
}

func (s *RigService) SetAuto(ctx context.Context, cmd models.AutoSwitchCommand) (models.AutoResponse, error) {
	prev := s.ctrl.AutoStatus()
	next, err := s.ctrl.SetAuto(cmd.Which, cmd.On)
	if err != nil {
		return models.AutoResponse{}, err
	}
	prevOn := prev.Fresh
	nextOn := next.Fresh
	if cmd.Which == models.ValveHeat {
		prevOn = prev.Heat
		nextOn = next.Heat
	}
	s.record(ctx, "auto:"+cmd.Which, strconv.FormatBool(prevOn), strconv.FormatBool(nextOn), true, "")
	return models.AutoResponse{Auto: next}, nil
}

// SetLift moves or stops the lift. A rejected command (wrong direction
// while moving) is recorded as a failed event before the error is
// returned, so the interlock trip shows up in the log.
func (s *RigService) SetLift(ctx context.Context, cmd models.LiftCommand) (models.LiftResponse, error) {
	prevState := s.ctrl.LiftStatus().State
	state, err := s.ctrl.SetLift(cmd.State)
	if err != nil {
		s.record(ctx, "lift", prevState, prevState, false, err.Error())
		return models.LiftResponse{}, err
	}
	mm, percent := s.ctrl.LiftEstimate()
	s.record(ctx, "lift", prevState, state, true, "")

	lift := s.ctrl.LiftStatus()
	var maxMM float64
	if lift.MaxMM != nil {
		maxMM = *lift.MaxMM
	}
	return models.LiftResponse{
		Configured:       true,
		State:            state,
		EstimatedMM:      math.Round(mm*10) / 10,
		EstimatedPercent: percent,
		MaxMM:            maxMM,
		SpeedMMS:         math.Round(lift.SpeedMMS*100) / 100,
	}, nil
}

func (s *RigService) SetHeater(ctx context.Context, cmd models.HeaterCommand) (models.HeaterResponse, error) {
	prev := s.ctrl.HeaterStatus().On
	next, err := s.ctrl.SetHeater(cmd.On)
	if err != nil {
		return models.HeaterResponse{}, err
	}
	s.record(ctx, "heater", strconv.FormatBool(prev), strconv.FormatBool(next), true, "")
	return models.HeaterResponse{Configured: true, On: next}, nil
}

func (s *RigService) record(ctx context.Context, target, prev, next string, ok bool, message string) {
	_ = s.events.Append(ctx, models.ControlEvent{
		Source:    eventSourceAPI,
		Target:    target,
		PrevValue: prev,
		NextValue: next,
		OK:        ok,
		Message:   message,
	})
}
