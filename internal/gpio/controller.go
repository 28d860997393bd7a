package gpio

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/models"
)

var (
	ErrInvalidRelay      = errors.New("invalid relay index")
	ErrInvalidAutoSwitch = errors.New("invalid auto switch")
	ErrInvalidLiftState  = errors.New("invalid lift state")
	ErrLiftMovingUp      = errors.New("lift is moving up")
	ErrLiftMovingDown    = errors.New("lift is moving down")
)

// Controller owns every output line of the rig: three pump relays, two flow
// valves, the heater, and the lift up/down pair. It also tracks the
// server-side lift position estimate, advanced lazily from elapsed wall time
// whenever it is read.
type Controller struct {
	cfg     config.GPIO
	backend string
	now     func() time.Time

	mu         sync.Mutex
	pumps      [3]OutputDevice
	valveFresh OutputDevice
	valveHeat  OutputDevice
	heater     OutputDevice
	liftUp     OutputDevice
	liftDown   OutputDevice

	autoFresh bool
	autoHeat  bool

	liftState     string
	liftMM        float64
	liftUpdatedAt time.Time
}

// NewController opens every output line using the configured backend.
// Backend "auto" prefers the character device when the platform supports it
// and falls back to the stub.
func NewController(cfg config.GPIO) (*Controller, error) {
	factory, backend, err := selectFactory(cfg)
	if err != nil {
		return nil, err
	}
	return newController(cfg, factory, backend, time.Now)
}

func selectFactory(cfg config.GPIO) (deviceFactory, string, error) {
	switch cfg.Backend {
	case BackendCdev:
		if !cdevAvailable() {
			return nil, "", errors.New("gpio: cdev backend requires Linux")
		}
		return newCdevFactory(cfg.Chip), BackendCdev, nil
	case BackendStub:
		return stubFactory, BackendStub, nil
	case "", "auto":
		if cdevAvailable() {
			return newCdevFactory(cfg.Chip), BackendCdev, nil
		}
		return stubFactory, BackendStub, nil
	default:
		return nil, "", fmt.Errorf("gpio: unknown backend %q", cfg.Backend)
	}
}

func newController(cfg config.GPIO, factory deviceFactory, backend string, now func() time.Time) (*Controller, error) {
	c := &Controller{
		cfg:           cfg,
		backend:       backend,
		now:           now,
		liftState:     models.LiftStop,
		liftUpdatedAt: now(),
	}

	var opened []OutputDevice
	open := func(pin int, activeLow bool) (OutputDevice, error) {
		dev, err := factory(pin, activeLow)
		if err != nil {
			for _, d := range opened {
				_ = d.Close()
			}
			return nil, err
		}
		opened = append(opened, dev)
		return dev, nil
	}

	var err error
	for i, pin := range []int{cfg.PinPump1, cfg.PinPump2, cfg.PinPump3} {
		if c.pumps[i], err = open(pin, cfg.RelayActiveLow); err != nil {
			return nil, err
		}
	}
	if c.valveFresh, err = open(cfg.PinValveFresh, cfg.ValveActiveLow); err != nil {
		return nil, err
	}
	if c.valveHeat, err = open(cfg.PinValveHeat, cfg.ValveActiveLow); err != nil {
		return nil, err
	}
	if c.heater, err = open(cfg.PinHeater, cfg.HeaterActiveLow); err != nil {
		return nil, err
	}
	if c.liftUp, err = open(cfg.PinLiftUp, cfg.LiftActiveLow); err != nil {
		return nil, err
	}
	if c.liftDown, err = open(cfg.PinLiftDown, cfg.LiftActiveLow); err != nil {
		return nil, err
	}

	// Everything starts off.
	for _, d := range opened {
		if err := d.Off(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Backend reports which device backend is driving the lines.
func (c *Controller) Backend() string { return c.backend }

// RelaySnapshot returns the state of the three pump relays.
func (c *Controller) RelaySnapshot() []models.RelayStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.RelayStatus, len(c.pumps))
	for i, p := range c.pumps {
		out[i] = models.RelayStatus{Index: i, Pin: p.Pin(), On: p.IsActive()}
	}
	return out
}

// SetRelay switches one pump relay and returns the resulting state.
func (c *Controller) SetRelay(index int, on bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.pumps) {
		return false, ErrInvalidRelay
	}
	if err := drive(c.pumps[index], on); err != nil {
		return c.pumps[index].IsActive(), err
	}
	return c.pumps[index].IsActive(), nil
}

// SetAuto switches one flow valve and returns the full valve state.
func (c *Controller) SetAuto(which string, on bool) (models.AutoStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var dev OutputDevice
	switch which {
	case models.ValveFresh:
		dev = c.valveFresh
	case models.ValveHeat:
		dev = c.valveHeat
	default:
		return models.AutoStatus{}, ErrInvalidAutoSwitch
	}
	if err := drive(dev, on); err != nil {
		return c.autoStatusLocked(), err
	}
	if which == models.ValveFresh {
		c.autoFresh = on
	} else {
		c.autoHeat = on
	}
	return c.autoStatusLocked(), nil
}

func (c *Controller) autoStatusLocked() models.AutoStatus {
	return models.AutoStatus{Fresh: c.autoFresh, Heat: c.autoHeat, Configured: true}
}

// AutoStatus returns the flow valve state.
func (c *Controller) AutoStatus() models.AutoStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoStatusLocked()
}

// SetLift accepts "up" or "down". Commanding the direction already active
// stops the lift; commanding against the current motion is rejected so the
// motor is never reversed without an explicit stop.
func (c *Controller) SetLift(state string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if state != models.LiftUp && state != models.LiftDown {
		return c.liftState, ErrInvalidLiftState
	}
	c.updateLiftEstimateLocked()

	opposite := models.LiftDown
	oppositeErr := ErrLiftMovingDown
	if state == models.LiftDown {
		opposite = models.LiftUp
		oppositeErr = ErrLiftMovingUp
	}
	if c.liftState == opposite {
		return c.liftState, oppositeErr
	}
	if c.liftState == state {
		// repeat of the active direction stops
		if err := c.stopLiftLocked(); err != nil {
			return c.liftState, err
		}
		return c.liftState, nil
	}

	if err := c.stopLiftLocked(); err != nil {
		return c.liftState, err
	}
	dev := c.liftUp
	if state == models.LiftDown {
		dev = c.liftDown
	}
	if err := dev.On(); err != nil {
		return c.liftState, err
	}
	c.liftState = state
	return c.liftState, nil
}

func (c *Controller) stopLiftLocked() error {
	if err := c.liftUp.Off(); err != nil {
		return err
	}
	if err := c.liftDown.Off(); err != nil {
		return err
	}
	c.liftState = models.LiftStop
	return nil
}

// SetHeater switches the heater relay.
func (c *Controller) SetHeater(on bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := drive(c.heater, on); err != nil {
		return c.heater.IsActive(), err
	}
	return c.heater.IsActive(), nil
}

// HeaterStatus returns the heater state.
func (c *Controller) HeaterStatus() models.HeaterStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.HeaterStatus{Configured: true, On: c.heater.IsActive()}
}

// updateLiftEstimateLocked advances the estimate from elapsed wall time.
func (c *Controller) updateLiftEstimateLocked() {
	now := c.now()
	elapsed := now.Sub(c.liftUpdatedAt).Seconds()
	if elapsed <= 0 {
		return
	}
	switch c.liftState {
	case models.LiftUp:
		c.liftMM = math.Min(c.cfg.LiftMaxMM, c.liftMM+c.cfg.LiftSpeedMMS*elapsed)
	case models.LiftDown:
		c.liftMM = math.Max(0, c.liftMM-c.cfg.LiftSpeedMMS*elapsed)
	}
	c.liftUpdatedAt = now
}

// LiftEstimate returns the current position estimate and its percentage of
// max travel.
func (c *Controller) LiftEstimate() (float64, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateLiftEstimateLocked()
	pct := int(math.Round(c.liftMM / c.cfg.LiftMaxMM * 100))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return c.liftMM, pct
}

// SetLiftEstimateMM overwrites the position estimate, clamped to the travel
// range. Used to restore the persisted estimate at startup.
func (c *Controller) SetLiftEstimateMM(mm float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liftMM = math.Max(0, math.Min(c.cfg.LiftMaxMM, mm))
	c.liftUpdatedAt = c.now()
}

// LiftStatus returns the full lift block for the status snapshot.
func (c *Controller) LiftStatus() models.LiftStatus {
	mm, pct := c.LiftEstimate()
	c.mu.Lock()
	defer c.mu.Unlock()
	rounded := math.Round(mm*10) / 10
	return models.LiftStatus{
		Configured:       true,
		State:            c.liftState,
		EstimatedMM:      &rounded,
		EstimatedPercent: pct,
		MaxMM:            models.Float64Ptr(c.cfg.LiftMaxMM),
		SpeedMMS:         math.Round(c.cfg.LiftSpeedMMS*100) / 100,
	}
}

// Close drives every line inactive and releases it.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	devices := []OutputDevice{
		c.pumps[0], c.pumps[1], c.pumps[2],
		c.valveFresh, c.valveHeat, c.heater, c.liftUp, c.liftDown,
	}
	for _, d := range devices {
		if d == nil {
			continue
		}
		if err := d.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func drive(dev OutputDevice, on bool) error {
	if on {
		return dev.On()
	}
	return dev.Off()
}
