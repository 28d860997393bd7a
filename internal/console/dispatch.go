package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

// ErrBusy is returned when a command for the same action key is still in
// flight. The presentation layer treats a busy control as disabled.
var ErrBusy = errors.New("command already in flight")

// User-facing failure message. Command failures are surfaced generically and
// never retried automatically; the operator re-issues.
const commandFailedMsg = "command failed, please retry"

// Commander is the outbound command surface the dispatcher drives.
type Commander interface {
	SetRelay(ctx context.Context, index int, on bool) (models.RelayResponse, error)
	SetAutoSwitch(ctx context.Context, which string, on bool) (models.AutoResponse, error)
	SetLift(ctx context.Context, state string) (models.LiftResponse, error)
	SetHeater(ctx context.Context, on bool) (models.HeaterResponse, error)
}

// Dispatcher turns discrete UI actions into outbound commands. Each action
// key has a busy flag held for the duration of its round trip; distinct keys
// are independent. After a successful command the dispatcher requests an
// immediate out-of-cycle poll so the UI reflects the new state without
// waiting for the next scheduled tick.
type Dispatcher struct {
	cmd     Commander
	refresh func()           // forces a status re-poll; may be nil
	notify  func(msg string) // surfaces a user-facing failure; may be nil

	mu   sync.Mutex
	busy map[string]bool
}

// NewDispatcher wires a dispatcher to the command surface, a re-poll trigger,
// and a failure notifier.
func NewDispatcher(cmd Commander, refresh func(), notify func(string)) *Dispatcher {
	return &Dispatcher{
		cmd:     cmd,
		refresh: refresh,
		notify:  notify,
		busy:    make(map[string]bool),
	}
}

// Busy-flag keys per action.
func relayKey(index int) string   { return fmt.Sprintf("relay:%d", index) }
func autoKey(which string) string { return "auto:" + which }

const (
	liftKey   = "lift"
	heaterKey = "heater"
)

// Busy reports whether the given action key has a command in flight.
func (d *Dispatcher) Busy(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy[key]
}

// acquire sets the busy flag, failing when already held.
func (d *Dispatcher) acquire(key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.busy[key] {
		return ErrBusy
	}
	d.busy[key] = true
	return nil
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.busy, key)
}

// run executes one command under the key's busy flag. The flag is released on
// every exit path; a success triggers the re-poll, a failure the notifier.
func (d *Dispatcher) run(key string, send func() error) error {
	if err := d.acquire(key); err != nil {
		return err
	}
	defer d.release(key)

	if err := send(); err != nil {
		if d.notify != nil {
			d.notify(commandFailedMsg)
		}
		return err
	}
	if d.refresh != nil {
		d.refresh()
	}
	return nil
}

// SetRelay switches a pump relay.
func (d *Dispatcher) SetRelay(ctx context.Context, index int, on bool) error {
	return d.run(relayKey(index), func() error {
		_, err := d.cmd.SetRelay(ctx, index, on)
		return err
	})
}

// SetAutoSwitch switches a flow valve.
func (d *Dispatcher) SetAutoSwitch(ctx context.Context, which string, on bool) error {
	return d.run(autoKey(which), func() error {
		_, err := d.cmd.SetAutoSwitch(ctx, which, on)
		return err
	})
}

// SetLift requests a lift direction.
func (d *Dispatcher) SetLift(ctx context.Context, state string) error {
	return d.run(liftKey, func() error {
		_, err := d.cmd.SetLift(ctx, state)
		return err
	})
}

// SetHeater switches the heater.
func (d *Dispatcher) SetHeater(ctx context.Context, on bool) error {
	return d.run(heaterKey, func() error {
		_, err := d.cmd.SetHeater(ctx, on)
		return err
	})
}
