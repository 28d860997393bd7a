//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// cdevDevice drives one output line through the Linux GPIO character device.
type cdevDevice struct {
	line      *gpiocdev.Line
	pin       int
	activeLow bool
	active    bool
}

// newCdevFactory returns a factory opening lines on the named chip. Every
// line starts inactive.
func newCdevFactory(chip string) deviceFactory {
	return func(pin int, activeLow bool) (OutputDevice, error) {
		opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(levelFor(false, activeLow))}
		line, err := gpiocdev.RequestLine(chip, pin, opts...)
		if err != nil {
			return nil, fmt.Errorf("request output pin %d on %s: %w", pin, chip, err)
		}
		return &cdevDevice{line: line, pin: pin, activeLow: activeLow}, nil
	}
}

// levelFor maps a logical state to the wire level for the given polarity.
func levelFor(active, activeLow bool) int {
	if active != activeLow {
		return 1
	}
	return 0
}

func (d *cdevDevice) On() error {
	if err := d.line.SetValue(levelFor(true, d.activeLow)); err != nil {
		return fmt.Errorf("set pin %d high: %w", d.pin, err)
	}
	d.active = true
	return nil
}

func (d *cdevDevice) Off() error {
	if err := d.line.SetValue(levelFor(false, d.activeLow)); err != nil {
		return fmt.Errorf("set pin %d low: %w", d.pin, err)
	}
	d.active = false
	return nil
}

func (d *cdevDevice) IsActive() bool { return d.active }

func (d *cdevDevice) Pin() int { return d.pin }

// Close drives the line inactive before releasing it so a restart never
// leaves a pump running.
func (d *cdevDevice) Close() error {
	_ = d.line.SetValue(levelFor(false, d.activeLow))
	return d.line.Close()
}

func cdevAvailable() bool { return true }
