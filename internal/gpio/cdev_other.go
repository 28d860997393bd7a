//go:build !linux

package gpio

import "errors"

// The character-device backend requires Linux.
func newCdevFactory(chip string) deviceFactory {
	return func(pin int, activeLow bool) (OutputDevice, error) {
		return nil, errors.New("gpio: cdev backend requires Linux")
	}
}

func cdevAvailable() bool { return false }
