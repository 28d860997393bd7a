package gpio

// StubDevice is an in-memory output line for hosts without the relay board
// and for tests.
type StubDevice struct {
	pin    int
	active bool
	closed bool
}

// NewStubDevice returns an inactive stub line.
func NewStubDevice(pin int) *StubDevice {
	return &StubDevice{pin: pin}
}

func stubFactory(pin int, activeLow bool) (OutputDevice, error) {
	return NewStubDevice(pin), nil
}

func (d *StubDevice) On() error {
	d.active = true
	return nil
}

func (d *StubDevice) Off() error {
	d.active = false
	return nil
}

func (d *StubDevice) IsActive() bool { return d.active }

func (d *StubDevice) Pin() int { return d.pin }

func (d *StubDevice) Close() error {
	d.active = false
	d.closed = true
	return nil
}

// Closed reports whether Close was called. Test helper.
func (d *StubDevice) Closed() bool { return d.closed }
