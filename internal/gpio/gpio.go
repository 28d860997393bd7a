// Package gpio drives the rig's relay board with hardware abstraction.
// The real implementation uses the Linux GPIO character device; the stub
// keeps state in memory for development hosts and tests.
package gpio

// OutputDevice is one GPIO-driven output line.
type OutputDevice interface {
	// On drives the line active (respecting polarity).
	On() error

	// Off drives the line inactive.
	Off() error

	// IsActive reports the logical state.
	IsActive() bool

	// Pin returns the line offset.
	Pin() int

	// Close releases the line.
	Close() error
}

// deviceFactory builds one output device for a pin. Injectable for tests.
type deviceFactory func(pin int, activeLow bool) (OutputDevice, error)

// Backend names reported in the status snapshot.
const (
	BackendCdev = "cdev"
	BackendStub = "stub"
)
