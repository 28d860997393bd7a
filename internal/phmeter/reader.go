package phmeter

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/MickeyElders/pi-control-program/internal/config"
	"github.com/MickeyElders/pi-control-program/internal/logger"
)

// The probe exposes pH and temperature as two holding registers at
// address 0: pH scaled by 100, temperature in tenths of a degree.
const (
	registerStart = 0
	registerCount = 2
)

// registerReader is the slice of the modbus client the reader needs.
type registerReader interface {
	ReadHoldingRegisters(address, quantity uint16) (results []byte, err error)
}

// dialFunc opens a transport and returns the client plus its closer.
// One attempt per call; the poll loop redials after transport errors.
type dialFunc func() (registerReader, io.Closer, error)

// Reader polls a Modbus RTU pH probe and caches the latest good sample.
type Reader struct {
	cfg  config.PHMeter
	dial dialFunc
	now  func() time.Time
	log  *logger.Logger

	mu         sync.Mutex
	ph         float64
	temp       float64
	lastGoodAt time.Time
}

// NewReader builds a reader for the configured serial port. The port is
// not opened until Run.
func NewReader(cfg config.PHMeter, log *logger.Logger) *Reader {
	dial := func() (registerReader, io.Closer, error) {
		h := modbus.NewRTUClientHandler(cfg.Port)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.SlaveId = cfg.SlaveID
		h.Timeout = cfg.Timeout
		if err := h.Connect(); err != nil {
			return nil, nil, err
		}
		return modbus.NewClient(h), h, nil
	}
	return newReader(cfg, dial, time.Now, log)
}

func newReader(cfg config.PHMeter, dial dialFunc, now func() time.Time, log *logger.Logger) *Reader {
	return &Reader{cfg: cfg, dial: dial, now: now, log: log}
}

// Run polls the probe until ctx is cancelled. The serial port is
// reopened after any transport failure, with at least a one second
// pause so a dead bus does not spin the loop.
func (r *Reader) Run(ctx context.Context) {
	if !r.cfg.Enabled {
		r.log.Info("ph meter disabled")
		return
	}
	retry := r.cfg.PollInterval
	if retry < time.Second {
		retry = time.Second
	}
	for {
		if err := r.pollSession(ctx); err != nil {
			r.log.Warnf("ph meter session ended: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

// pollSession holds one open port and polls until the transport fails
// or ctx is cancelled. Cancellation is returned as nil.
func (r *Reader) pollSession(ctx context.Context) error {
	client, closer, err := r.dial()
	if err != nil {
		return fmt.Errorf("open %s: %w", r.cfg.Port, err)
	}
	defer closer.Close()

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if err := r.pollOnce(client); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Reader) pollOnce(client registerReader) error {
	results, err := client.ReadHoldingRegisters(registerStart, registerCount)
	if err != nil {
		return fmt.Errorf("read registers: %w", err)
	}
	ph, temp, err := decodeRegisters(results)
	if err != nil {
		// A garbled frame is not a transport failure, keep the port.
		r.log.Debugf("ph meter frame rejected: %v", err)
		return nil
	}
	r.mu.Lock()
	r.ph = ph
	r.temp = temp
	r.lastGoodAt = r.now()
	r.mu.Unlock()
	return nil
}

// decodeRegisters unpacks the two-register payload. pH outside the
// 0..14 scale marks the frame invalid.
func decodeRegisters(results []byte) (ph, temp float64, err error) {
	if len(results) < 4 {
		return 0, 0, fmt.Errorf("short payload: %d bytes", len(results))
	}
	ph = float64(binary.BigEndian.Uint16(results[0:2])) / 100.0
	temp = float64(binary.BigEndian.Uint16(results[2:4])) / 10.0
	if ph < 0 || ph > 14 {
		return 0, 0, fmt.Errorf("ph out of range: %.2f", ph)
	}
	return math.Round(ph*100) / 100, math.Round(temp*10) / 10, nil
}

// Reading returns the latest sample, or nils once it has gone stale.
func (r *Reader) Reading() (temp, ph *float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastGoodAt.IsZero() {
		return nil, nil
	}
	if r.now().Sub(r.lastGoodAt) > r.cfg.StaleAfter {
		return nil, nil
	}
	t, p := r.temp, r.ph
	return &t, &p
}
