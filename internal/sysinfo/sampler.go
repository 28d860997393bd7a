// Package sysinfo samples host-level metrics (CPU, memory, disk,
// thermal, uptime, load) from the proc and sys filesystems. Every
// reading is optional; a metric the host cannot provide is reported
// as nil rather than failing the whole sample.
package sysinfo

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/MickeyElders/pi-control-program/internal/models"
)

const thermalZonePath = "/sys/class/thermal/thermal_zone0/temp"

// Sampler reads host metrics. CPU percent is a delta between
// consecutive samples, so the first call reports it as unknown.
type Sampler struct {
	procRoot string
	diskPath string

	mu        sync.Mutex
	primed    bool
	lastTotal int64
	lastIdle  int64
}

func NewSampler() *Sampler {
	return &Sampler{procRoot: "/proc", diskPath: "/"}
}

// Sample collects one snapshot of host metrics.
func (s *Sampler) Sample(gpioBackend string) models.SystemStatus {
	host, _ := os.Hostname()
	st := models.SystemStatus{
		Host:        host,
		GPIOBackend: gpioBackend,
	}
	st.CPUPercent = s.sampleCPU()
	if data, err := os.ReadFile(filepath.Join(s.procRoot, "meminfo")); err == nil {
		st.MemoryPercent = parseMemInfo(data)
	}
	st.DiskPercent = diskPercent(s.diskPath)
	if data, err := os.ReadFile(thermalZonePath); err == nil {
		st.CPUTemp = parseThermal(data)
	}
	if data, err := os.ReadFile(filepath.Join(s.procRoot, "uptime")); err == nil {
		st.UptimeSec = parseUptime(data)
	}
	if data, err := os.ReadFile(filepath.Join(s.procRoot, "loadavg")); err == nil {
		st.Load1, st.Load5, st.Load15 = parseLoadAvg(data)
	}
	return st
}

func (s *Sampler) sampleCPU() *float64 {
	data, err := os.ReadFile(filepath.Join(s.procRoot, "stat"))
	if err != nil {
		return nil
	}
	line := string(data)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	total, idle, ok := parseCPULine(line)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.primed {
		s.primed = true
		s.lastTotal = total
		s.lastIdle = idle
		return nil
	}
	pct := cpuPercent(s.lastTotal, s.lastIdle, total, idle)
	s.lastTotal = total
	s.lastIdle = idle
	return pct
}
