package sysinfo

import (
	"math"
	"strconv"
	"strings"
)

// parseCPULine reads the aggregate "cpu" line of /proc/stat. Idle time
// includes iowait when the kernel reports it.
func parseCPULine(line string) (total, idle int64, ok bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, 0, false
	}
	values := make([]int64, 0, len(fields)-1)
	for _, f := range fields[1:] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		values = append(values, v)
	}
	idle = values[3]
	if len(values) > 4 {
		idle += values[4]
	}
	for _, v := range values {
		total += v
	}
	return total, idle, true
}

// cpuPercent converts two /proc/stat observations into a busy
// percentage over the interval between them.
func cpuPercent(prevTotal, prevIdle, total, idle int64) *float64 {
	totalDelta := total - prevTotal
	if totalDelta <= 0 {
		return nil
	}
	idleDelta := idle - prevIdle
	busy := float64(totalDelta-idleDelta) / float64(totalDelta)
	pct := round1(clampPct(busy * 100.0))
	return &pct
}

// parseMemInfo computes used memory percent from /proc/meminfo using
// MemAvailable, the kernel's own reclaimable estimate.
func parseMemInfo(data []byte) *float64 {
	var totalKB, availableKB int64
	for _, line := range strings.Split(string(data), "\n") {
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			totalKB = parseMemLine(line)
		case strings.HasPrefix(line, "MemAvailable:"):
			availableKB = parseMemLine(line)
		}
		if totalKB > 0 && availableKB > 0 {
			break
		}
	}
	if totalKB <= 0 {
		return nil
	}
	pct := round1(clampPct(float64(totalKB-availableKB) / float64(totalKB) * 100.0))
	return &pct
}

func parseMemLine(line string) int64 {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0
	}
	v, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseThermal reads a sysfs thermal_zone temp file, millidegrees C.
func parseThermal(data []byte) *float64 {
	raw, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return nil
	}
	temp := round1(float64(raw) / 1000.0)
	return &temp
}

// parseUptime reads the first field of /proc/uptime, truncated to
// whole seconds.
func parseUptime(data []byte) *int64 {
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	sec := int64(v)
	return &sec
}

// parseLoadAvg reads the three load averages from /proc/loadavg.
// Unreadable input yields zeros, matching a host with no load data.
func parseLoadAvg(data []byte) (load1, load5, load15 float64) {
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return 0, 0, 0
	}
	parse := func(s string) float64 {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return round2(v)
	}
	return parse(fields[0]), parse(fields[1]), parse(fields[2])
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
