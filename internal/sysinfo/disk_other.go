//go:build !linux

package sysinfo

// diskPercent is unavailable off Linux; the metric reads as unknown.
func diskPercent(path string) *float64 { return nil }
