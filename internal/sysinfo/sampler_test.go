package sysinfo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSampler_CPUNeedsTwoSamples(t *testing.T) {
	dir := t.TempDir()
	writeProc(t, dir, "stat", "cpu  100 0 50 800 50 0 0 0 0 0\ncpu0 100 0 50 800 50 0 0 0 0 0\n")
	s := &Sampler{procRoot: dir, diskPath: "/"}

	st := s.Sample("stub")
	if st.CPUPercent != nil {
		t.Fatal("first sample must report cpu as unknown")
	}
	if st.GPIOBackend != "stub" {
		t.Fatalf("backend=%q", st.GPIOBackend)
	}

	writeProc(t, dir, "stat", "cpu  300 0 150 1500 50 0 0 0 0 0\n")
	st = s.Sample("stub")
	if st.CPUPercent == nil {
		t.Fatal("second sample must report cpu")
	}
	// total delta 1000, idle delta 700: 30% busy.
	if *st.CPUPercent != 30.0 {
		t.Fatalf("cpu=%v, want 30.0", *st.CPUPercent)
	}
}

func TestSampler_OptionalMetrics(t *testing.T) {
	dir := t.TempDir()
	writeProc(t, dir, "meminfo", "MemTotal:       4000000 kB\nMemAvailable:   3000000 kB\n")
	writeProc(t, dir, "uptime", "86400.00 170000.00\n")
	writeProc(t, dir, "loadavg", "1.25 0.75 0.50 2/400 9999\n")
	s := &Sampler{procRoot: dir, diskPath: "/"}

	st := s.Sample("cdev")
	if st.MemoryPercent == nil || *st.MemoryPercent != 25.0 {
		t.Fatalf("memory=%v, want 25.0", st.MemoryPercent)
	}
	if st.UptimeSec == nil || *st.UptimeSec != 86400 {
		t.Fatalf("uptime=%v, want 86400", st.UptimeSec)
	}
	if st.Load1 != 1.25 || st.Load5 != 0.75 || st.Load15 != 0.5 {
		t.Fatalf("load=%v/%v/%v", st.Load1, st.Load5, st.Load15)
	}
	// No stat file in this proc root: cpu stays unknown.
	if st.CPUPercent != nil {
		t.Fatal("cpu must be unknown without /proc/stat")
	}
}
