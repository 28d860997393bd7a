package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != DefaultPort {
		t.Fatalf("port=%q, want %q", cfg.Port, DefaultPort)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Fatalf("poll interval=%v, want %v", cfg.PollInterval, DefaultPollInterval)
	}
	if cfg.GPIO.PinPump1 != 4 || cfg.GPIO.PinLiftDown != 24 {
		t.Fatalf("unexpected default pins: %+v", cfg.GPIO)
	}
	if cfg.Tanks.Levels["soak"] != 72 {
		t.Fatalf("soak level default=%v, want 72", cfg.Tanks.Levels["soak"])
	}
}

func TestLoad_ReadsFileValues(t *testing.T) {
	dir := writeConfig(t, `
port: "9090"
db:
  path: /tmp/rig.db
  retention_days: 7
console:
  api_base: http://rig.local:8000
  poll_interval: 2s
gpio:
  lift_speed_mm_s: 5.5
  lift_max_mm: 800
ph_meter:
  enabled: false
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != "/tmp/rig.db" || cfg.RetentionDays != 7 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
	if cfg.APIBase != "http://rig.local:8000" || cfg.PollInterval != 2*time.Second {
		t.Fatalf("unexpected console config: base=%q poll=%v", cfg.APIBase, cfg.PollInterval)
	}
	if cfg.GPIO.LiftSpeedMMS != 5.5 || cfg.GPIO.LiftMaxMM != 800 {
		t.Fatalf("unexpected lift config: %+v", cfg.GPIO)
	}
	if cfg.PHMeter.Enabled {
		t.Fatalf("expected pH meter disabled")
	}
}

func TestLoad_ClampsPollIntervalFloor(t *testing.T) {
	dir := writeConfig(t, `
console:
  poll_interval: 50ms
recorder:
  sample_interval: 100ms
db:
  retention_days: 0
`)
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.PollInterval != MinPollInterval {
		t.Fatalf("poll interval=%v, want floor %v", cfg.PollInterval, MinPollInterval)
	}
	if cfg.SampleInterval != MinSampleInterval {
		t.Fatalf("sample interval=%v, want floor %v", cfg.SampleInterval, MinSampleInterval)
	}
	if cfg.RetentionDays != 1 {
		t.Fatalf("retention=%d, want 1", cfg.RetentionDays)
	}
}
