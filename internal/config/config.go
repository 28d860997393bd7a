package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults and floors. Poll cadence is floored so a misconfigured console
// cannot hammer the device.
const (
	DefaultPort           = "8000"
	DefaultDBPath         = "data/runtime.db"
	DefaultRetentionDays  = 30
	DefaultSampleInterval = 5 * time.Second
	MinSampleInterval     = 1 * time.Second

	DefaultAPIBase      = "http://127.0.0.1:8000"
	DefaultPollInterval = 1000 * time.Millisecond
	MinPollInterval     = 250 * time.Millisecond

	DefaultLiftSpeedMMS = 10.0
	DefaultLiftMaxMM    = 1000.0
)

// GPIO holds pin assignments and polarity for the relay board.
type GPIO struct {
	Backend string // "cdev", "stub", or "auto"
	Chip    string

	PinPump1      int
	PinPump2      int
	PinPump3      int
	PinValveFresh int
	PinValveHeat  int
	PinHeater     int
	PinLiftUp     int
	PinLiftDown   int

	RelayActiveLow  bool
	ValveActiveLow  bool
	HeaterActiveLow bool
	LiftActiveLow   bool

	LiftSpeedMMS float64
	LiftMaxMM    float64
}

// PHMeter holds the Modbus RTU settings for the soak-tank probe.
type PHMeter struct {
	Enabled      bool
	Port         string
	SlaveID      byte
	BaudRate     int
	Timeout      time.Duration
	PollInterval time.Duration
	StaleAfter   time.Duration
}

// TankDefaults are the configured fallback readings per tank.
type TankDefaults struct {
	Levels map[string]float64
	Temps  map[string]float64
	PHs    map[string]float64
}

// Config is the full backend + console configuration, read once at startup.
type Config struct {
	Port           string
	DBPath         string
	RetentionDays  int
	SampleInterval time.Duration

	APIBase      string
	PollInterval time.Duration

	GPIO    GPIO
	PHMeter PHMeter
	Tanks   TankDefaults
}

// Load reads configs/<name>.yml from the given directory, applies defaults,
// and clamps values to their floors. Environment variables (PICTL_ prefix)
// override file values for deploy-time tuning.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetEnvPrefix("PICTL")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine: defaults plus env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("db.path", DefaultDBPath)
	v.SetDefault("db.retention_days", DefaultRetentionDays)
	v.SetDefault("recorder.sample_interval", DefaultSampleInterval.String())

	v.SetDefault("console.api_base", DefaultAPIBase)
	v.SetDefault("console.poll_interval", DefaultPollInterval.String())

	v.SetDefault("gpio.backend", "auto")
	v.SetDefault("gpio.chip", "gpiochip0")
	v.SetDefault("gpio.pin_pump1", 4)
	v.SetDefault("gpio.pin_pump2", 14)
	v.SetDefault("gpio.pin_pump3", 15)
	v.SetDefault("gpio.pin_valve_fresh", 17)
	v.SetDefault("gpio.pin_valve_heat", 18)
	v.SetDefault("gpio.pin_heater", 27)
	v.SetDefault("gpio.pin_lift_up", 22)
	v.SetDefault("gpio.pin_lift_down", 24)
	v.SetDefault("gpio.relay_active_low", false)
	v.SetDefault("gpio.valve_active_low", false)
	v.SetDefault("gpio.heater_active_low", false)
	v.SetDefault("gpio.lift_active_low", false)
	v.SetDefault("gpio.lift_speed_mm_s", DefaultLiftSpeedMMS)
	v.SetDefault("gpio.lift_max_mm", DefaultLiftMaxMM)

	v.SetDefault("ph_meter.enabled", true)
	v.SetDefault("ph_meter.port", "/dev/ttyUSB0")
	v.SetDefault("ph_meter.slave_id", 1)
	v.SetDefault("ph_meter.baud_rate", 9600)
	v.SetDefault("ph_meter.timeout", "800ms")
	v.SetDefault("ph_meter.poll_interval", "2s")
	v.SetDefault("ph_meter.stale_after", "10s")

	v.SetDefault("tanks.levels", map[string]float64{"soak": 72, "fresh": 58, "heat": 46})
	v.SetDefault("tanks.temps", map[string]float64{"soak": 32.5, "fresh": 22.0, "heat": 45.0})
	v.SetDefault("tanks.phs", map[string]float64{"soak": 6.8, "fresh": 7.2, "heat": 6.5})
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:           v.GetString("port"),
		DBPath:         v.GetString("db.path"),
		RetentionDays:  v.GetInt("db.retention_days"),
		SampleInterval: v.GetDuration("recorder.sample_interval"),

		APIBase:      v.GetString("console.api_base"),
		PollInterval: v.GetDuration("console.poll_interval"),

		GPIO: GPIO{
			Backend:         v.GetString("gpio.backend"),
			Chip:            v.GetString("gpio.chip"),
			PinPump1:        v.GetInt("gpio.pin_pump1"),
			PinPump2:        v.GetInt("gpio.pin_pump2"),
			PinPump3:        v.GetInt("gpio.pin_pump3"),
			PinValveFresh:   v.GetInt("gpio.pin_valve_fresh"),
			PinValveHeat:    v.GetInt("gpio.pin_valve_heat"),
			PinHeater:       v.GetInt("gpio.pin_heater"),
			PinLiftUp:       v.GetInt("gpio.pin_lift_up"),
			PinLiftDown:     v.GetInt("gpio.pin_lift_down"),
			RelayActiveLow:  v.GetBool("gpio.relay_active_low"),
			ValveActiveLow:  v.GetBool("gpio.valve_active_low"),
			HeaterActiveLow: v.GetBool("gpio.heater_active_low"),
			LiftActiveLow:   v.GetBool("gpio.lift_active_low"),
			LiftSpeedMMS:    v.GetFloat64("gpio.lift_speed_mm_s"),
			LiftMaxMM:       v.GetFloat64("gpio.lift_max_mm"),
		},
		PHMeter: PHMeter{
			Enabled:      v.GetBool("ph_meter.enabled"),
			Port:         v.GetString("ph_meter.port"),
			SlaveID:      byte(v.GetInt("ph_meter.slave_id")),
			BaudRate:     v.GetInt("ph_meter.baud_rate"),
			Timeout:      v.GetDuration("ph_meter.timeout"),
			PollInterval: v.GetDuration("ph_meter.poll_interval"),
			StaleAfter:   v.GetDuration("ph_meter.stale_after"),
		},
		Tanks: TankDefaults{
			Levels: floatMap(v.GetStringMap("tanks.levels")),
			Temps:  floatMap(v.GetStringMap("tanks.temps")),
			PHs:    floatMap(v.GetStringMap("tanks.phs")),
		},
	}
	cfg.normalize()
	return cfg
}

// normalize clamps tunables to their floors and sane bounds.
func (c *Config) normalize() {
	if c.PollInterval < MinPollInterval {
		c.PollInterval = MinPollInterval
	}
	if c.SampleInterval < MinSampleInterval {
		c.SampleInterval = MinSampleInterval
	}
	if c.RetentionDays < 1 {
		c.RetentionDays = 1
	}
	if c.GPIO.LiftSpeedMMS < 0.1 {
		c.GPIO.LiftSpeedMMS = 0.1
	}
	if c.GPIO.LiftMaxMM < 1 {
		c.GPIO.LiftMaxMM = 1
	}
}

func floatMap(in map[string]any) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, raw := range in {
		switch val := raw.(type) {
		case float64:
			out[k] = val
		case int:
			out[k] = float64(val)
		case int64:
			out[k] = float64(val)
		}
	}
	return out
}
