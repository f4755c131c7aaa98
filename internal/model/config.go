// Package model defines shared configuration and message structures used to
// initialize the RoverLink core and its peripheral collaborators.
package model

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the root structure loaded from configs/config.yml.
type Config struct {
	Link    LinkConfig    `yaml:"link"`
	Video   VideoConfig   `yaml:"video"`
	Serial  SerialConfig  `yaml:"serial"`
	Camera  CameraConfig  `yaml:"camera"`
	Motor   MotorConfig   `yaml:"motor"`
	Battery BatteryConfig `yaml:"battery"`
	Timing  TimingConfig  `yaml:"timing"`
}

// LinkConfig configures the websocket control link server.
type LinkConfig struct {
	Addr string `yaml:"addr"` // e.g. ":8080"
}

// VideoConfig configures the MJPEG stream listener.
type VideoConfig struct {
	Addr string `yaml:"addr"` // e.g. ":8081"
}

// SerialConfig configures the motor-board serial bus.
type SerialConfig struct {
	Device string `yaml:"device"` // e.g. "/dev/serial0"
	Baud   int    `yaml:"baud"`
}

// CameraConfig configures the frame source.
type CameraConfig struct {
	Dir      string `yaml:"dir"`       // directory of JPEG frames
	PoolSize int    `yaml:"pool_size"` // finite frame buffer pool
}

// MotorConfig carries the drive-train electrical parameters.
type MotorConfig struct {
	NominalVoltage float64 `yaml:"nominal_voltage"`
}

// BatteryConfig maps pack voltage to a 0..100 percentage.
type BatteryConfig struct {
	EmptyVoltage float64 `yaml:"empty_voltage"`
	FullVoltage  float64 `yaml:"full_voltage"`
}

// TimingConfig holds the per-task iteration periods and the connector's
// polling/association bounds, all in milliseconds.
type TimingConfig struct {
	PollIntervalMs     int `yaml:"poll_interval_ms"`
	ConnectorPeriodMs  int `yaml:"connector_period_ms"`
	MonitorPeriodMs    int `yaml:"monitor_period_ms"`
	HardwarePeriodMs   int `yaml:"hardware_period_ms"`
	VideoPeriodMs      int `yaml:"video_period_ms"`
	AssociateTimeoutMs int `yaml:"associate_timeout_ms"`
}

// Load reads a YAML config file and applies defaults for missing fields.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a Config with every field at its default value.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero-valued fields with the firmware defaults
// (hardware at 2 Hz, video at ~15 fps, 100 ms connector polling).
func (c *Config) ApplyDefaults() {
	if c.Link.Addr == "" {
		c.Link.Addr = ":8080"
	}
	if c.Video.Addr == "" {
		c.Video.Addr = ":8081"
	}
	if c.Serial.Device == "" {
		c.Serial.Device = "/dev/serial0"
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 115200
	}
	if c.Camera.PoolSize == 0 {
		c.Camera.PoolSize = 4
	}
	if c.Motor.NominalVoltage == 0 {
		c.Motor.NominalVoltage = 6.0
	}
	if c.Battery.EmptyVoltage == 0 {
		c.Battery.EmptyVoltage = 6.0
	}
	if c.Battery.FullVoltage == 0 {
		c.Battery.FullVoltage = 8.4
	}
	t := &c.Timing
	if t.PollIntervalMs == 0 {
		t.PollIntervalMs = 100
	}
	if t.ConnectorPeriodMs == 0 {
		t.ConnectorPeriodMs = 100
	}
	if t.MonitorPeriodMs == 0 {
		t.MonitorPeriodMs = 100
	}
	if t.HardwarePeriodMs == 0 {
		t.HardwarePeriodMs = 500
	}
	if t.VideoPeriodMs == 0 {
		t.VideoPeriodMs = 66 // ~15 fps
	}
	if t.AssociateTimeoutMs == 0 {
		t.AssociateTimeoutMs = 15000
	}
}

// PollInterval returns the connector's fixed polling interval.
func (t TimingConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMs) * time.Millisecond
}

// ConnectorPeriod returns the connector task iteration period.
func (t TimingConfig) ConnectorPeriod() time.Duration {
	return time.Duration(t.ConnectorPeriodMs) * time.Millisecond
}

// MonitorPeriod returns the monitor task iteration period.
func (t TimingConfig) MonitorPeriod() time.Duration {
	return time.Duration(t.MonitorPeriodMs) * time.Millisecond
}

// HardwarePeriod returns the hardware task iteration period.
func (t TimingConfig) HardwarePeriod() time.Duration {
	return time.Duration(t.HardwarePeriodMs) * time.Millisecond
}

// VideoPeriod returns the video task iteration period.
func (t TimingConfig) VideoPeriod() time.Duration {
	return time.Duration(t.VideoPeriodMs) * time.Millisecond
}

// AssociateTimeout returns the bounded network association timeout.
func (t TimingConfig) AssociateTimeout() time.Duration {
	return time.Duration(t.AssociateTimeoutMs) * time.Millisecond
}
