// Package motorboard implements the motor and battery collaborators on top
// of a line-oriented device.Device. The board is a co-processor that owns the
// PWM drive stages and the pack-voltage ADC; this side only speaks the wire
// protocol defined in internal/parser.
package motorboard

import (
	"errors"
	"sync"
	"time"

	"RoverLink/internal/device"
	"RoverLink/internal/parser"
	"RoverLink/internal/peripheral"
	"RoverLink/internal/util"
)

const sampleTimeout = 200 * time.Millisecond

// Config carries the electrical parameters of the drive train and pack.
type Config struct {
	NominalVoltage float64 // motor nominal voltage, used for derating
	EmptyVoltage   float64 // pack voltage mapped to 0 %
	FullVoltage    float64 // pack voltage mapped to 100 %
}

// Board talks to the motor co-processor. It implements both peripheral.Motor
// and peripheral.Battery. Command failures are logged, never escalated: a
// board that stops answering simply leaves the last sampled voltage in place.
type Board struct {
	dev device.Device
	cfg Config

	mu    sync.Mutex
	volts float64
}

// New creates a Board over the given device.
func New(dev device.Device, cfg Config) (*Board, error) {
	if dev == nil {
		return nil, errors.New("motorboard: device required")
	}
	if cfg.NominalVoltage <= 0 {
		return nil, errors.New("motorboard: nominal voltage must be > 0")
	}
	if cfg.FullVoltage <= cfg.EmptyVoltage {
		return nil, errors.New("motorboard: full voltage must exceed empty voltage")
	}
	return &Board{dev: dev, cfg: cfg}, nil
}

// Enable arms the drive stages.
func (b *Board) Enable() {
	b.send(parser.EncodeEnable(true))
}

// Disable disarms the drive stages.
func (b *Board) Disable() {
	b.send(parser.EncodeEnable(false))
}

// SetDecayMode selects the PWM braking style.
func (b *Board) SetDecayMode(m peripheral.DecayMode) {
	b.send(parser.EncodeDecay(m))
}

// Drive forwards one drive command; the board mixes lateral/speed into
// left/right duty cycles.
func (b *Board) Drive(lateral float64, dir peripheral.Direction, speed float64) {
	b.send(parser.EncodeDrive(lateral, dir, speed))
}

// NominalVoltage returns the motor's nominal voltage.
func (b *Board) NominalVoltage() float64 {
	return b.cfg.NominalVoltage
}

// Sample requests one pack-voltage reading and stores it. On timeout or a
// malformed reply the previous reading is kept.
func (b *Board) Sample() {
	b.send(parser.BatteryRequest)
	line, err := b.dev.ReadLine(sampleTimeout)
	if err != nil {
		util.Warn("[motorboard] battery sample: %v", err)
		return
	}
	v, err := parser.ParseBattery(line)
	if err != nil {
		util.Warn("[motorboard] battery sample: %v", err)
		return
	}
	b.mu.Lock()
	b.volts = v
	b.mu.Unlock()
}

// Voltage returns the last sampled pack voltage (0 before the first sample).
func (b *Board) Voltage() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volts
}

// Percent maps the last sampled voltage linearly between the configured
// empty and full pack voltages, clamped to 0..100.
func (b *Board) Percent() float64 {
	v := b.Voltage()
	p := (v - b.cfg.EmptyVoltage) / (b.cfg.FullVoltage - b.cfg.EmptyVoltage) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func (b *Board) send(line string) {
	if err := b.dev.WriteLine(line); err != nil {
		util.Error("[motorboard] write %q: %v", line, err)
	}
}
