package core

import (
	"log"

	"RoverLink/internal/gate"
	"RoverLink/internal/peripheral"
)

// hardware is the rover's control loop: sample the battery, read the
// operator setpoint, derate the commanded speed by the available voltage
// headroom, push battery telemetry back, and apply the drive command.
// Iterations are pure recomputation over collaborator state and therefore
// idempotent.
type hardware struct {
	gate    *gate.Gate
	link    peripheral.Link
	motor   peripheral.Motor
	battery peripheral.Battery
}

func newHardware(g *gate.Gate, l peripheral.Link, m peripheral.Motor, b peripheral.Battery) *hardware {
	return &hardware{gate: g, link: l, motor: m, battery: b}
}

// Setup arms the motor driver.
func (h *hardware) Setup() {
	h.motor.Enable()
}

func (h *hardware) LoopOnce() {
	h.battery.Sample()
	volts := h.battery.Voltage()
	percent := h.battery.Percent()

	// A sagging pack must not command more duty cycle than its headroom
	// justifies; a dead reading derates to zero instead of dividing by it.
	headroom := 0.0
	if volts > 0 {
		headroom = h.motor.NominalVoltage() / volts
		if headroom > 1 {
			headroom = 1
		}
	}

	sp := h.link.Setpoint()
	lateral := float64(sp.Lateral) / 100.0
	dir := peripheral.Backward
	if sp.Longitudinal == 100 {
		dir = peripheral.Forward
	}
	speed := headroom * float64(sp.SpeedPct) / 100.0

	h.link.SetBatteryLevel(percent)

	decay := peripheral.DecayFast
	if sp.Decay != 0 {
		decay = peripheral.DecaySlow
	}
	h.motor.SetDecayMode(decay)
	h.motor.Drive(lateral, dir, speed)

	log.Printf("[hardware] batt=%.2fV (%.0f%%) lat=%.2f dir=%d spd=%.2f decay=%d",
		volts, percent, lateral, dir, speed, decay)
}

// Teardown disarms the motor driver.
func (h *hardware) Teardown() {
	h.motor.Disable()
}
