// Package peripheral defines the capability surfaces the rover core consumes
// from its collaborators: control link, data network, motor driver, battery
// sampler and camera. Implementations are in-process peripheral objects; each
// method call must be individually safe to interleave across tasks, but no
// multi-call atomicity is assumed.
package peripheral

import "time"

// Direction is the longitudinal drive direction.
type Direction int

const (
	Backward Direction = iota
	Forward
)

// DecayMode selects the motor driver's PWM braking style.
type DecayMode int

const (
	DecayFast DecayMode = iota
	DecaySlow
)

// Credentials carries the network id/secret delivered over the control link.
type Credentials struct {
	NetworkID string
	Secret    string
}

// Setpoint is a snapshot of the operator input, pre-clamped by the link:
// Lateral -100..100, Longitudinal 0 (backward) or 100 (forward),
// SpeedPct 0..100, Decay 0 (fast) or 1 (slow).
type Setpoint struct {
	Lateral      int
	Longitudinal int
	SpeedPct     int
	Decay        int
}

// Frame is one camera frame borrowed from a finite buffer pool. It must be
// released back to the camera as soon as the consumer is done with it.
type Frame struct {
	Data []byte
}

// Link is the short-range pairing/control channel (BLE-equivalent) used to
// deliver network credentials and live operator input.
type Link interface {
	Paired() bool
	CredentialsAvailable() bool
	// TakeCredentials consumes the pending credentials. Each credential set
	// is delivered at most once; ok is false when none are pending.
	TakeCredentials() (c Credentials, ok bool)
	SetBatteryLevel(percent float64)
	Setpoint() Setpoint
}

// Network is the data network (Wi-Fi-equivalent) used for the video stream.
type Network interface {
	// Associate begins association with the given network. It may return
	// before Associated reports true; the caller owns the bounded-timeout
	// poll so it can abort early on link loss.
	Associate(networkID, secret string, timeout time.Duration) bool
	Associated() bool
	LocalAddr() string
	SignalStrength() int
}

// Motor is the drive train. Drive mixes lateral in [-1,1] and speed in [0,1]
// into left/right duty cycles internally.
type Motor interface {
	Enable()
	Disable()
	SetDecayMode(m DecayMode)
	Drive(lateral float64, dir Direction, speed float64)
	NominalVoltage() float64
}

// Battery is the pack voltage sampler. Percent is clamped to 0..100.
type Battery interface {
	Sample()
	Voltage() float64
	Percent() float64
}

// Camera produces JPEG frames from a finite pool. Capture returns nil when
// no frame is available; every non-nil frame must be passed to Release.
type Camera interface {
	Capture() *Frame
	Release(f *Frame)
}
