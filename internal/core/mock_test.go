package core

import (
	"sync"
	"time"

	"RoverLink/internal/peripheral"
)

// eventLog records cross-task ordering for the recovery tests.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) add(s string) {
	e.mu.Lock()
	e.events = append(e.events, s)
	e.mu.Unlock()
}

func (e *eventLog) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.events))
	copy(out, e.events)
	return out
}

func (e *eventLog) count(s string) int {
	n := 0
	for _, ev := range e.snapshot() {
		if ev == s {
			n++
		}
	}
	return n
}

type fakeLink struct {
	mu        sync.Mutex
	paired    bool
	creds     *peripheral.Credentials
	autoRearm bool // credentials re-delivered after each take
	takes     int
	sp        peripheral.Setpoint
	battery   []float64
}

func (l *fakeLink) Paired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paired
}

func (l *fakeLink) setPaired(p bool) {
	l.mu.Lock()
	l.paired = p
	l.mu.Unlock()
}

func (l *fakeLink) setCredentials(c peripheral.Credentials) {
	l.mu.Lock()
	l.creds = &c
	l.mu.Unlock()
}

func (l *fakeLink) CredentialsAvailable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creds != nil
}

func (l *fakeLink) TakeCredentials() (peripheral.Credentials, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.creds == nil {
		return peripheral.Credentials{}, false
	}
	c := *l.creds
	l.takes++
	if !l.autoRearm {
		l.creds = nil
	}
	return c, true
}

func (l *fakeLink) SetBatteryLevel(p float64) {
	l.mu.Lock()
	l.battery = append(l.battery, p)
	l.mu.Unlock()
}

func (l *fakeLink) setSetpoint(sp peripheral.Setpoint) {
	l.mu.Lock()
	l.sp = sp
	l.mu.Unlock()
}

func (l *fakeLink) Setpoint() peripheral.Setpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sp
}

func (l *fakeLink) batteryPushes() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]float64, len(l.battery))
	copy(out, l.battery)
	return out
}

type fakeNetwork struct {
	mu        sync.Mutex
	succeedOn int // Associate attempt number that succeeds (1 = first)
	attempts  int
	up        bool
}

func (n *fakeNetwork) Associate(id, secret string, timeout time.Duration) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.attempts++
	if n.succeedOn > 0 && n.attempts >= n.succeedOn {
		n.up = true
	}
	return n.up
}

func (n *fakeNetwork) Associated() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.up
}

func (n *fakeNetwork) drop() {
	n.mu.Lock()
	n.up = false
	n.mu.Unlock()
}

func (n *fakeNetwork) attemptCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.attempts
}

func (n *fakeNetwork) LocalAddr() string   { return "192.168.4.2" }
func (n *fakeNetwork) SignalStrength() int { return -42 }

type driveCmd struct {
	lateral float64
	dir     peripheral.Direction
	speed   float64
}

type fakeMotor struct {
	mu       sync.Mutex
	nominal  float64
	enables  int
	disables int
	decays   []peripheral.DecayMode
	drives   []driveCmd
}

func (m *fakeMotor) Enable() {
	m.mu.Lock()
	m.enables++
	m.mu.Unlock()
}

func (m *fakeMotor) Disable() {
	m.mu.Lock()
	m.disables++
	m.mu.Unlock()
}

func (m *fakeMotor) SetDecayMode(d peripheral.DecayMode) {
	m.mu.Lock()
	m.decays = append(m.decays, d)
	m.mu.Unlock()
}

func (m *fakeMotor) Drive(lateral float64, dir peripheral.Direction, speed float64) {
	m.mu.Lock()
	m.drives = append(m.drives, driveCmd{lateral, dir, speed})
	m.mu.Unlock()
}

func (m *fakeMotor) NominalVoltage() float64 { return m.nominal }

func (m *fakeMotor) lastDrive() (driveCmd, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.drives) == 0 {
		return driveCmd{}, false
	}
	return m.drives[len(m.drives)-1], true
}

func (m *fakeMotor) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enables, m.disables
}

type fakeBattery struct {
	mu      sync.Mutex
	volts   float64
	pct     float64
	samples int
}

func (b *fakeBattery) Sample() {
	b.mu.Lock()
	b.samples++
	b.mu.Unlock()
}

func (b *fakeBattery) Voltage() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.volts
}

func (b *fakeBattery) Percent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pct
}

type fakeCamera struct {
	mu       sync.Mutex
	frames   []*peripheral.Frame
	released int
}

func (c *fakeCamera) Capture() *peripheral.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	f := c.frames[0]
	c.frames = c.frames[1:]
	return f
}

func (c *fakeCamera) Release(f *peripheral.Frame) {
	c.mu.Lock()
	c.released++
	c.mu.Unlock()
}

func (c *fakeCamera) releasedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}
