package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoverLink/internal/gate"
	"RoverLink/internal/peripheral"
	"RoverLink/internal/task"
)

// recordingRunner wraps a task body to capture lifecycle ordering.
type recordingRunner struct {
	name  string
	inner task.Runner
	log   *eventLog
}

func (r *recordingRunner) Setup() {
	r.log.add(r.name + ".setup")
	r.inner.Setup()
}

func (r *recordingRunner) LoopOnce() { r.inner.LoopOnce() }

func (r *recordingRunner) Teardown() {
	r.log.add(r.name + ".teardown")
	r.inner.Teardown()
}

type harness struct {
	gate    *gate.Gate
	link    *fakeLink
	network *fakeNetwork
	motor   *fakeMotor
	log     *eventLog
}

// startHarness wires connector/monitor/hardware the way Core does and
// triggers the entry sequence. The connector polls at 5 ms while the workers
// poll at 1 ms, so the revoked window during a reconnection (at least three
// connector polls) always overlaps several worker gate checks.
func startHarness(t *testing.T, nw *fakeNetwork) *harness {
	t.Helper()

	g := gate.New()
	lk := &fakeLink{paired: true, autoRearm: true}
	lk.setCredentials(peripheral.Credentials{NetworkID: "home", Secret: "hunter2"})
	lk.setSetpoint(peripheral.Setpoint{Longitudinal: 100, SpeedPct: 40})
	motor := &fakeMotor{nominal: 6.0}
	battery := &fakeBattery{volts: 7.4, pct: 58}
	log := &eventLog{}

	con := &recordingRunner{"connector", newConnector(g, lk, nw, 5*time.Millisecond, 50*time.Millisecond), log}
	mon := &recordingRunner{"monitor", newMonitor(g, lk, nw), log}
	hw := &recordingRunner{"hardware", newHardware(g, lk, motor, battery), log}

	task.New(task.Config{Name: "connector", Gate: g, Bit: gate.Connecting, Period: time.Millisecond}, con).Start()
	task.New(task.Config{Name: "monitor", Gate: g, Bit: gate.Operational, Period: time.Millisecond}, mon).Start()
	task.New(task.Config{Name: "hardware", Gate: g, Bit: gate.Operational, Period: time.Millisecond}, hw).Start()

	g.Set(gate.Connecting)
	return &harness{gate: g, link: lk, network: nw, motor: motor, log: log}
}

func TestOrchestratorReachesOperational(t *testing.T) {
	h := startHarness(t, &fakeNetwork{succeedOn: 1})

	f, ok := h.gate.WaitAnyTimeout(gate.Operational, 2*time.Second)
	require.True(t, ok, "orchestrator never reached Operational")
	assert.True(t, f.Has(gate.NetworkReady))

	// the connexion phase lowers within one polling interval of success
	require.Eventually(t, func() bool {
		return !h.gate.Get().Has(gate.Connecting)
	}, time.Second, time.Millisecond)

	// workers came up: the motor was armed and driven
	require.Eventually(t, func() bool {
		_, ok := h.motor.lastDrive()
		return ok
	}, time.Second, time.Millisecond)
}

func TestOrchestratorConvergesAfterAssociationFailures(t *testing.T) {
	h := startHarness(t, &fakeNetwork{succeedOn: 3})

	_, ok := h.gate.WaitAnyTimeout(gate.Operational, 5*time.Second)
	require.True(t, ok)
	assert.GreaterOrEqual(t, h.network.attemptCount(), 3)
}

func TestOrchestratorRecoveryLoop(t *testing.T) {
	h := startHarness(t, &fakeNetwork{succeedOn: 1})

	_, ok := h.gate.WaitAnyTimeout(gate.Operational, 2*time.Second)
	require.True(t, ok)
	require.Eventually(t, func() bool {
		enables, _ := h.motor.counts()
		return enables == 1
	}, time.Second, time.Millisecond)

	// force a network loss while running
	h.network.drop()

	// the monitor revokes Operational and re-arms the connector within a
	// polling interval
	require.Eventually(t, func() bool {
		f := h.gate.Get()
		return !f.Has(gate.Operational) && f.Has(gate.Connecting)
	}, time.Second, time.Millisecond)

	// the whole cycle converges again: drop-recover ends Operational
	_, ok = h.gate.WaitAnyTimeout(gate.Operational, 2*time.Second)
	require.True(t, ok, "orchestrator never recovered")
	require.Eventually(t, func() bool {
		return h.log.count("hardware.setup") >= 2
	}, time.Second, time.Millisecond)

	// the motor was disarmed exactly once, strictly between the two arms:
	// hardware observed the revoked window before Operational came back
	events := h.log.snapshot()
	firstTeardown, secondSetup, setups := -1, -1, 0
	for i, e := range events {
		switch e {
		case "hardware.setup":
			setups++
			if setups == 2 {
				secondSetup = i
			}
		case "hardware.teardown":
			if firstTeardown < 0 {
				firstTeardown = i
			}
		}
	}
	require.GreaterOrEqual(t, firstTeardown, 0, "hardware never tore down across the loss")
	assert.Less(t, firstTeardown, secondSetup, "motor must disarm before it re-arms")
	assert.Equal(t, 1, h.log.count("hardware.teardown"))

	enables, disables := h.motor.counts()
	assert.GreaterOrEqual(t, enables, 2, "hardware re-armed after recovery")
	assert.Equal(t, 1, disables, "motor disarmed once during the loss")
}

func TestPhasesAreEventuallyExclusive(t *testing.T) {
	// Connecting and Operational may overlap for at most one polling
	// interval around the success transition; steady state is exclusive
	h := startHarness(t, &fakeNetwork{succeedOn: 1})

	_, ok := h.gate.WaitAnyTimeout(gate.Operational, 2*time.Second)
	require.True(t, ok)

	require.Eventually(t, func() bool {
		f := h.gate.Get()
		return f.Has(gate.Operational) != f.Has(gate.Connecting)
	}, time.Second, time.Millisecond)
}
