// Package task implements the gated task wrapper: a perpetual goroutine that
// blocks on one gate bit, runs a setup/loop/teardown triple while the bit
// stays raised, then blocks again. This collapses "start/stop a subsystem in
// response to external conditions" into three callbacks plus one shared flag.
package task

import (
	"log"
	"time"

	"RoverLink/internal/gate"
)

// Runner is the setup/loop/teardown triple driven by a Task. LoopOnce must
// perform exactly one iteration and return; it may run zero, one, or many
// times per activation depending on timing between the gate flip and the
// poll, so iterations must be idempotent and cheap to skip.
type Runner interface {
	Setup()
	LoopOnce()
	Teardown()
}

// Hooks adapts optional callbacks to the Runner interface. Nil callbacks are
// skipped.
type Hooks struct {
	OnSetup    func()
	OnLoop     func()
	OnTeardown func()
}

func (h Hooks) Setup() {
	if h.OnSetup != nil {
		h.OnSetup()
	}
}

func (h Hooks) LoopOnce() {
	if h.OnLoop != nil {
		h.OnLoop()
	}
}

func (h Hooks) Teardown() {
	if h.OnTeardown != nil {
		h.OnTeardown()
	}
}

// Config describes one gated task.
type Config struct {
	Name   string
	Gate   *gate.Gate
	Bit    gate.Flags    // the single flag this task gates on
	Period time.Duration // sleep between iterations; 0 = self-paced
}

// Task drives a Runner through the WAITING -> ACTIVE -> WAITING cycle
// forever. There is no stop: tasks are scoped to the process lifetime.
type Task struct {
	cfg    Config
	runner Runner
}

// New creates a task; Start must be called to spawn it.
func New(cfg Config, r Runner) *Task {
	return &Task{cfg: cfg, runner: r}
}

// Start spawns the perpetual loop and returns immediately.
func (t *Task) Start() {
	go t.run()
}

func (t *Task) run() {
	for {
		t.cfg.Gate.WaitAny(t.cfg.Bit)
		log.Printf("[%s] START", t.cfg.Name)

		t.runner.Setup()

		// Polling design: a bit cleared mid-sleep is observed only after
		// the sleep ends.
		for t.cfg.Gate.Get().Has(t.cfg.Bit) {
			t.runner.LoopOnce()
			if t.cfg.Period > 0 {
				time.Sleep(t.cfg.Period)
			}
		}

		t.runner.Teardown()
		log.Printf("[%s] STOP", t.cfg.Name)
	}
}
