package core

import (
	"RoverLink/internal/gate"
	"RoverLink/internal/model"
	"RoverLink/internal/peripheral"
	"RoverLink/internal/task"
	"RoverLink/internal/util"
)

// Peripherals bundles the collaborator implementations injected at boot.
type Peripherals struct {
	Link    peripheral.Link
	Network peripheral.Network
	Motor   peripheral.Motor
	Battery peripheral.Battery
	Camera  peripheral.Camera
}

// Core wires the four gated tasks over one shared gate. Created once at
// boot; the tasks live for the process lifetime.
type Core struct {
	Gate  *gate.Gate
	tasks []*task.Task
}

// New constructs the orchestrator from config and peripherals. Nothing runs
// until StartAll.
func New(cfg *model.Config, p Peripherals) *Core {
	g := gate.New()
	t := cfg.Timing

	con := newConnector(g, p.Link, p.Network, t.PollInterval(), t.AssociateTimeout())
	mon := newMonitor(g, p.Link, p.Network)
	hw := newHardware(g, p.Link, p.Motor, p.Battery)
	vid := newVideo(g, p.Camera, p.Network, cfg.Video.Addr)

	return &Core{
		Gate: g,
		tasks: []*task.Task{
			task.New(task.Config{Name: "connector", Gate: g, Bit: gate.Connecting, Period: t.ConnectorPeriod()}, con),
			task.New(task.Config{Name: "monitor", Gate: g, Bit: gate.Operational, Period: t.MonitorPeriod()}, mon),
			task.New(task.Config{Name: "hardware", Gate: g, Bit: gate.Operational, Period: t.HardwarePeriod()}, hw),
			task.New(task.Config{Name: "video", Gate: g, Bit: gate.Operational, Period: t.VideoPeriod()}, vid),
		},
	}
}

// StartAll spawns every task and triggers the entry sequence by raising the
// connexion phase. Tasks are fire-and-forget; there is no StopAll.
func (c *Core) StartAll() {
	for _, t := range c.tasks {
		t.Start()
	}
	c.Gate.Set(gate.Connecting)
	util.Info("core started: %d tasks, gate=%s", len(c.tasks), c.Gate.Get())
}
