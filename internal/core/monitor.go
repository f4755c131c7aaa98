package core

import (
	"log"

	"RoverLink/internal/gate"
	"RoverLink/internal/peripheral"
)

// monitor is the sole failure detector. It re-reads the collaborators'
// status directly and, on any loss, revokes Operational and re-arms the
// connexion phase in one step. Recovery itself is delegated back to the
// connector.
type monitor struct {
	gate    *gate.Gate
	link    peripheral.Link
	network peripheral.Network
}

func newMonitor(g *gate.Gate, l peripheral.Link, n peripheral.Network) *monitor {
	return &monitor{gate: g, link: l, network: n}
}

func (m *monitor) Setup() {}

func (m *monitor) LoopOnce() {
	linkOK := m.link.Paired()
	netOK := m.network.Associated()
	if linkOK && netOK {
		return
	}
	log.Printf("[monitor] loss detected: link=%v network=%v", linkOK, netOK)

	// Operational falls in the same atomic step as the flag being revoked,
	// so no worker observes a half-cleared state.
	down := gate.Operational
	if !linkOK {
		down |= gate.LinkPaired
	}
	if !netOK {
		down |= gate.NetworkReady
	}
	m.gate.Clear(down)
	m.gate.Set(gate.Connecting)
}

func (m *monitor) Teardown() {
	log.Printf("[monitor] waiting for reconnection")
}
