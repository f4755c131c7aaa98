// Package core contains the connectivity orchestrator: four gated tasks
// (connector, monitor, hardware, video) wired over one shared gate, encoding
// the rover's full connect/operate/recover lifecycle.
package core

import (
	"log"
	"time"

	"RoverLink/internal/gate"
	"RoverLink/internal/peripheral"
)

// connector owns the connexion phase: it drives pairing -> credentials ->
// association and is the system's primary recovery path. Each LoopOnce call
// is one attempt at the next unmet step and may be a retry of a previous
// failed attempt; retry is level-triggered on the Connecting flag.
type connector struct {
	gate         *gate.Gate
	link         peripheral.Link
	network      peripheral.Network
	poll         time.Duration
	assocTimeout time.Duration
}

func newConnector(g *gate.Gate, l peripheral.Link, n peripheral.Network, poll, assocTimeout time.Duration) *connector {
	return &connector{gate: g, link: l, network: n, poll: poll, assocTimeout: assocTimeout}
}

// Setup establishes a clean slate for a new connection cycle.
func (c *connector) Setup() {
	c.gate.Clear(gate.LinkPaired | gate.NetworkReady | gate.Operational)
	log.Printf("[connector] setup: link state cleared")
}

func (c *connector) LoopOnce() {
	// Every step sleeps one poll interval before its check: a reconnection
	// cycle spans at least three intervals even when every collaborator is
	// immediately ready, so the workers observe Operational low and tear
	// down before it comes back.

	// a) wait for the control link to pair
	if !c.gate.Get().Has(gate.LinkPaired) {
		log.Printf("[connector] waiting for control link...")
		for c.gate.Get().Has(gate.Connecting) {
			time.Sleep(c.poll)
			if c.link.Paired() {
				c.gate.Set(gate.LinkPaired)
				break
			}
		}
		if !c.gate.Get().Has(gate.Connecting) {
			return // phase abandoned externally
		}
		log.Printf("[connector] control link paired")
	}

	// b) wait for credentials; a link drop forces the next attempt back to (a)
	log.Printf("[connector] waiting for credentials...")
	for {
		time.Sleep(c.poll)
		if !c.gate.Get().Has(gate.Connecting) {
			return
		}
		if !c.link.Paired() {
			c.gate.Clear(gate.LinkPaired)
			return
		}
		if c.link.CredentialsAvailable() {
			break
		}
	}
	creds, ok := c.link.TakeCredentials()
	if !ok {
		return
	}
	log.Printf("[connector] credentials: network=%q", creds.NetworkID)

	// c) associate with a bounded timeout, aborting early on link loss
	log.Printf("[connector] associating...")
	c.network.Associate(creds.NetworkID, creds.Secret, c.assocTimeout)
	deadline := time.Now().Add(c.assocTimeout)
	for {
		time.Sleep(c.poll)
		if !c.gate.Get().Has(gate.Connecting) {
			return
		}
		if !c.link.Paired() {
			c.gate.Clear(gate.LinkPaired)
			break
		}
		if c.network.Associated() || !time.Now().Before(deadline) {
			break
		}
	}
	if !c.network.Associated() {
		log.Printf("[connector] association failed/timed out, retrying")
		return
	}

	// d) success: NetworkReady and Operational are raised together, then the
	// connexion phase is lowered. This is the sole transition that un-gates
	// the monitor/hardware/video tasks.
	log.Printf("[connector] network up: addr=%s rssi=%d dBm", c.network.LocalAddr(), c.network.SignalStrength())
	c.gate.Set(gate.NetworkReady | gate.Operational)
	c.gate.Clear(gate.Connecting)
}

// Teardown is diagnostics only; it runs once Connecting was cleared by a
// successful association.
func (c *connector) Teardown() {
	log.Printf("[connector] idle (waiting for loss)")
}
