// Package gate implements the shared connectivity gate: a single word of
// boolean flags mutated by several tasks and used to start/stop gated tasks.
// Any task may set or clear any flag; waiters are woken when a flag they
// watch is raised.
package gate

import (
	"strings"
	"sync"
	"time"
)

// Flags is a bit set of connection/run phases.
type Flags uint32

const (
	// Connecting is set while the reconnection/negotiation phase is active.
	Connecting Flags = 1 << iota
	// LinkPaired is set while the control link has a paired client.
	LinkPaired
	// NetworkReady is set while the data network is associated.
	NetworkReady
	// Operational grants permission for the worker tasks to run.
	Operational
)

// Has reports whether any bit of mask is set in f.
func (f Flags) Has(mask Flags) bool { return f&mask != 0 }

// String renders the set bits for logs, e.g. "CON|RUN".
func (f Flags) String() string {
	names := []struct {
		bit  Flags
		name string
	}{
		{Connecting, "CON"},
		{LinkPaired, "LINK"},
		{NetworkReady, "NET"},
		{Operational, "RUN"},
	}
	var parts []string
	for _, n := range names {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, "|")
}

// Gate holds the flag word. Set/Clear/Get are total operations with no error
// states; WaitAny blocks the caller until at least one awaited bit is raised.
// Waking is implemented by closing a broadcast channel that is regenerated on
// every mutation, so a flag set before a wait call is always observed.
type Gate struct {
	mu      sync.Mutex
	flags   Flags
	changed chan struct{}
}

// New creates a Gate with all flags low.
func New() *Gate {
	return &Gate{changed: make(chan struct{})}
}

// Set raises the given flags and wakes any waiter watching them.
func (g *Gate) Set(f Flags) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.flags&f == f {
		return // no change, no wake
	}
	g.flags |= f
	close(g.changed)
	g.changed = make(chan struct{})
}

// Clear lowers the given flags. Waiters are woken so polling loops observe
// the change on their next check.
func (g *Gate) Clear(f Flags) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.flags&f == 0 {
		return
	}
	g.flags &^= f
	close(g.changed)
	g.changed = make(chan struct{})
}

// Get returns a snapshot of the flag word.
func (g *Gate) Get() Flags {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.flags
}

// WaitAny blocks until at least one bit of mask is set and returns the flag
// snapshot that satisfied the wait. The awaited bits are not cleared.
func (g *Gate) WaitAny(mask Flags) Flags {
	for {
		g.mu.Lock()
		if g.flags&mask != 0 {
			f := g.flags
			g.mu.Unlock()
			return f
		}
		ch := g.changed
		g.mu.Unlock()
		<-ch
	}
}

// WaitAnyTimeout is WaitAny bounded by d. It returns the snapshot and true on
// success, or the current flags and false when d elapses first.
func (g *Gate) WaitAnyTimeout(mask Flags, d time.Duration) (Flags, bool) {
	deadline := time.NewTimer(d)
	defer deadline.Stop()
	for {
		g.mu.Lock()
		if g.flags&mask != 0 {
			f := g.flags
			g.mu.Unlock()
			return f, true
		}
		ch := g.changed
		g.mu.Unlock()
		select {
		case <-ch:
		case <-deadline.C:
			return g.Get(), false
		}
	}
}
