// Package wifi implements the data-network collaborator. Host defers to the
// operating system's own network stack (association is managed out of
// process); Sim is a scripted network for the simulator and tests.
package wifi

import (
	"bufio"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Host reports association state from the host's interfaces. Associate only
// records the requested network; the OS supplicant is the real authority, so
// Associated re-probes the interfaces on every call and the monitor sees a
// carrier loss within one polling interval.
type Host struct {
	mu        sync.Mutex
	networkID string
}

// NewHost creates a Host network collaborator.
func NewHost() *Host {
	return &Host{}
}

// Associate records the target network and reports whether the host already
// has a usable address.
func (h *Host) Associate(networkID, secret string, timeout time.Duration) bool {
	h.mu.Lock()
	h.networkID = networkID
	h.mu.Unlock()
	return h.Associated()
}

// Associated reports whether any non-loopback interface has an IPv4 address.
func (h *Host) Associated() bool {
	return h.LocalAddr() != ""
}

// LocalAddr returns the first non-loopback IPv4 address, or "".
func (h *Host) LocalAddr() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			return ip4.String()
		}
	}
	return ""
}

// SignalStrength reads the first interface's link quality from
// /proc/net/wireless, or 0 when unavailable (wired hosts, non-Linux).
func (h *Host) SignalStrength() int {
	f, err := os.Open("/proc/net/wireless")
	if err != nil {
		return 0
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for line := 0; sc.Scan(); line++ {
		if line < 2 { // two header lines
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		// field 3 is signal level in dBm, printed with a trailing dot
		v, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			continue
		}
		return int(v)
	}
	return 0
}

// Sim is a scripted network: association succeeds on the Nth Associate
// attempt and holds until Drop is called.
type Sim struct {
	mu           sync.Mutex
	succeedAfter int
	attempts     int
	associated   bool
}

// NewSim creates a Sim that associates on attempt number succeedAfter
// (1 = first attempt).
func NewSim(succeedAfter int) *Sim {
	if succeedAfter < 1 {
		succeedAfter = 1
	}
	return &Sim{succeedAfter: succeedAfter}
}

// Associate counts an attempt and flips to associated once the scripted
// attempt count is reached.
func (s *Sim) Associate(networkID, secret string, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.attempts >= s.succeedAfter {
		s.associated = true
	}
	return s.associated
}

// Associated reports the scripted association state.
func (s *Sim) Associated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.associated
}

// Drop forces disassociation, as if the access point went away.
func (s *Sim) Drop() {
	s.mu.Lock()
	s.associated = false
	s.mu.Unlock()
}

// Attempts returns how many Associate calls were made.
func (s *Sim) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// LocalAddr returns the loopback address used by the simulator.
func (s *Sim) LocalAddr() string { return "127.0.0.1" }

// SignalStrength returns a fixed simulated RSSI.
func (s *Sim) SignalStrength() int { return -55 }
