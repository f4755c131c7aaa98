// Package device implements Loopback, an in-memory Device used by the
// simulator and tests when no physical serial port is present.
package device

import (
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Loopback operations after Close.
var ErrClosed = errors.New("device closed")

// Respond maps a written line to an optional reply line. Returning ok=false
// produces no reply (e.g. for one-way drive commands).
type Respond func(line string) (reply string, ok bool)

// Loopback is an in-memory Device. Written lines are handed to the Respond
// callback; replies are queued for ReadLine.
type Loopback struct {
	mu      sync.Mutex
	respond Respond
	queue   chan string
	written []string
	closed  bool
}

// NewLoopback creates a Loopback with the given responder (may be nil).
func NewLoopback(respond Respond) *Loopback {
	return &Loopback{respond: respond, queue: make(chan string, 16)}
}

// WriteLine records the line and queues the responder's reply, if any.
func (l *Loopback) WriteLine(s string) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.written = append(l.written, s)
	respond := l.respond
	l.mu.Unlock()

	if respond == nil {
		return nil
	}
	if reply, ok := respond(s); ok {
		select {
		case l.queue <- reply:
		default:
			// reply queue full: drop, like a saturated UART buffer
		}
	}
	return nil
}

// ReadLine pops the next queued reply, waiting up to timeout.
func (l *Loopback) ReadLine(timeout time.Duration) (string, error) {
	if timeout <= 0 {
		line, ok := <-l.queue
		if !ok {
			return "", ErrClosed
		}
		return line, nil
	}
	select {
	case line, ok := <-l.queue:
		if !ok {
			return "", ErrClosed
		}
		return line, nil
	case <-time.After(timeout):
		return "", errors.New("read timeout")
	}
}

// Written returns a copy of every line written so far.
func (l *Loopback) Written() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.written))
	copy(out, l.written)
	return out
}

// Close marks the device closed.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	close(l.queue)
	return nil
}
