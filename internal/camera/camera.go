// Package camera implements the camera collaborator as a JPEG frame source
// backed by a finite buffer pool. FileCamera cycles through a directory of
// JPEG files (or a single built-in frame), which stands in for a sensor
// driver on hosts without one.
package camera

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"RoverLink/internal/peripheral"
)

// FileCamera serves JPEG frames round-robin from a fixed set of images.
// Capture borrows a frame from the pool and returns nil when the pool is
// exhausted, which callers treat as "no frame this iteration".
type FileCamera struct {
	images [][]byte
	pool   chan *peripheral.Frame

	mu   sync.Mutex
	next int
}

// NewFileCamera loads every *.jpg / *.jpeg file under dir.
func NewFileCamera(dir string, poolSize int) (*FileCamera, error) {
	var images [][]byte
	for _, pattern := range []string{"*.jpg", "*.jpeg"} {
		paths, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("read frame %s: %w", p, err)
			}
			images = append(images, b)
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no JPEG frames in %s", dir)
	}
	return newCamera(images, poolSize)
}

// NewStatic serves the same JPEG for every frame.
func NewStatic(jpeg []byte, poolSize int) (*FileCamera, error) {
	return newCamera([][]byte{jpeg}, poolSize)
}

func newCamera(images [][]byte, poolSize int) (*FileCamera, error) {
	if poolSize <= 0 {
		return nil, errors.New("camera: pool size must be > 0")
	}
	c := &FileCamera{images: images, pool: make(chan *peripheral.Frame, poolSize)}
	for i := 0; i < poolSize; i++ {
		c.pool <- &peripheral.Frame{}
	}
	return c, nil
}

// Capture borrows a frame from the pool, or returns nil when none is free.
func (c *FileCamera) Capture() *peripheral.Frame {
	select {
	case f := <-c.pool:
		c.mu.Lock()
		f.Data = c.images[c.next]
		c.next = (c.next + 1) % len(c.images)
		c.mu.Unlock()
		return f
	default:
		return nil
	}
}

// Release returns a frame to the pool.
func (c *FileCamera) Release(f *peripheral.Frame) {
	if f == nil {
		return
	}
	f.Data = nil
	select {
	case c.pool <- f:
	default:
		// double release: pool already full, drop the handle
	}
}
