package core

import (
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/google/uuid"

	"RoverLink/internal/gate"
	"RoverLink/internal/peripheral"
)

const (
	videoPreamble = "HTTP/1.1 200 OK\r\n" +
		"Content-Type: multipart/x-mixed-replace; boundary=frame\r\n" +
		"Cache-Control: no-cache\r\n" +
		"Connection: close\r\n\r\n"
	videoBoundary     = "--frame\r\n"
	clientWriteWindow = 2 * time.Second
	acceptWindow      = time.Millisecond
)

// video pushes a best-effort MJPEG stream, one frame per iteration, to at
// most one viewer. The listener and client are owned by this task alone.
type video struct {
	gate    *gate.Gate
	camera  peripheral.Camera
	network peripheral.Network
	addr    string

	ln      net.Listener
	client  net.Conn
	session string
}

func newVideo(g *gate.Gate, c peripheral.Camera, n peripheral.Network, addr string) *video {
	return &video{gate: g, camera: c, network: n, addr: addr}
}

// Setup opens the listening socket. On failure the listener stays nil and
// every iteration is a no-op until the next activation retries.
func (v *video) Setup() {
	ln, err := net.Listen("tcp", v.addr)
	if err != nil {
		log.Printf("[video] listen %s: %v", v.addr, err)
		return
	}
	v.ln = ln
	log.Printf("[video] MJPEG: http://%s%s/stream", v.network.LocalAddr(), v.addr)
}

func (v *video) LoopOnce() {
	if v.ln == nil {
		return
	}

	// no viewer attached: try a non-blocking accept; none pending is the
	// expected common case, not an error
	if v.client == nil {
		if tl, ok := v.ln.(*net.TCPListener); ok {
			_ = tl.SetDeadline(time.Now().Add(acceptWindow))
		}
		conn, err := v.ln.Accept()
		if err != nil {
			return
		}
		v.session = uuid.NewString()[:8]
		_ = conn.SetWriteDeadline(time.Now().Add(clientWriteWindow))
		if _, err := io.WriteString(conn, videoPreamble); err != nil {
			_ = conn.Close()
			return
		}
		v.client = conn
		log.Printf("[video] viewer attached (session %s)", v.session)
		return
	}

	fb := v.camera.Capture()
	if fb == nil {
		return
	}

	// one multipart chunk; the frame is borrowed only for the duration of
	// the write. Zero bytes transferred means a dead viewer only when there
	// were bytes to transfer.
	size := len(fb.Data)
	header := fmt.Sprintf("%sContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", videoBoundary, size)
	_ = v.client.SetWriteDeadline(time.Now().Add(clientWriteWindow))
	_, herr := io.WriteString(v.client, header)
	n, werr := v.client.Write(fb.Data)
	_, terr := io.WriteString(v.client, "\r\n")
	v.camera.Release(fb)

	if (n == 0 && size > 0) || herr != nil || werr != nil || terr != nil || !v.network.Associated() {
		v.dropClient() // slow/dead viewer, next iteration re-accepts
	}
}

// Teardown closes any open client and the listening socket.
func (v *video) Teardown() {
	v.dropClient()
	if v.ln != nil {
		_ = v.ln.Close()
		v.ln = nil
	}
	log.Printf("[video] server stopped")
}

func (v *video) dropClient() {
	if v.client == nil {
		return
	}
	_ = v.client.Close()
	v.client = nil
	log.Printf("[video] viewer dropped (session %s)", v.session)
}
