// Package link implements the control-link collaborator as a websocket
// endpoint: the BLE-equivalent short-range channel that delivers network
// credentials and live operator input, and carries battery telemetry back.
// One client at a time; a second connection attempt is refused while a
// session is active.
package link

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"RoverLink/internal/model"
	"RoverLink/internal/peripheral"
	"RoverLink/internal/util"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WSLink serves the control channel on /ws and a diagnostics snapshot on
// /status. It implements peripheral.Link.
type WSLink struct {
	Addr string
	Mux  *http.ServeMux

	server *http.Server

	mu      sync.Mutex
	conn    *websocket.Conn
	session string
	creds   *peripheral.Credentials
	sp      peripheral.Setpoint
}

// New constructs a WSLink listening on addr once started.
func New(addr string) *WSLink {
	l := &WSLink{Addr: addr, Mux: http.NewServeMux()}
	l.Mux.HandleFunc("/ws", l.handleWS)
	l.Mux.HandleFunc("/status", l.handleStatus)
	return l
}

// Start launches the HTTP server for the control channel.
// This call blocks until the server stops or fails.
func (l *WSLink) Start() error {
	l.server = &http.Server{Addr: l.Addr, Handler: l.Mux}
	log.Printf("[link] control link listening on %s", l.Addr)
	if err := l.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts down the HTTP server and drops any active client.
func (l *WSLink) Stop() {
	if l.server != nil {
		_ = l.server.Close()
	}
	l.mu.Lock()
	if l.conn != nil {
		_ = l.conn.Close()
		l.conn = nil
	}
	l.mu.Unlock()
}

// handleWS upgrades HTTP to websocket and runs the client's read loop.
// The session ends when the read loop breaks; pairing state follows it.
func (l *WSLink) handleWS(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	if l.conn != nil {
		l.mu.Unlock()
		http.Error(w, "control session already active", http.StatusConflict)
		return
	}
	l.mu.Unlock()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	session := uuid.NewString()[:8]

	l.mu.Lock()
	if l.conn != nil {
		// lost the race to another upgrade
		l.mu.Unlock()
		_ = conn.Close()
		return
	}
	l.conn = conn
	l.session = session
	l.mu.Unlock()
	log.Printf("[link] client paired (session %s)", session)

	for {
		var msg model.ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		l.handleMessage(msg)
	}

	l.mu.Lock()
	if l.conn == conn {
		l.conn = nil
		l.session = ""
	}
	l.mu.Unlock()
	_ = conn.Close()
	log.Printf("[link] client gone (session %s)", session)
}

func (l *WSLink) handleMessage(msg model.ControlMessage) {
	switch msg.Type {
	case "credentials":
		l.mu.Lock()
		l.creds = &peripheral.Credentials{NetworkID: msg.NetworkID, Secret: msg.Secret}
		l.mu.Unlock()
		log.Printf("[link] credentials received for %q", msg.NetworkID)
	case "setpoint":
		l.mu.Lock()
		l.sp = peripheral.Setpoint{
			Lateral:      clamp(msg.Lateral, -100, 100),
			Longitudinal: clamp(msg.Longitudinal, 0, 100),
			SpeedPct:     clamp(msg.Speed, 0, 100),
			Decay:        clamp(msg.Decay, 0, 1),
		}
		l.mu.Unlock()
	default:
		log.Printf("[link] unknown message type %q", msg.Type)
	}
}

// handleStatus serves a JSON snapshot of the link state.
func (l *WSLink) handleStatus(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	st := model.LinkStatus{
		Paired:             l.conn != nil,
		CredentialsPending: l.creds != nil,
		Lateral:            l.sp.Lateral,
		Longitudinal:       l.sp.Longitudinal,
		Speed:              l.sp.SpeedPct,
		Decay:              l.sp.Decay,
		Session:            l.session,
	}
	l.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		util.Warn("[link] write status: %v", err)
	}
}

// Paired reports whether a control client is attached.
func (l *WSLink) Paired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn != nil
}

// CredentialsAvailable reports whether unconsumed credentials are pending.
func (l *WSLink) CredentialsAvailable() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.creds != nil
}

// TakeCredentials consumes the pending credentials; each set is delivered at
// most once.
func (l *WSLink) TakeCredentials() (peripheral.Credentials, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.creds == nil {
		return peripheral.Credentials{}, false
	}
	c := *l.creds
	l.creds = nil
	return c, true
}

// SetBatteryLevel pushes battery telemetry to the attached client, if any.
// Write failures are left to the read loop to detect.
func (l *WSLink) SetBatteryLevel(percent float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return
	}
	msg := model.BatteryMessage{Type: "battery", Percent: percent}
	if err := l.conn.WriteJSON(msg); err != nil {
		util.Warn("[link] battery push: %v", err)
	}
}

// Setpoint returns the current operator setpoint snapshot.
func (l *WSLink) Setpoint() peripheral.Setpoint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sp
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
