// Simulator: runs the full orchestrator on a desktop with no hardware. The
// motor board is a loopback device, the network is scripted, the camera
// serves a built-in test frame, and an embedded operator client dials the
// control link over websocket to deliver credentials and a sweeping
// setpoint. Point an MJPEG viewer at the video address to watch the stream.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"RoverLink/internal/camera"
	"RoverLink/internal/core"
	"RoverLink/internal/device"
	"RoverLink/internal/link"
	"RoverLink/internal/model"
	"RoverLink/internal/motorboard"
	"RoverLink/internal/wifi"
)

// testFrame is a minimal 1x1 JPEG so viewers accept the stream.
var testFrame = []byte{
	0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 0x4a, 0x46, 0x49, 0x46, 0x00, 0x01,
	0x01, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0xff, 0xdb, 0x00, 0x43,
	0x00, 0x08, 0x06, 0x06, 0x07, 0x06, 0x05, 0x08, 0x07, 0x07, 0x07, 0x09,
	0x09, 0x08, 0x0a, 0x0c, 0x14, 0x0d, 0x0c, 0x0b, 0x0b, 0x0c, 0x19, 0x12,
	0x13, 0x0f, 0x14, 0x1d, 0x1a, 0x1f, 0x1e, 0x1d, 0x1a, 0x1c, 0x1c, 0x20,
	0x24, 0x2e, 0x27, 0x20, 0x22, 0x2c, 0x23, 0x1c, 0x1c, 0x28, 0x37, 0x29,
	0x2c, 0x30, 0x31, 0x34, 0x34, 0x34, 0x1f, 0x27, 0x39, 0x3d, 0x38, 0x32,
	0x3c, 0x2e, 0x33, 0x34, 0x32, 0xff, 0xc0, 0x00, 0x0b, 0x08, 0x00, 0x01,
	0x00, 0x01, 0x01, 0x01, 0x11, 0x00, 0xff, 0xc4, 0x00, 0x1f, 0x00, 0x00,
	0x01, 0x05, 0x01, 0x01, 0x01, 0x01, 0x01, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0a, 0x0b, 0xff, 0xc4, 0x00, 0x14, 0x10, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xff, 0xda, 0x00, 0x08, 0x01, 0x01, 0x00, 0x00, 0x3f, 0x00, 0x7f, 0xff,
	0xd9,
}

func main() {
	linkAddr := flag.String("link", ":8080", "control link address")
	videoAddr := flag.String("video", ":8081", "video stream address")
	failures := flag.Int("failures", 2, "association attempts before the simulated network comes up")
	flag.Parse()

	cfg := model.Default()
	cfg.Link.Addr = *linkAddr
	cfg.Video.Addr = *videoAddr
	// keep the simulator snappy
	cfg.Timing.PollIntervalMs = 50
	cfg.Timing.AssociateTimeoutMs = 2000

	// simulated motor board: drive commands are swallowed, battery sags
	// slowly from full
	start := time.Now()
	dev := device.NewLoopback(func(line string) (string, bool) {
		if line != "BAT?" {
			return "", false
		}
		volts := 8.4 - time.Since(start).Minutes()*0.05
		return fmt.Sprintf("BAT,%.2f", volts), true
	})
	board, err := motorboard.New(dev, motorboard.Config{
		NominalVoltage: cfg.Motor.NominalVoltage,
		EmptyVoltage:   cfg.Battery.EmptyVoltage,
		FullVoltage:    cfg.Battery.FullVoltage,
	})
	if err != nil {
		log.Fatalf("motor board: %v", err)
	}

	cam, err := camera.NewStatic(testFrame, cfg.Camera.PoolSize)
	if err != nil {
		log.Fatalf("camera: %v", err)
	}

	lk := link.New(cfg.Link.Addr)
	go func() {
		if err := lk.Start(); err != nil {
			log.Fatalf("control link: %v", err)
		}
	}()
	defer lk.Stop()

	c := core.New(cfg, core.Peripherals{
		Link:    lk,
		Network: wifi.NewSim(*failures + 1),
		Motor:   board,
		Battery: board,
		Camera:  cam,
	})
	c.StartAll()

	go operator(cfg.Link.Addr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("simulator stopping")
}

// operator plays the mobile app: it dials the control link, sends Wi-Fi
// credentials, then sweeps the setpoint forever.
func operator(addr string) {
	time.Sleep(300 * time.Millisecond) // let the link server come up

	url := "ws://127.0.0.1" + addr + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Printf("[operator] dial %s: %v", url, err)
		return
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Printf("[operator] warning: close: %v", cerr)
		}
	}()

	creds := model.ControlMessage{Type: "credentials", NetworkID: "sim-net", Secret: "sim-secret"}
	if err := conn.WriteJSON(creds); err != nil {
		log.Printf("[operator] send credentials: %v", err)
		return
	}
	log.Printf("[operator] credentials sent")

	// drain battery pushes so the server-side write buffer never fills
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	t := 0.0
	for range time.Tick(200 * time.Millisecond) {
		t += 0.2
		msg := model.ControlMessage{
			Type:         "setpoint",
			Lateral:      int(80 * math.Sin(t)),
			Longitudinal: 100,
			Speed:        50 + int(40*math.Sin(t/3)),
			Decay:        0,
		}
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("[operator] send setpoint: %v", err)
			return
		}
	}
}
