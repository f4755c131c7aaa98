// Rover firmware entrypoint: loads the YAML config, opens the motor-board
// serial bus, starts the websocket control link and the connectivity
// orchestrator, then waits for a shutdown signal. Resources are closed and
// checked on exit.
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"RoverLink/internal/camera"
	"RoverLink/internal/core"
	"RoverLink/internal/device"
	"RoverLink/internal/link"
	"RoverLink/internal/model"
	"RoverLink/internal/motorboard"
	"RoverLink/internal/util"
	"RoverLink/internal/wifi"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "path to YAML config")
	flag.Parse()

	cfg, err := model.Load(*cfgPath)
	if err != nil {
		util.Warn("config %s: %v; using defaults", *cfgPath, err)
		cfg = model.Default()
	}

	// motor board: fall back to a loopback device when the serial port is
	// absent (bench runs without the co-processor)
	var dev device.Device
	sd, err := device.NewSerialDevice(cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		util.Warn("open serial %s: %v; using loopback board", cfg.Serial.Device, err)
		dev = device.NewLoopback(benchBoard)
	} else {
		dev = sd
	}
	defer func() {
		if cerr := dev.Close(); cerr != nil {
			util.Warn("close device: %v", cerr)
		}
	}()

	board, err := motorboard.New(dev, motorboard.Config{
		NominalVoltage: cfg.Motor.NominalVoltage,
		EmptyVoltage:   cfg.Battery.EmptyVoltage,
		FullVoltage:    cfg.Battery.FullVoltage,
	})
	if err != nil {
		log.Fatalf("motor board: %v", err)
	}

	cam, err := camera.NewFileCamera(cfg.Camera.Dir, cfg.Camera.PoolSize)
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
		Network: wifi.NewHost(),
		Motor:   board,
		Battery: board,
		Camera:  cam,
	})
	c.StartAll()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("rover stopping")
}

// benchBoard answers battery requests with a healthy pack voltage so the
// control loop stays alive on a bench without the co-processor.
func benchBoard(line string) (string, bool) {
	if line == "BAT?" {
		return "BAT,7.90", true
	}
	return "", false
}
