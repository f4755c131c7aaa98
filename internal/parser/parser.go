// Package parser converts the motor-board wire format to structured values
// and vice-versa.
//
// Outbound command lines (core -> board):
//
//	EN,<0|1>
//	DEC,<0|1>
//	DRV,<lateral>,<direction>,<speed>
//	BAT?
//
// Inbound reply lines (board -> core):
//
//	BAT,<volts>
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"RoverLink/internal/peripheral"
)

// BatteryRequest asks the board for one pack-voltage sample.
const BatteryRequest = "BAT?"

// EncodeEnable builds the motor enable/disable command line.
func EncodeEnable(on bool) string {
	if on {
		return "EN,1"
	}
	return "EN,0"
}

// EncodeDecay builds the decay-mode command line (0 fast, 1 slow).
func EncodeDecay(m peripheral.DecayMode) string {
	if m == peripheral.DecaySlow {
		return "DEC,1"
	}
	return "DEC,0"
}

// EncodeDrive builds the drive command line. Lateral is in [-1,1], speed in
// [0,1]; direction is 0 backward, 1 forward. The board mixes these into
// left/right duty cycles.
func EncodeDrive(lateral float64, dir peripheral.Direction, speed float64) string {
	d := 0
	if dir == peripheral.Forward {
		d = 1
	}
	return fmt.Sprintf("DRV,%.2f,%d,%.2f", lateral, d, speed)
}

// ParseBattery parses a "BAT,<volts>" reply line into a voltage.
func ParseBattery(line string) (float64, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) != 2 || fields[0] != "BAT" {
		return 0, fmt.Errorf("expected BAT,<volts>, got %q", line)
	}
	v, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid volts %q", fields[1])
	}
	return v, nil
}
