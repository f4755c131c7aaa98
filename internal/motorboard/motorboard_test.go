package motorboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RoverLink/internal/device"
	"RoverLink/internal/peripheral"
)

var testConfig = Config{NominalVoltage: 6.0, EmptyVoltage: 6.0, FullVoltage: 8.4}

func newTestBoard(t *testing.T, respond device.Respond) (*Board, *device.Loopback) {
	t.Helper()
	dev := device.NewLoopback(respond)
	t.Cleanup(func() { _ = dev.Close() })
	b, err := New(dev, testConfig)
	require.NoError(t, err)
	return b, dev
}

func batteryResponder(reply string) device.Respond {
	return func(line string) (string, bool) {
		if line == "BAT?" {
			return reply, true
		}
		return "", false
	}
}

func TestNewValidatesConfig(t *testing.T) {
	dev := device.NewLoopback(nil)
	defer dev.Close()

	_, err := New(nil, testConfig)
	assert.Error(t, err)

	_, err = New(dev, Config{NominalVoltage: 0, EmptyVoltage: 6, FullVoltage: 8.4})
	assert.Error(t, err)

	_, err = New(dev, Config{NominalVoltage: 6, EmptyVoltage: 8.4, FullVoltage: 6})
	assert.Error(t, err)
}

func TestBoardCommandLines(t *testing.T) {
	b, dev := newTestBoard(t, nil)

	b.Enable()
	b.SetDecayMode(peripheral.DecaySlow)
	b.Drive(-0.5, peripheral.Forward, 0.75)
	b.Disable()

	assert.Equal(t, []string{"EN,1", "DEC,1", "DRV,-0.50,1,0.75", "EN,0"}, dev.Written())
}

func TestBoardNominalVoltage(t *testing.T) {
	b, _ := newTestBoard(t, nil)
	assert.InDelta(t, 6.0, b.NominalVoltage(), 1e-9)
}

func TestSampleStoresVoltage(t *testing.T) {
	b, dev := newTestBoard(t, batteryResponder("BAT,7.40"))

	assert.Zero(t, b.Voltage(), "no reading before the first sample")
	b.Sample()

	assert.Equal(t, []string{"BAT?"}, dev.Written())
	assert.InDelta(t, 7.4, b.Voltage(), 1e-9)
}

func TestSampleKeepsLastValueOnMalformedReply(t *testing.T) {
	reply := "BAT,7.40"
	b, _ := newTestBoard(t, func(line string) (string, bool) { return reply, true })

	b.Sample()
	require.InDelta(t, 7.4, b.Voltage(), 1e-9)

	reply = "garbage"
	b.Sample()
	assert.InDelta(t, 7.4, b.Voltage(), 1e-9, "a bad reply must not clobber the last good reading")
}

func TestSampleKeepsLastValueOnTimeout(t *testing.T) {
	replies := 0
	b, _ := newTestBoard(t, func(line string) (string, bool) {
		replies++
		if replies == 1 {
			return "BAT,7.40", true
		}
		return "", false // board went silent
	})

	b.Sample()
	b.Sample()
	assert.InDelta(t, 7.4, b.Voltage(), 1e-9)
}

func TestPercentLinearMapping(t *testing.T) {
	cases := []struct {
		reply string
		want  float64
	}{
		{"BAT,6.0", 0},
		{"BAT,8.4", 100},
		{"BAT,7.2", 50},
		{"BAT,5.0", 0},   // below empty clamps
		{"BAT,9.0", 100}, // above full clamps
	}
	for _, c := range cases {
		b, _ := newTestBoard(t, batteryResponder(c.reply))
		b.Sample()
		assert.InDelta(t, c.want, b.Percent(), 1e-6, "reply %s", c.reply)
	}
}
