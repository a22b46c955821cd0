package display

import (
	"bytes"
	"errors"
	"testing"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/BeatGlow/lchdisplay/conn"
)

type testBusWrite struct {
	dc   gpio.Level
	data []byte
}

type testBus struct {
	dc     *gpiotest.Pin
	writes []testBusWrite
	mode   conn.SPIMode
}

func (b *testBus) String() string { return "test" }
func (b *testBus) Close() error   { return nil }

func (b *testBus) Write(p []byte) (int, error) {
	b.writes = append(b.writes, testBusWrite{dc: b.dc.Read(), data: append([]byte(nil), p...)})
	return len(p), nil
}

func (b *testBus) SetMode(mode conn.SPIMode) error {
	b.mode = mode
	return nil
}

func (b *testBus) SetMaxSpeed(int) error { return nil }

func TestSPIConn(t *testing.T) {
	dc := &gpiotest.Pin{N: "DC", L: gpio.High}
	bus := &testBus{dc: dc}
	c := &spiConn{
		bus:       bus,
		dc:        dc,
		dcLevel:   gpio.High,
		reset:     &gpiotest.Pin{N: "RST"},
		batchSize: 2,
	}

	if err := c.Command(dcsCASET, 0, 1, 2); err != nil {
		t.Fatal(err)
	}
	want := []testBusWrite{
		{gpio.Low, []byte{dcsCASET}},
		{gpio.High, []byte{0, 1}},
		{gpio.High, []byte{2}},
	}
	if len(bus.writes) != len(want) {
		t.Fatalf("expected %d writes, got %d", len(want), len(bus.writes))
	}
	for i, w := range want {
		if v := bus.writes[i]; v.dc != w.dc || !bytes.Equal(v.data, w.data) {
			t.Errorf("write %d: expected %v %x, got %v %x", i, w.dc, w.data, v.dc, v.data)
		}
	}

	if err := c.Data(); err != nil {
		t.Fatal(err)
	}
	if len(bus.writes) != len(want) {
		t.Errorf("expected empty data to be skipped")
	}

	if err := c.SetMode(conn.SPIMode3); err != nil || bus.mode != conn.SPIMode3 {
		t.Errorf("expected mode 3, got %d (%v)", bus.mode, err)
	}
}

func TestOpenSPIPins(t *testing.T) {
	if _, err := OpenSPI(&SPIConfig{DC: &gpiotest.Pin{N: "DC"}}); !errors.Is(err, ErrResetPin) {
		t.Errorf("expected ErrResetPin, got %v", err)
	}
	if _, err := OpenSPI(&SPIConfig{Reset: &gpiotest.Pin{N: "RST"}}); !errors.Is(err, ErrDCPin) {
		t.Errorf("expected ErrDCPin, got %v", err)
	}
	_, err := OpenSPI(&SPIConfig{Reset: &gpiotest.Pin{N: "RST"}, DC: &gpiotest.Pin{N: "DC"}, SpeedHz: 12345})
	if err == nil {
		t.Error("expected invalid speed to fail")
	}
}
