package indicator

import (
	"fmt"
	"strings"
	"sync"

	appLog "bindicator/internal/log"
)

// Driver pushes frames to an LED strip.
type Driver interface {
	Show(f Frame) error
	Close() error
}

// LogDriver stands in for hardware: it logs each frame that differs from
// the previous one.
type LogDriver struct {
	mu   sync.Mutex
	last Frame
}

// NewLogDriver returns a Driver that only logs.
func NewLogDriver() *LogDriver {
	return &LogDriver{}
}

func (d *LogDriver) Show(f Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.last != nil && d.last.Equal(f) {
		return nil
	}
	d.last = append(Frame(nil), f...)
	appLog.Info("indicator frame", "pixels", describe(f))
	return nil
}

// Last returns the most recently shown frame.
func (d *LogDriver) Last() Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append(Frame(nil), d.last...)
}

func (d *LogDriver) Close() error { return nil }

// describe run-length encodes a frame, e.g. "8x#0000ff 8x#00ff00".
func describe(f Frame) string {
	var b strings.Builder
	for i := 0; i < len(f); {
		j := i
		for j < len(f) && f[j] == f[i] {
			j++
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%dx%s", j-i, f[i])
		i = j
	}
	return b.String()
}

// Open returns the driver named by name. When the SPI strip cannot be
// opened it falls back to the log driver so the rest of the program keeps
// working on machines without the hardware.
func Open(name, spiPort string, leds int) Driver {
	if name != "spi" {
		return NewLogDriver()
	}
	d, err := NewSPIDriver(spiPort, leds)
	if err != nil {
		appLog.Error("indicator: SPI strip unavailable, logging frames instead", err, "port", spiPort)
		return NewLogDriver()
	}
	return d
}
