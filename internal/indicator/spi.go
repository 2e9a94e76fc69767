package indicator

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// WS2812 timing is produced by clocking each data bit out as three SPI bits
// at 2.4MHz: 110 for a one, 100 for a zero.
const (
	spiFrequency = 2400 * physic.KiloHertz
	bytesPerLED  = 3 * 3
	resetBytes   = 24 // > 80us low latches the strip
)

// SPIDriver drives a WS2812 strip wired to the MOSI pin of an SPI port.
type SPIDriver struct {
	mu   sync.Mutex
	port spi.PortCloser
	conn spi.Conn
	leds int
	buf  []byte
}

// NewSPIDriver opens the named SPI port ("" selects the first one).
func NewSPIDriver(portName string, leds int) (*SPIDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("indicator: periph host init failed: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("indicator: failed to open SPI port: %w", err)
	}
	conn, err := port.Connect(spiFrequency, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("indicator: failed to connect SPI: %w", err)
	}
	return &SPIDriver{
		port: port,
		conn: conn,
		leds: leds,
		buf:  make([]byte, leds*bytesPerLED+resetBytes),
	}, nil
}

func (d *SPIDriver) Show(f Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	encodeFrame(d.buf, f, d.leds)
	if err := d.conn.Tx(d.buf, nil); err != nil {
		return fmt.Errorf("indicator: SPI write failed: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (d *SPIDriver) Close() error {
	d.mu.Lock()
	encodeFrame(d.buf, nil, d.leds)
	_ = d.conn.Tx(d.buf, nil)
	d.mu.Unlock()
	return d.port.Close()
}

// encodeFrame writes leds pixels of f into buf in the strip's GRB order.
// Pixels past the end of f are sent dark; the trailing reset bytes are
// zeroed.
func encodeFrame(buf []byte, f Frame, leds int) {
	for i := range buf {
		buf[i] = 0
	}
	for i := 0; i < leds; i++ {
		var c Color
		if i < len(f) {
			c = f[i]
		}
		off := i * bytesPerLED
		encodeByte(buf[off:off+3], c.G)
		encodeByte(buf[off+3:off+6], c.R)
		encodeByte(buf[off+6:off+9], c.B)
	}
}

// encodeByte expands the 8 bits of v, MSB first, into 24 SPI bits.
func encodeByte(dst []byte, v uint8) {
	var bits uint32
	for i := 7; i >= 0; i-- {
		bits <<= 3
		if v&(1<<uint(i)) != 0 {
			bits |= 0b110
		} else {
			bits |= 0b100
		}
	}
	dst[0] = byte(bits >> 16)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits)
}
