package indicator

import (
	"fmt"
	"strconv"
	"strings"

	"bindicator/internal/bins"
)

// Color is an 8-bit RGB pixel value.
type Color struct {
	R, G, B uint8
}

var (
	Off = Color{}
	Red = Color{R: 255}
)

// ParseColor reads "#rrggbb" (the leading '#' is optional).
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("indicator: bad colour %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("indicator: bad colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Frame is the colour of every LED on the strip, in strip order.
type Frame []Color

// Fill returns an n-pixel frame of a single colour.
func Fill(n int, c Color) Frame {
	f := make(Frame, n)
	for i := range f {
		f[i] = c
	}
	return f
}

// Equal reports whether two frames are pixel-for-pixel identical.
func (f Frame) Equal(o Frame) bool {
	if len(f) != len(o) {
		return false
	}
	for i := range f {
		if f[i] != o[i] {
			return false
		}
	}
	return true
}

// Scale dims every pixel by brightness/255.
func (f Frame) Scale(brightness int) Frame {
	if brightness >= 255 {
		return f
	}
	if brightness < 0 {
		brightness = 0
	}
	out := make(Frame, len(f))
	for i, c := range f {
		out[i] = Color{
			R: uint8(int(c.R) * brightness / 255),
			G: uint8(int(c.G) * brightness / 255),
			B: uint8(int(c.B) * brightness / 255),
		}
	}
	return out
}

// Config describes the strip and how bins map to colours.
type Config struct {
	LEDs        int
	ActiveFrom  int // first hour (0-23) the strip is lit
	ActiveUntil int // last hour (0-23) the strip is lit
	Brightness  int
	Palette     map[string]Color
	Order       []string // segment order when several bins are due
}

// Active reports whether the strip is lit at hour.
func (c Config) Active(hour int) bool {
	return hour >= c.ActiveFrom && hour <= c.ActiveUntil
}

// NewConfig parses the hex palette of a configuration section. Bin names
// in palette and order are matched case-insensitively.
func NewConfig(leds, from, until, brightness int, palette map[string]string, order []string) (Config, error) {
	cfg := Config{
		LEDs:        leds,
		ActiveFrom:  from,
		ActiveUntil: until,
		Brightness:  brightness,
		Palette:     make(map[string]Color, len(palette)),
		Order:       make([]string, 0, len(order)),
	}
	for _, bin := range order {
		cfg.Order = append(cfg.Order, strings.ToUpper(strings.TrimSpace(bin)))
	}
	for bin, hex := range palette {
		c, err := ParseColor(hex)
		if err != nil {
			return Config{}, err
		}
		cfg.Palette[strings.ToUpper(bin)] = c
	}
	return cfg, nil
}

// Render decides what the strip shows for the bins due tomorrow at the
// given hour of the day. Outside the active window the strip is dark. A
// single known bin fills the strip; several split it into equal segments
// in Order. Bins missing from the palette are not shown.
func Render(set bins.Set, hour int, cfg Config) Frame {
	if !cfg.Active(hour) {
		return Fill(cfg.LEDs, Off)
	}

	var colors []Color
	seen := make(map[string]bool)
	for _, bin := range cfg.Order {
		if c, ok := cfg.Palette[bin]; ok && set.Has(bin) {
			colors = append(colors, c)
			seen[bin] = true
		}
	}
	// known bins that Order does not mention go last, in lexical order
	for _, bin := range set.Sorted() {
		if c, ok := cfg.Palette[bin]; ok && !seen[bin] {
			colors = append(colors, c)
		}
	}

	if len(colors) == 0 {
		return Fill(cfg.LEDs, Off)
	}
	f := make(Frame, cfg.LEDs)
	for i := range f {
		f[i] = colors[i*len(colors)/cfg.LEDs]
	}
	return f.Scale(cfg.Brightness)
}

// ErrorFrame is shown when the calendar cannot be loaded.
func ErrorFrame(cfg Config) Frame {
	return Fill(cfg.LEDs, Red).Scale(cfg.Brightness)
}
