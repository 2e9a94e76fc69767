package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bindicator/internal/bins"
)

var (
	blue  = Color{B: 255}
	green = Color{G: 255}
	white = Color{R: 255, G: 255, B: 255}
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := NewConfig(8, 17, 22, 255,
		map[string]string{"black": "#ffffff", "BLUE": "0000ff", "GREEN": "#00ff00"},
		[]string{"BLACK", "BLUE", "GREEN"})
	require.NoError(t, err)
	return cfg
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#12abEF")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 0x12, G: 0xab, B: 0xef}, c)
	assert.Equal(t, "#12abef", c.String())

	for _, bad := range []string{"", "#fff", "#gggggg", "#1234567"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestRender(t *testing.T) {
	cfg := testConfig(t)

	testCases := map[string]struct {
		set  bins.Set
		hour int
		want Frame
	}{
		"before window": {set: bins.NewSet("BLUE"), hour: 16, want: Fill(8, Off)},
		"after window":  {set: bins.NewSet("BLUE"), hour: 23, want: Fill(8, Off)},
		"window start":  {set: bins.NewSet("BLUE"), hour: 17, want: Fill(8, blue)},
		"window end":    {set: bins.NewSet("BLACK"), hour: 22, want: Fill(8, white)},
		"nothing due":   {set: bins.NewSet(), hour: 18, want: Fill(8, Off)},
		"unknown bin":   {set: bins.NewSet("BROWN"), hour: 18, want: Fill(8, Off)},
		"two bins": {
			set:  bins.NewSet("GREEN", "BLUE"),
			hour: 18,
			want: Frame{blue, blue, blue, blue, green, green, green, green},
		},
		"known and unknown": {set: bins.NewSet("GREEN", "BROWN"), hour: 18, want: Fill(8, green)},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Render(tc.set, tc.hour, cfg))
		})
	}
}

func TestRenderUnorderedBinsGoLast(t *testing.T) {
	cfg := testConfig(t)
	cfg.Order = []string{"GREEN"}

	f := Render(bins.NewSet("GREEN", "BLUE"), 18, cfg)
	assert.Equal(t, Frame{green, green, green, green, blue, blue, blue, blue}, f)
}

func TestRenderLowerCaseOrder(t *testing.T) {
	cfg, err := NewConfig(4, 0, 23, 255,
		map[string]string{"blue": "#0000ff", "green": "#00ff00"},
		[]string{"green", " Blue"})
	require.NoError(t, err)
	assert.Equal(t, []string{"GREEN", "BLUE"}, cfg.Order)

	f := Render(bins.NewSet("GREEN", "BLUE"), 12, cfg)
	assert.Equal(t, Frame{green, green, blue, blue}, f)
}

func TestRenderThreeBinsUneven(t *testing.T) {
	cfg := testConfig(t)

	f := Render(bins.NewSet("BLACK", "GREEN", "BLUE"), 18, cfg)
	assert.Equal(t, Frame{white, white, white, blue, blue, blue, green, green}, f)
}

func TestScale(t *testing.T) {
	f := Frame{white, blue}
	assert.Equal(t, Frame{{R: 127, G: 127, B: 127}, {B: 127}}, f.Scale(127))
	assert.Equal(t, Frame{Off, Off}, f.Scale(-1))
	assert.Equal(t, f, f.Scale(255))
}

func TestErrorFrame(t *testing.T) {
	cfg := testConfig(t)
	assert.Equal(t, Fill(8, Red), ErrorFrame(cfg))
}

func TestLogDriver(t *testing.T) {
	d := NewLogDriver()
	assert.Empty(t, d.Last())

	require.NoError(t, d.Show(Frame{blue, blue, green}))
	assert.Equal(t, Frame{blue, blue, green}, d.Last())
	assert.Equal(t, "2x#0000ff 1x#00ff00", describe(d.Last()))
	require.NoError(t, d.Close())
}

func TestOpenFallsBackToLog(t *testing.T) {
	_, ok := Open("log", "", 8).(*LogDriver)
	assert.True(t, ok)
}

func TestEncodeFrame(t *testing.T) {
	buf := make([]byte, 2*bytesPerLED+resetBytes)
	encodeFrame(buf, Frame{{R: 0xff}}, 2)

	// GRB: green 0x00, red 0xff, blue 0x00
	assert.Equal(t, []byte{0x92, 0x49, 0x24}, buf[0:3])
	assert.Equal(t, []byte{0xdb, 0x6d, 0xb6}, buf[3:6])
	assert.Equal(t, []byte{0x92, 0x49, 0x24}, buf[6:9])
	// second pixel is past the end of the frame and sent dark
	assert.Equal(t, []byte{0x92, 0x49, 0x24, 0x92, 0x49, 0x24, 0x92, 0x49, 0x24}, buf[9:18])
	assert.Equal(t, make([]byte, resetBytes), buf[18:])
}
