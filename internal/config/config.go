package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// SourceID returns ID, falling back to Name and then URL.
func (c ICSConfig) SourceID() string {
	switch {
	case c.ID != "":
		return c.ID
	case c.Name != "":
		return c.Name
	default:
		return c.URL
	}
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the HTTP API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// IndicatorConfig controls the LED strip.
type IndicatorConfig struct {
	// Driver is "log" (no hardware) or "spi" (WS2812 strip on an SPI port).
	Driver string `yaml:"driver" json:"driver"`
	// SPIPort is the periph.io SPI port name; empty selects the first port.
	SPIPort string `yaml:"spi_port" json:"spi_port"`
	// LEDs is the number of pixels on the strip.
	LEDs int `yaml:"leds" json:"leds"`
	// ActiveFrom / ActiveUntil bound (inclusive) the hours at which the
	// strip shows tomorrow's bins. Outside that window it is dark.
	ActiveFrom  int `yaml:"active_from" json:"active_from"`
	ActiveUntil int `yaml:"active_until" json:"active_until"`
	// Brightness scales every colour, 0-255.
	Brightness int `yaml:"brightness" json:"brightness"`
	// Palette maps a bin token (the first word of SUMMARY, upper-cased) to
	// a "#rrggbb" colour.
	Palette map[string]string `yaml:"palette" json:"palette"`
	// Order decides segment order when several bins are due on one day.
	Order []string `yaml:"order" json:"order"`
}

// LogConfig selects the log format and level.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used to decide what "tomorrow" is.
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string for feed refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the per-feed HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Strict rejects feeds with content after END:VCALENDAR.
	Strict bool `yaml:"strict" json:"strict"`

	// Fallback decodes a feed with the general-purpose iCalendar library
	// when the strict grammar rejects it.
	Fallback bool `yaml:"fallback" json:"fallback"`

	// HorizonDays is the default length of the schedule view.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// ICS is the list of subscribed ICS sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	Indicator IndicatorConfig `yaml:"indicator" json:"indicator"`

	Log LogConfig `yaml:"log" json:"log"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

func defaultPalette() map[string]string {
	return map[string]string{
		"BLACK": "#ffffff",
		"BLUE":  "#0000ff",
		"GREEN": "#00ff00",
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Europe/London",
		RefreshCron: "0 * * * *",
		CacheDir:    "/var/lib/bindicator/ics-cache",
		HorizonDays: 14,
		ICS:         []ICSConfig{},
		Indicator: IndicatorConfig{
			Driver:      "log",
			LEDs:        16,
			ActiveFrom:  17,
			ActiveUntil: 22,
			Brightness:  255,
			Palette:     defaultPalette(),
			Order:       []string{"BLACK", "BLUE", "GREEN"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "plain",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}

	ind := &c.Indicator
	switch ind.Driver {
	case "log", "spi":
	default:
		ind.Driver = def.Indicator.Driver
	}
	if ind.LEDs <= 0 {
		ind.LEDs = def.Indicator.LEDs
	}
	if ind.Brightness <= 0 || ind.Brightness > 255 {
		ind.Brightness = def.Indicator.Brightness
	}
	if len(ind.Palette) == 0 {
		ind.Palette = defaultPalette()
	}
	if len(ind.Order) == 0 {
		ind.Order = def.Indicator.Order
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("config: refresh %q: %w", c.RefreshCron, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	ind := c.Indicator
	if ind.ActiveFrom < 0 || ind.ActiveFrom > 23 || ind.ActiveUntil < 0 || ind.ActiveUntil > 23 {
		return fmt.Errorf("config: indicator hours must be within 0-23, got %d-%d", ind.ActiveFrom, ind.ActiveUntil)
	}
	if ind.ActiveFrom > ind.ActiveUntil {
		return fmt.Errorf("config: indicator active_from %d is after active_until %d", ind.ActiveFrom, ind.ActiveUntil)
	}
	for i, src := range c.ICS {
		if src.URL == "" {
			return fmt.Errorf("config: ics[%d] has no url", i)
		}
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	// Start from the defaults so keys absent from the file keep them while
	// explicit zeros (active_from: 0) are honoured. The palette is replaced,
	// not merged.
	cfg := DefaultConfig()
	cfg.Indicator.Palette = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".bindicator-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
