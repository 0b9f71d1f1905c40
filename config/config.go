// Package config holds the coins file and the runtime configuration of the
// panel program.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Duration is a time.Duration stored as a string such as "100ms".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config holds runtime configuration. Fields may be loaded from a JSON file
// and overridden by command-line flags.
type Config struct {
	Debug bool `json:"debug"`

	// Devices
	Framebuffer  string `json:"framebuffer"`
	TouchDevice  string `json:"touch_device"`
	BacklightPin string `json:"backlight_pin,omitempty"` // periph pin name, empty for none

	// Logical panel geometry
	Width    int `json:"width"`
	Height   int `json:"height"`
	Rotation int `json:"rotation"` // Degrees clockwise

	// Files
	CoinsFile       string `json:"coins_file"`
	CalibrationFile string `json:"calibration_file"`
	Backgrounds     string `json:"backgrounds"`

	// Timing
	Tick          Duration `json:"tick"`
	RotateEvery   Duration `json:"rotate_every"`
	PriceInterval Duration `json:"price_interval"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Framebuffer:     "/dev/fb1",
		TouchDevice:     "/dev/input/event0",
		Width:           480,
		Height:          320,
		Rotation:        180,
		CoinsFile:       "coins.json",
		CalibrationFile: "touch_calibration.json",
		Backgrounds:     "backgrounds",
		Tick:            Duration{100 * time.Millisecond},
		RotateEvery:     Duration{20 * time.Second},
		PriceInterval:   Duration{60 * time.Second},
	}
}

// Validate normalizes timings and rejects unusable geometry.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Tick.Duration <= 0 {
		c.Tick = def.Tick
	}
	if c.RotateEvery.Duration <= 0 {
		c.RotateEvery = def.RotateEvery
	}
	if c.PriceInterval.Duration <= 0 {
		c.PriceInterval = def.PriceInterval
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("config: invalid size %dx%d", c.Width, c.Height)
	}
	switch c.Rotation {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("config: invalid rotation %d", c.Rotation)
	}
	if c.Framebuffer == "" {
		return errors.New("config: framebuffer path is empty")
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the
// file does not exist it returns DefaultConfig(). On JSON error it returns
// defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
