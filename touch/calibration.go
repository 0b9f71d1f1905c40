package touch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
)

// Margin is the inset of the corner targets from the screen edges.
const Margin = 30

// NumTargets is the number of samples in a calibration run.
const NumTargets = 5

// ErrNoCalibration is returned by LoadCalibration when no usable calibration
// record exists.
var ErrNoCalibration = errors.New("touch: no calibration")

// Target is one crosshair shown during calibration.
type Target struct {
	Name  string
	Point image.Point
}

// Targets returns the five calibration targets for a w×h screen, in the
// order they are shown: the four corners clockwise from top left, then the
// centre.
func Targets(w, h int) []Target {
	return []Target{
		{"Top Left", image.Pt(Margin, Margin)},
		{"Top Right", image.Pt(w-Margin-1, Margin)},
		{"Bottom Right", image.Pt(w-Margin-1, h-Margin-1)},
		{"Bottom Left", image.Pt(Margin, h-Margin-1)},
		{"Center", image.Pt(w/2, h/2)},
	}
}

// Pair is an (x, y) point as stored in the calibration file.
type Pair [2]int

// Pt returns p as an image.Point.
func (p Pair) Pt() image.Point {
	return image.Pt(p[0], p[1])
}

// Sample is one raw reading recorded for a screen target.
type Sample struct {
	Raw    image.Point
	Screen image.Point
}

// Calibration is the persisted result of a calibration run.
type Calibration struct {
	ScreenPoints []Pair `json:"screen_points"`
	RawPoints    []Pair `json:"raw_points"`
}

// Add appends one sample.
func (c *Calibration) Add(s Sample) {
	c.ScreenPoints = append(c.ScreenPoints, Pair{s.Screen.X, s.Screen.Y})
	c.RawPoints = append(c.RawPoints, Pair{s.Raw.X, s.Raw.Y})
}

// Len returns the number of complete samples.
func (c *Calibration) Len() int {
	return min(len(c.ScreenPoints), len(c.RawPoints))
}

// Sample returns the i-th sample.
func (c *Calibration) Sample(i int) Sample {
	return Sample{Raw: c.RawPoints[i].Pt(), Screen: c.ScreenPoints[i].Pt()}
}

// Validate checks that the record holds exactly NumTargets pairs.
func (c *Calibration) Validate() error {
	if len(c.ScreenPoints) != NumTargets || len(c.RawPoints) != NumTargets {
		return fmt.Errorf("touch: calibration has %d screen and %d raw points, want %d",
			len(c.ScreenPoints), len(c.RawPoints), NumTargets)
	}
	return nil
}

// LoadCalibration reads a calibration record.
//
// A missing, unreadable or incomplete file yields an error wrapping
// ErrNoCalibration.
func LoadCalibration(path string) (*Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCalibration, err)
	}
	var c Calibration
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoCalibration, path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoCalibration, path, err)
	}
	return &c, nil
}

// Save writes the record as indented JSON.
func (c *Calibration) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("touch: encode calibration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("touch: save calibration: %w", err)
	}
	return nil
}

// Prompter shows a calibration target to the user.
type Prompter interface {
	ShowTarget(i int, t Target) error
}

// State is the progress of a calibration run. Values 0 to NumTargets-1 mean
// the run is waiting for the sample of that target.
type State int

// Done is the State after the last sample was recorded.
const Done State = NumTargets

func (s State) String() string {
	if s >= Done {
		return "Done"
	}
	return fmt.Sprintf("AwaitingSample(%d)", int(s))
}

// Calibrator collects one sample per target.
type Calibrator struct {
	Reader   *Reader
	Prompter Prompter
	W, H     int
	Logger   *slog.Logger // Optional

	state State
	cal   Calibration
}

// State returns the current progress.
func (c *Calibrator) State() State {
	return c.state
}

// Run shows each target in turn and records the raw position of the next
// release for which both axes were reported. Mis-taps are not retried.
func (c *Calibrator) Run(ctx context.Context) (*Calibration, error) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}
	targets := Targets(c.W, c.H)
	c.state = 0
	c.cal = Calibration{}

	for c.state != Done {
		t := targets[c.state]
		if err := c.Prompter.ShowTarget(int(c.state), t); err != nil {
			return nil, fmt.Errorf("touch: show target %q: %w", t.Name, err)
		}
		c.Reader.ResetAxes()

		for {
			ct, err := c.Reader.Next(ctx)
			if err != nil {
				return nil, err
			}
			if ct.Down || !ct.Valid {
				continue
			}
			c.cal.Add(Sample{Raw: ct.Raw, Screen: t.Point})
			log.Info("calibration sample", "target", t.Name, "raw_x", ct.Raw.X, "raw_y", ct.Raw.Y)
			break
		}
		c.state++
	}

	cal := c.cal
	return &cal, nil
}
