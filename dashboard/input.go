package dashboard

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/flavioheleno/fbpanel/touch"
)

// ClockAreaWidth is the width of the strip along the right edge where a
// double tap opens the setup view.
const ClockAreaWidth = 52

// Input maps touches and routes them according to the UI mode.
//
// On the dashboard a double tap in the clock area enters setup mode. In
// setup mode every release is sent to Taps for the runner to apply.
type Input struct {
	Reader *touch.Reader
	Mapper *touch.Mapper
	State  *State
	Taps   chan<- image.Point
	W      int

	Now    func() time.Time // Optional
	Logger *slog.Logger     // Optional
}

// Run reads touches until ctx is done or the source fails.
func (in *Input) Run(ctx context.Context) error {
	now := in.Now
	if now == nil {
		now = time.Now
	}
	log := in.Logger
	if log == nil {
		log = slog.Default()
	}
	dt := &touch.DoubleTap{In: func(p image.Point) bool { return p.X >= in.W-ClockAreaWidth }}

	// The release of the tap that opened the setup view is not a setup tap.
	skipRelease := false
	for {
		c, err := in.Reader.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		// No position reported yet.
		if !c.Valid {
			continue
		}
		p := in.Mapper.Map(c.Raw.X, c.Raw.Y)

		switch in.State.Mode() {
		case ModeDashboard:
			if c.Down && dt.Tap(p, now()) && in.State.EnterSetup() {
				log.Info("double tap on clock, entering setup", "x", p.X, "y", p.Y)
				skipRelease = true
			}
		case ModeSetup:
			if c.Down {
				continue
			}
			if skipRelease {
				skipRelease = false
				continue
			}
			select {
			case in.Taps <- p:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
