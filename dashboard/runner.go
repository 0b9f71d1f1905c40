package dashboard

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/flavioheleno/fbpanel/config"
	"github.com/flavioheleno/fbpanel/pricefeed"
)

// Runner is the render loop. It is the only writer to the panel.
type Runner struct {
	Compositor *Compositor
	Setup      *SetupView
	Panel      Panel
	Coins      *config.Coins
	Prices     pricefeed.Provider
	State      *State
	Taps       <-chan image.Point

	Tick        time.Duration    // Default 100ms
	RotateEvery time.Duration    // Default 20s
	Now         func() time.Time // Optional
	Logger      *slog.Logger     // Optional

	// Render state
	btc       config.Coin
	rotation  []config.Coin
	index     int
	layout    Layout
	lastRot   time.Time
	lastClock string
	drawn     bool // Dashboard frame is on the panel
	setupUp   bool // Setup view is on the panel
}

func (r *Runner) defaults() {
	if r.Tick <= 0 {
		r.Tick = 100 * time.Millisecond
	}
	if r.RotateEvery <= 0 {
		r.RotateEvery = 20 * time.Second
	}
	if r.Now == nil {
		r.Now = time.Now
	}
	if r.Logger == nil {
		r.Logger = slog.Default()
	}
}

// Run draws the dashboard and keeps it updated until ctx is done.
//
// A panel write error ends the loop: it is logged, the panel is cleared once
// more so no half-drawn frame stays up, and the write error is returned. A
// failure of that last clear is ignored.
func (r *Runner) Run(ctx context.Context) error {
	r.defaults()
	btc, ok := r.Coins.Find(FallbackCoin)
	if !ok {
		return errors.New("dashboard: coins file has no btc entry")
	}
	r.btc = btc
	r.reloadRotation()

	t := time.NewTicker(r.Tick)
	defer t.Stop()
	for {
		if err := r.Step(); err != nil {
			return r.fail(err)
		}
		select {
		case <-ctx.Done():
			return nil
		case p := <-r.Taps:
			if err := r.HandleTap(p); err != nil {
				return r.fail(err)
			}
		case <-t.C:
		}
	}
}

func (r *Runner) fail(err error) error {
	r.Logger.Error("panel write failed, clearing panel", "err", err)
	if cerr := r.Panel.Clear(); cerr != nil {
		r.Logger.Debug("clearing panel after write failure", "err", cerr)
	}
	return err
}

// reloadRotation rebuilds the list of shown coins from the coins file.
func (r *Runner) reloadRotation() {
	r.rotation = r.Coins.Visible()
	if len(r.rotation) == 0 {
		r.rotation = []config.Coin{r.btc}
	}
	r.index = 0
}

// Step performs one tick of the current mode.
func (r *Runner) Step() error {
	if r.State.Mode() == ModeSetup {
		if r.setupUp {
			return nil
		}
		r.Setup.Reset()
		r.setupUp = true
		r.drawn = false
		return r.showSetup()
	}

	now := r.Now()
	if r.setupUp {
		r.setupUp = false
		r.reloadRotation()
	}
	if !r.drawn || now.Sub(r.lastRot) >= r.RotateEvery {
		if r.drawn {
			r.index = (r.index + 1) % len(r.rotation)
		}
		if err := r.redraw(now); err != nil {
			return err
		}
	}

	coin := r.rotation[r.index]
	if err := r.Compositor.UpdateCoin(r.layout, coin.Symbol, QuoteOf(r.Prices, coin), coin.RGB()); err != nil {
		return err
	}

	if s := now.Format(time.TimeOnly); s != r.lastClock {
		if err := r.Compositor.UpdateClock(now, r.btc.RGB()); err != nil {
			return err
		}
		r.lastClock = s
	}
	return nil
}

func (r *Runner) redraw(now time.Time) error {
	coin := r.rotation[r.index]
	l, err := r.Compositor.Redraw(QuoteOf(r.Prices, r.btc), r.btc.RGB(), coin.ID)
	if err != nil {
		return err
	}
	r.layout = l
	r.lastRot = now
	r.lastClock = ""
	r.drawn = true
	r.Logger.Debug("dashboard redrawn", "coin", coin.ID)
	return nil
}

// HandleTap applies a setup tap. Taps arriving outside setup mode are
// dropped.
func (r *Runner) HandleTap(p image.Point) error {
	if r.State.Mode() != ModeSetup || !r.setupUp {
		return nil
	}
	done, err := r.Setup.HandleTouch(p)
	if err != nil {
		r.Logger.Error("saving coins failed", "err", err)
		return nil
	}
	if done {
		r.Logger.Info("coins saved, leaving setup", "path", r.Setup.Path)
		r.State.EnterDashboard()
		return nil
	}
	return r.showSetup()
}

func (r *Runner) showSetup() error {
	img := r.Setup.Render()
	return r.Panel.Draw(img.Bounds(), img, image.Point{})
}
