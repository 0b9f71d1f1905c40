package touch

import (
	"image"
	"time"
)

// DoubleTapInterval is the default delay two taps of a double tap must stay
// under.
const DoubleTapInterval = 400 * time.Millisecond

// DoubleTap detects two presses inside an area less than Interval apart.
type DoubleTap struct {
	// Interval defaults to DoubleTapInterval.
	Interval time.Duration
	// In reports whether a point belongs to the area. nil means anywhere.
	In func(image.Point) bool

	last time.Time
}

// Tap registers a press at p and reports whether it completes a double tap.
// Presses outside the area are ignored.
func (d *DoubleTap) Tap(p image.Point, now time.Time) bool {
	if d.In != nil && !d.In(p) {
		return false
	}
	interval := d.Interval
	if interval == 0 {
		interval = DoubleTapInterval
	}
	if !d.last.IsZero() && now.Sub(d.last) < interval {
		d.last = time.Time{}
		return true
	}
	d.last = now
	return false
}
