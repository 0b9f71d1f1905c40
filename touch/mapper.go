package touch

import (
	"fmt"
	"image"
	"log/slog"
)

// Mapper converts raw digitizer readings into screen coordinates.
//
// It is immutable and safe for concurrent use.
type Mapper struct {
	raw0, raw1 image.Point
	scr0, scr1 image.Point
	w, h       int
}

// NewMapper builds a Mapper from samples 0 and 2 (top left and bottom right)
// of c. A zero raw span on either axis is widened by one so the interpolation
// stays defined; this is logged as a warning since taps along that axis will
// then collapse onto one edge.
func NewMapper(c *Calibration, w, h int, logger *slog.Logger) (*Mapper, error) {
	if c.Len() < 3 {
		return nil, fmt.Errorf("touch: calibration has %d samples, need at least 3", c.Len())
	}
	if logger == nil {
		logger = slog.Default()
	}
	a, b := c.Sample(0), c.Sample(2)
	m := &Mapper{raw0: a.Raw, raw1: b.Raw, scr0: a.Screen, scr1: b.Screen, w: w, h: h}

	if m.raw1.X == m.raw0.X {
		logger.Warn("degenerate calibration, raw x span is zero", "raw_x", m.raw0.X)
		m.raw1.X++
	}
	if m.raw1.Y == m.raw0.Y {
		logger.Warn("degenerate calibration, raw y span is zero", "raw_y", m.raw0.Y)
		m.raw1.Y++
	}
	return m, nil
}

// Map returns the screen point for a raw reading, clamped to the screen.
//
// The digitizer axes are swapped relative to the screen: raw Y drives screen
// X and raw X drives screen Y.
func (m *Mapper) Map(rawX, rawY int) image.Point {
	sx := int(float64(rawY-m.raw0.Y)*float64(m.scr1.X-m.scr0.X)/float64(m.raw1.Y-m.raw0.Y) + float64(m.scr0.X))
	sy := int(float64(rawX-m.raw0.X)*float64(m.scr1.Y-m.scr0.Y)/float64(m.raw1.X-m.raw0.X) + float64(m.scr0.Y))
	return image.Pt(clamp(sx, 0, m.w-1), clamp(sy, 0, m.h-1))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
