// Package preview shows a panel's framebuffer in a desktop window and feeds
// mouse clicks back as touch digitizer events, so the dashboard can be run
// without the hardware.
package preview

import (
	"image"
	"io"
	"sync"

	"github.com/flavioheleno/fbpanel"
	"github.com/flavioheleno/fbpanel/image565"
	"github.com/flavioheleno/fbpanel/touch"
)

// Raw range of the emulated digitizer, close to what an XPT2046 reports on a
// 3.5" panel.
const (
	RawMin = 100
	RawMax = 4000
)

// Digitizer turns pointer positions into raw touch events. Like the panels'
// resistive controllers, its X axis follows the screen's Y axis and vice
// versa. It implements touch.Source.
type Digitizer struct {
	w, h   int
	events chan touch.Event
	done   chan struct{}
	once   sync.Once

	down bool
	last image.Point
}

var _ touch.Source = (*Digitizer)(nil)

// NewDigitizer returns a digitizer covering a w×h screen.
func NewDigitizer(w, h int) *Digitizer {
	return &Digitizer{
		w:      w,
		h:      h,
		events: make(chan touch.Event, 64),
		done:   make(chan struct{}),
	}
}

// Raw returns the raw reading for a screen point.
func (d *Digitizer) Raw(p image.Point) (rawX, rawY int) {
	rawY = RawMin + p.X*(RawMax-RawMin)/max(1, d.w-1)
	rawX = RawMin + p.Y*(RawMax-RawMin)/max(1, d.h-1)
	return rawX, rawY
}

// Calibration returns a calibration record that matches Raw exactly.
func (d *Digitizer) Calibration() *touch.Calibration {
	var c touch.Calibration
	for _, t := range touch.Targets(d.w, d.h) {
		x, y := d.Raw(t.Point)
		c.Add(touch.Sample{Raw: image.Pt(x, y), Screen: t.Point})
	}
	return &c
}

// Pointer reports the pointer position and button state. It emits axis
// events while pressed and a contact event on every change of state. Events
// are dropped when the reader falls behind.
func (d *Digitizer) Pointer(p image.Point, pressed bool) {
	if !pressed {
		if d.down {
			d.down = false
			d.emit(touch.Event{Type: touch.EvKey, Code: touch.BtnTouch, Value: 0})
			d.emit(touch.Event{Type: touch.EvSyn})
		}
		return
	}
	if d.down && p == d.last {
		return
	}
	x, y := d.Raw(p)
	d.emit(touch.Event{Type: touch.EvAbs, Code: touch.AbsX, Value: int32(x)})
	d.emit(touch.Event{Type: touch.EvAbs, Code: touch.AbsY, Value: int32(y)})
	if !d.down {
		d.down = true
		d.emit(touch.Event{Type: touch.EvKey, Code: touch.BtnTouch, Value: 1})
	}
	d.emit(touch.Event{Type: touch.EvSyn})
	d.last = p
}

func (d *Digitizer) emit(ev touch.Event) {
	select {
	case d.events <- ev:
	default:
	}
}

// ReadEvent implements touch.Source. It returns io.EOF after Close.
func (d *Digitizer) ReadEvent() (touch.Event, error) {
	select {
	case ev := <-d.events:
		return ev, nil
	case <-d.done:
		return touch.Event{}, io.EOF
	}
}

// Close unblocks pending and future reads.
func (d *Digitizer) Close() {
	d.once.Do(func() { close(d.done) })
}

// Frame returns the logical image held in a physical RGB565 frame.
func Frame(pix []byte, o fbpanel.Orientation) image.Image {
	pw, ph := o.PhysicalSize()
	phys := &image565.Image{Pix: pix, Stride: 2 * pw, Rect: image.Rect(0, 0, pw, ph)}
	return o.ToLogical(phys)
}
