// Package fbpanel drives RGB565 TFT panels exposed as a raw framebuffer.
//
// The framebuffer is any io.WriterAt of exactly 2×W×H bytes. Pixels are
// little-endian RGB565 words; the panel may be mounted rotated.
//
// See examples/coinlcd for a complete program.
package fbpanel

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"sync"

	"github.com/flavioheleno/fbpanel/image565"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"tinygo.org/x/drivers"
)

// Opts is the configuration for the panel.
type Opts struct {
	// Logical display dimensions in pixels
	W int // Width (default: 480)
	H int // Height (default: 320)

	// Mounting rotation of the panel relative to the drawing orientation
	Rotation drivers.Rotation

	// Optional backlight pin, driven high on New and low on Halt
	Backlight gpio.PinOut
}

func (o *Opts) withDefaults() *Opts {
	if o == nil {
		return &Opts{W: 480, H: 320}
	}
	c := *o
	if c.W == 0 {
		c.W = 480
	}
	if c.H == 0 {
		c.H = 320
	}
	return &c
}

var (
	// ErrHalted is returned by writes issued after Halt.
	ErrHalted = errors.New("fbpanel: halted")

	errBufferSize = errors.New("fbpanel: invalid buffer size")
	errOutOfFrame = errors.New("fbpanel: region outside frame")
)

// Dev is the handle for one framebuffer panel.
type Dev struct {
	mu sync.Mutex

	// Sink
	w         io.WriterAt
	closer    io.Closer   // Set when the driver opened the sink itself
	backlight gpio.PinOut // Optional

	// Display geometry
	rect   image.Rectangle // Logical bounds
	orient Orientation
	physW  int
	physH  int

	// Last frame written to the sink, in physical order
	shadow []byte

	// State
	halted bool
}

var _ display.Drawer = (*Dev)(nil)

// New creates a Dev writing to w.
//
// opts can be nil to use defaults (480x320, no rotation).
func New(w io.WriterAt, opts *Opts) (*Dev, error) {
	opts = opts.withDefaults()
	if opts.W < 0 || opts.H < 0 {
		return nil, errors.New("fbpanel: width and height must be positive")
	}
	if opts.Rotation > drivers.Rotation270 {
		return nil, fmt.Errorf("fbpanel: invalid rotation %d", opts.Rotation)
	}

	o := Orientation{Rotation: opts.Rotation, W: opts.W, H: opts.H}
	pw, ph := o.PhysicalSize()
	d := &Dev{
		w:         w,
		backlight: opts.Backlight,
		rect:      image.Rect(0, 0, opts.W, opts.H),
		orient:    o,
		physW:     pw,
		physH:     ph,
		shadow:    make([]byte, 2*pw*ph),
	}

	if d.backlight != nil {
		if err := d.backlight.Out(gpio.High); err != nil {
			return nil, fmt.Errorf("fbpanel: backlight on: %w", err)
		}
	}
	return d, nil
}

// ColorModel returns the color model of the display.
func (d *Dev) ColorModel() color.Model {
	return image565.RGB565Model
}

// Bounds returns the logical bounds of the display.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Orientation returns the logical-to-physical mapping of the panel.
func (d *Dev) Orientation() Orientation {
	return d.orient
}

// FrameSize returns the size of one full frame in bytes.
func (d *Dev) FrameSize() int {
	return len(d.shadow)
}

// WriteFull writes a complete frame, already rotated and encoded, at offset 0.
// p must be exactly FrameSize bytes.
func (d *Dev) WriteFull(p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if len(p) != len(d.shadow) {
		return errBufferSize
	}
	return d.writeFullLocked(p)
}

func (d *Dev) writeFullLocked(p []byte) error {
	if _, err := d.w.WriteAt(p, 0); err != nil {
		return fmt.Errorf("fbpanel: write frame: %w", err)
	}
	copy(d.shadow, p)
	return nil
}

// Write implements io.Writer for whole frames. See WriteFull.
func (d *Dev) Write(pixels []byte) (int, error) {
	if err := d.WriteFull(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// WriteRegion writes pixels covering the logical rectangle r.
//
// p holds the region already rotated into physical order and encoded, row-major
// with a stride of 2×w where w is the physical width of the region. Each
// physical row is written at its own offset since rows of a sub-rectangle are
// not contiguous in the frame.
func (d *Dev) WriteRegion(r image.Rectangle, p []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	if r.Empty() || !r.In(d.rect) {
		return errOutOfFrame
	}
	pr := d.orient.MapRect(r)
	if len(p) != 2*pr.Dx()*pr.Dy() {
		return errBufferSize
	}
	return d.writeRect(pr, p)
}

// writeRect writes a tightly packed physical rectangle row by row.
func (d *Dev) writeRect(pr image.Rectangle, p []byte) error {
	rowBytes := 2 * pr.Dx()
	for row := 0; row < pr.Dy(); row++ {
		off := ((pr.Min.Y+row)*d.physW + pr.Min.X) * 2
		src := p[row*rowBytes : (row+1)*rowBytes]
		if _, err := d.w.WriteAt(src, int64(off)); err != nil {
			return fmt.Errorf("fbpanel: write row %d: %w", pr.Min.Y+row, err)
		}
		copy(d.shadow[off:off+rowBytes], src)
	}
	return nil
}

// Blit rotates and encodes src, whose bounds must have the size of r, and
// writes it to the logical rectangle r. A full-size r takes the WriteFull path.
func (d *Dev) Blit(r image.Rectangle, src image.Image) error {
	if src.Bounds().Size() != r.Size() {
		return fmt.Errorf("fbpanel: source is %v, region is %v", src.Bounds().Size(), r.Size())
	}
	pix := image565.FromImage(d.orient.ToPhysical(src)).Pix
	if r == d.rect {
		return d.WriteFull(pix)
	}
	return d.WriteRegion(r, pix)
}

// Draw draws an image onto the display with differential update optimization.
// The dst rectangle specifies the logical destination region on the display.
// The src image is positioned at src point sp within the destination.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	// Clip to display bounds
	dst = dst.Intersect(d.rect)
	if dst.Empty() {
		return nil
	}

	// Render the logical patch, then bring it into physical order
	patch := image.NewRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	draw.Draw(patch, patch.Bounds(), src, sp, draw.Src)
	phys := image565.FromImage(d.orient.ToPhysical(patch))
	pr := d.orient.MapRect(dst)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}

	// Compose into a copy of the last frame
	next := make([]byte, len(d.shadow))
	copy(next, d.shadow)
	rowBytes := 2 * pr.Dx()
	for row := 0; row < pr.Dy(); row++ {
		off := ((pr.Min.Y+row)*d.physW + pr.Min.X) * 2
		copy(next[off:off+rowBytes], phys.Pix[row*phys.Stride:])
	}

	// Calculate minimal bounding box of changed pixels
	changed := d.calculateDiff(next)
	if changed.Empty() {
		return nil
	}
	return d.writeRect(changed, d.extractRegion(next, changed))
}

// calculateDiff compares the shadow frame with next and returns the minimal
// changed physical rectangle, or an empty rectangle if nothing changed.
func (d *Dev) calculateDiff(next []byte) image.Rectangle {
	stride := 2 * d.physW

	minRow, maxRow := d.physH, -1
	minCol, maxCol := d.physW, -1

	// Scan row by row to find differences
	for y := 0; y < d.physH; y++ {
		rowStart := y * stride
		rowEnd := rowStart + stride
		if bytes.Equal(d.shadow[rowStart:rowEnd], next[rowStart:rowEnd]) {
			continue
		}
		minRow = min(minRow, y)
		maxRow = max(maxRow, y)

		// Scan pixels within this row for precise boundaries
		for x := 0; x < d.physW; x++ {
			i := rowStart + 2*x
			if d.shadow[i] != next[i] || d.shadow[i+1] != next[i+1] {
				minCol = min(minCol, x)
				maxCol = max(maxCol, x)
			}
		}
	}

	if maxRow < 0 {
		return image.Rectangle{}
	}
	return image.Rect(minCol, minRow, maxCol+1, maxRow+1)
}

// extractRegion copies the pixels of physical rectangle pr out of a full frame.
func (d *Dev) extractRegion(frame []byte, pr image.Rectangle) []byte {
	rowBytes := 2 * pr.Dx()
	result := make([]byte, rowBytes*pr.Dy())
	for row := 0; row < pr.Dy(); row++ {
		off := ((pr.Min.Y+row)*d.physW + pr.Min.X) * 2
		copy(result[row*rowBytes:], frame[off:off+rowBytes])
	}
	return result
}

// Clear writes an all-black frame.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return ErrHalted
	}
	return d.writeFullLocked(make([]byte, len(d.shadow)))
}

// Halt blanks the display and switches the backlight off.
// After calling Halt, all writes fail with ErrHalted.
func (d *Dev) Halt() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.halted {
		return nil
	}
	d.halted = true

	err := d.writeFullLocked(make([]byte, len(d.shadow)))
	if d.backlight != nil {
		if berr := d.backlight.Out(gpio.Low); berr != nil && err == nil {
			err = fmt.Errorf("fbpanel: backlight off: %w", berr)
		}
	}
	if d.closer != nil {
		if cerr := d.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("fbpanel.Dev{%dx%d %s}", d.rect.Dx(), d.rect.Dy(), d.orient)
}
