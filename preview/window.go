//go:build cgo

package preview

import (
	"context"
	"image"
	"image/draw"

	"github.com/flavioheleno/fbpanel"
	"github.com/hajimehoshi/ebiten/v2"
)

// Window displays an in-memory framebuffer and forwards the mouse to a
// Digitizer.
type Window struct {
	buf    *fbpanel.Buffer
	orient fbpanel.Orientation
	dig    *Digitizer
	scale  int

	ctx     context.Context
	scratch []byte
	rgba    *image.RGBA
	img     *ebiten.Image
}

// NewWindow returns a window showing buf, scaled up by scale.
func NewWindow(buf *fbpanel.Buffer, o fbpanel.Orientation, dig *Digitizer, scale int) *Window {
	return &Window{buf: buf, orient: o, dig: dig, scale: max(1, scale)}
}

// Run opens the window and blocks until it is closed or ctx is done. It must
// be called from the main goroutine. The digitizer is closed on return.
func (w *Window) Run(ctx context.Context) error {
	defer w.dig.Close()
	w.ctx = ctx
	ebiten.SetWindowTitle("fbpanel preview")
	ebiten.SetWindowSize(w.orient.W*w.scale, w.orient.H*w.scale)
	ebiten.SetTPS(30)
	return ebiten.RunGame(w)
}

func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	x, y := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	p := image.Pt(x, y)
	if pressed && !p.In(image.Rect(0, 0, w.orient.W, w.orient.H)) {
		pressed = false
	}
	w.dig.Pointer(p, pressed)
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	if w.img == nil {
		w.scratch = make([]byte, w.buf.Len())
		w.rgba = image.NewRGBA(image.Rect(0, 0, w.orient.W, w.orient.H))
		w.img = ebiten.NewImage(w.orient.W, w.orient.H)
	}
	w.buf.Snapshot(w.scratch)
	frame := Frame(w.scratch, w.orient)
	draw.Draw(w.rgba, w.rgba.Rect, frame, frame.Bounds().Min, draw.Src)
	w.img.WritePixels(w.rgba.Pix)
	screen.DrawImage(w.img, nil)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.orient.W, w.orient.H
}
