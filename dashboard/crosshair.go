package dashboard

import (
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/fbpanel/touch"
	"github.com/fogleman/gg"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freesans"
)

const (
	crosshairSize  = 20
	crosshairWidth = 3
)

// CrosshairScreen shows calibration targets on a panel. It implements
// touch.Prompter.
type CrosshairScreen struct {
	Panel Panel
}

var _ touch.Prompter = (*CrosshairScreen)(nil)

// ShowTarget draws a green cross at the target on black with an instruction
// line at the bottom of the screen.
func (s *CrosshairScreen) ShowTarget(i int, t touch.Target) error {
	b := s.Panel.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	x, y := float64(t.Point.X), float64(t.Point.Y)
	dc.SetRGB(0, 1, 0)
	dc.SetLineWidth(crosshairWidth)
	dc.DrawLine(x-crosshairSize, y, x+crosshairSize, y)
	dc.Stroke()
	dc.DrawLine(x, y-crosshairSize, x, y+crosshairSize)
	dc.Stroke()

	img := dc.Image().(*image.RGBA)
	msg := fmt.Sprintf("Touch the %s cross", t.Name)
	// tinyfont positions text by its baseline.
	tinyfont.WriteLine(&rgbaDisplay{img: img}, &freesans.Regular12pt7b,
		int16(b.Dx()/2-80), int16(b.Dy()-40+17), msg, color.RGBA{255, 255, 255, 255})

	return s.Panel.Blit(b, img)
}

// rgbaDisplay lets tinyfont draw into an image.RGBA.
type rgbaDisplay struct {
	img *image.RGBA
}

var _ drivers.Displayer = (*rgbaDisplay)(nil)

func (d *rgbaDisplay) Size() (x, y int16) {
	return int16(d.img.Rect.Dx()), int16(d.img.Rect.Dy())
}

func (d *rgbaDisplay) SetPixel(x, y int16, c color.RGBA) {
	d.img.SetRGBA(int(x), int(y), c)
}

func (d *rgbaDisplay) Display() error {
	return nil
}
