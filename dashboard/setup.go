package dashboard

import (
	"fmt"
	"image"
	"image/color"

	"github.com/flavioheleno/fbpanel/config"
	"github.com/fogleman/gg"
)

// Setup view geometry.
const (
	setupHeaderH = 55
	setupRowTop  = 65
	setupRowStep = 40
	setupRowH    = 30
	setupToggleX = 30
	setupToggleW = 40
	setupTextX   = 80
	setupTextPad = 8

	setupArrowW     = 30
	setupArrowH     = 20
	setupArrowRight = 30 // Distance of the arrows' right edge to the screen edge
)

var (
	setupBG       = color.NRGBA{30, 30, 60, 255}
	setupHeaderBG = color.NRGBA{50, 50, 90, 255}
	setupOn       = color.NRGBA{90, 230, 90, 255}
	setupOff      = color.NRGBA{130, 130, 130, 255}
	setupSaveBG   = color.NRGBA{60, 130, 60, 255}
)

// SetupView lets the user choose which coins are shown in the rotation.
//
// Coins are listed with a toggle box each; arrows scroll the list and SAVE
// writes the coins file.
type SetupView struct {
	Coins *config.Coins
	Path  string // Coins file written by SAVE
	Fonts *Fonts
	W, H  int

	scroll int
}

// Rows returns the number of list rows that fit above the SAVE button.
func (v *SetupView) Rows() int {
	return max(1, (v.saveRect().Min.Y-setupRowTop)/setupRowStep)
}

// Scroll returns the index of the first listed coin.
func (v *SetupView) Scroll() int {
	return v.scroll
}

func (v *SetupView) saveRect() image.Rectangle {
	return image.Rect(v.W-180, v.H-70, v.W-50, v.H-20)
}

func (v *SetupView) upRect() image.Rectangle {
	x := v.W - setupArrowRight - setupArrowW
	return image.Rect(x, setupRowTop, x+setupArrowW, setupRowTop+setupArrowH)
}

func (v *SetupView) downRect() image.Rectangle {
	x := v.W - setupArrowRight - setupArrowW
	bottom := setupRowTop + (v.Rows()-1)*setupRowStep + setupRowH
	return image.Rect(x, bottom-setupArrowH, x+setupArrowW, bottom)
}

func (v *SetupView) rowLabel(c config.Coin) string {
	return fmt.Sprintf("%s - %s", c.Symbol, c.Name)
}

// Render draws the current state of the view.
func (v *SetupView) Render() *image.RGBA {
	dc := gg.NewContext(v.W, v.H)
	dc.SetColor(setupBG)
	dc.Clear()

	dc.SetColor(setupHeaderBG)
	dc.DrawRectangle(0, 0, float64(v.W), setupHeaderH)
	dc.Fill()
	v.Fonts.DrawText(dc, SizeSetup, "SETUP: Toggle coins", 20, 15, white)

	for i, c := range v.visible() {
		y := setupRowTop + i*setupRowStep
		dc.SetColor(setupOff)
		if c.Shown() {
			dc.SetColor(setupOn)
		}
		dc.DrawRectangle(setupToggleX, float64(y), setupToggleW, setupRowH)
		dc.Fill()
		v.Fonts.DrawText(dc, SizeSetup, v.rowLabel(c), setupTextX, y+4, white)
	}

	dc.SetColor(white)
	up, down := v.upRect(), v.downRect()
	dc.MoveTo(float64(up.Min.X), float64(up.Max.Y))
	dc.LineTo(float64(up.Max.X), float64(up.Max.Y))
	dc.LineTo(float64(up.Min.X+up.Dx()/2), float64(up.Min.Y))
	dc.ClosePath()
	dc.Fill()
	dc.MoveTo(float64(down.Min.X), float64(down.Min.Y))
	dc.LineTo(float64(down.Max.X), float64(down.Min.Y))
	dc.LineTo(float64(down.Min.X+down.Dx()/2), float64(down.Max.Y))
	dc.ClosePath()
	dc.Fill()

	save := v.saveRect()
	dc.SetColor(setupSaveBG)
	dc.DrawRectangle(float64(save.Min.X), float64(save.Min.Y), float64(save.Dx()), float64(save.Dy()))
	dc.Fill()
	v.Fonts.DrawText(dc, SizeButton, "SAVE", save.Min.X+15, save.Min.Y+15, white)

	return dc.Image().(*image.RGBA)
}

func (v *SetupView) visible() []config.Coin {
	end := min(v.scroll+v.Rows(), len(v.Coins.Coins))
	return v.Coins.Coins[v.scroll:end]
}

// HandleTouch applies a tap at p. It reports done once the coins file was
// saved and the view should be left.
func (v *SetupView) HandleTouch(p image.Point) (done bool, err error) {
	if p.In(v.saveRect()) {
		if err := v.Coins.Save(v.Path); err != nil {
			return false, err
		}
		return true, nil
	}
	if p.In(v.upRect()) {
		if v.scroll > 0 {
			v.scroll--
		}
		return false, nil
	}
	if p.In(v.downRect()) {
		if v.scroll+v.Rows() < len(v.Coins.Coins) {
			v.scroll++
		}
		return false, nil
	}

	for i, c := range v.visible() {
		y := setupRowTop + i*setupRowStep
		if p.Y < y || p.Y >= y+setupRowH {
			continue
		}
		textW := v.Fonts.Measure(SizeSetup, v.rowLabel(c)).X
		onToggle := p.X >= setupToggleX && p.X < setupToggleX+setupToggleW
		onText := p.X >= setupTextX-setupTextPad && p.X < setupTextX+textW+setupTextPad
		if onToggle || onText {
			coin := &v.Coins.Coins[v.scroll+i]
			coin.SetShown(!coin.Shown())
		}
		break
	}
	return false, nil
}

// Reset scrolls back to the top of the list.
func (v *SetupView) Reset() {
	v.scroll = 0
}
