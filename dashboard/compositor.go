package dashboard

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/flavioheleno/fbpanel"
	"github.com/fogleman/gg"
)

// Panel is the display the dashboard writes to. *fbpanel.Dev implements it.
type Panel interface {
	Bounds() image.Rectangle
	// Blit writes src to the logical rectangle r.
	Blit(r image.Rectangle, src image.Image) error
	// Draw writes only the pixels that differ from the current frame.
	Draw(dst image.Rectangle, src image.Image, sp image.Point) error
	// Clear blanks the whole panel.
	Clear() error
}

var _ Panel = (*fbpanel.Dev)(nil)

// SceneSource provides the full-frame background of a coin.
type SceneSource interface {
	LoadBackground(coinID string) (image.Image, error)
}

// Layout is the geometry of the last full redraw that overlays depend on.
type Layout struct {
	LabelY int // Top of the BTC label
	PriceY int // Top of the BTC price
	PriceH int // Height of the BTC price
}

// Overlay geometry.
var (
	ClockRect = image.Rect(270, 10, 470, 65)

	clockTimeAt = image.Pt(10, 0)
	clockDateAt = image.Pt(10, 30)
)

const (
	// RightOffset shifts the centred texts to the right of the background's
	// coin artwork.
	RightOffset = 60

	coinBoxPadX   = 40
	coinBoxPadY   = 25
	coinBoxGap    = 20 // Between the BTC price and the coin box
	coinSymbolTop = 7
	coinValueGap  = 8
)

var white = color.NRGBA{255, 255, 255, 255}

// Compositor renders the dashboard scene and its overlays.
//
// It is not safe for concurrent use; the caller serializes all calls.
type Compositor struct {
	panel  Panel
	fonts  *Fonts
	scenes SceneSource
	w, h   int

	// Last composed full frame, read by overlays
	bg *image.RGBA

	clock fbpanel.Tracker
	coin  fbpanel.Tracker
}

// NewCompositor returns a Compositor drawing onto panel.
func NewCompositor(panel Panel, fonts *Fonts, scenes SceneSource) *Compositor {
	b := panel.Bounds()
	return &Compositor{panel: panel, fonts: fonts, scenes: scenes, w: b.Dx(), h: b.Dy()}
}

// Redraw composes the background of coinID with the BTC label and price,
// writes the whole frame and forgets the previous overlay boxes.
func (c *Compositor) Redraw(btc Quote, btcColor color.Color, coinID string) (Layout, error) {
	src, err := c.scenes.LoadBackground(coinID)
	if err != nil {
		return Layout{}, fmt.Errorf("dashboard: background %q: %w", coinID, err)
	}
	if src.Bounds().Dx() != c.w || src.Bounds().Dy() != c.h {
		src = imaging.Resize(src, c.w, c.h, imaging.Lanczos)
	}
	bg := image.NewRGBA(image.Rect(0, 0, c.w, c.h))
	draw.Draw(bg, bg.Rect, src, src.Bounds().Min, draw.Src)

	const label = "BTC"
	price := btc.String()
	labelSize := c.fonts.Measure(SizeLabel, label)
	priceSize := c.fonts.Measure(SizeValue, price)

	var l Layout
	l.LabelY = int(float64(c.h)*0.35) - labelSize.Y
	l.PriceY = l.LabelY + labelSize.Y + 5
	l.PriceH = priceSize.Y

	scene := Scene{
		Background: bg,
		Texts: []TextElement{
			{Text: label, Size: SizeLabel, At: image.Pt((c.w-labelSize.X)/2+RightOffset, l.LabelY), Color: btcColor},
			{Text: price, Size: SizeValue, At: image.Pt((c.w-priceSize.X)/2+RightOffset, l.PriceY), Color: white},
		},
	}
	frame := scene.Render(c.fonts)
	if err := c.panel.Blit(c.panel.Bounds(), frame); err != nil {
		return Layout{}, err
	}

	c.bg = frame
	c.clock.Reset()
	c.coin.Reset()
	return l, nil
}

// UpdateClock paints the time and date in the clock slot. It does nothing
// before the first Redraw.
func (c *Compositor) UpdateClock(now time.Time, dateColor color.Color) error {
	if c.bg == nil {
		return nil
	}
	slot := ClockRect.Intersect(c.panel.Bounds())
	if slot.Empty() {
		return nil
	}
	r := c.clock.Next(slot)

	dc := c.patch(r)
	off := slot.Min.Sub(r.Min)
	c.fonts.DrawText(dc, SizeTime, now.Format("15:04:05"), off.X+clockTimeAt.X, off.Y+clockTimeAt.Y, white)
	c.fonts.DrawText(dc, SizeDate, now.Format("Mon 02 Jan 2006"), off.X+clockDateAt.X, off.Y+clockDateAt.Y, dateColor)
	return c.panel.Blit(r, dc.Image())
}

// CoinBox returns the box of the coin overlay for the given texts, before
// clipping to the frame.
func (c *Compositor) CoinBox(l Layout, symbol, value string) image.Rectangle {
	sym := c.fonts.Measure(SizeLabel, symbol)
	val := c.fonts.Measure(SizeValue, value)
	w := max(sym.X, val.X) + coinBoxPadX
	h := sym.Y + val.Y + coinBoxPadY
	x := (c.w-w)/2 + RightOffset
	y := l.PriceY + l.PriceH + coinBoxGap
	return image.Rect(x, y, x+w, y+h)
}

// UpdateCoin paints the symbol and price of the shown coin under the BTC
// price. The written region is the union of this box and the previous one,
// regenerated from the composed background. It does nothing before the
// first Redraw.
func (c *Compositor) UpdateCoin(l Layout, symbol string, q Quote, symColor color.Color) error {
	if c.bg == nil {
		return nil
	}
	symbol = strings.ToUpper(symbol)
	value := q.String()

	box := c.CoinBox(l, symbol, value)
	cur := box.Intersect(c.panel.Bounds())
	if cur.Empty() {
		return nil
	}
	r := c.coin.Next(cur)

	sym := c.fonts.Measure(SizeLabel, symbol)
	val := c.fonts.Measure(SizeValue, value)
	off := box.Min.Sub(r.Min)

	dc := c.patch(r)
	c.fonts.DrawText(dc, SizeLabel, symbol, off.X+(box.Dx()-sym.X)/2, off.Y+coinSymbolTop, symColor)
	c.fonts.DrawText(dc, SizeValue, value, off.X+(box.Dx()-val.X)/2, off.Y+coinSymbolTop+sym.Y+coinValueGap, white)
	return c.panel.Blit(r, dc.Image())
}

// patch returns a drawing context over a copy of the composed background
// cropped to r.
func (c *Compositor) patch(r image.Rectangle) *gg.Context {
	return gg.NewContextForImage(imaging.Crop(c.bg, r))
}
