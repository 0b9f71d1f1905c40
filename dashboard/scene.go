package dashboard

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/dustin/go-humanize"
	"github.com/flavioheleno/fbpanel/config"
	"github.com/flavioheleno/fbpanel/pricefeed"
	"github.com/fogleman/gg"
)

// TextElement is a string painted on a scene with its inked area anchored
// at At.
type TextElement struct {
	Text  string
	Size  FontSize
	At    image.Point
	Color color.Color
}

// Scene is a full-frame background with text painted on top.
type Scene struct {
	Background *image.RGBA
	Texts      []TextElement
}

// Render returns a new image with the scene's texts painted on a copy of
// the background.
func (s *Scene) Render(fonts *Fonts) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, s.Background.Rect.Dx(), s.Background.Rect.Dy()))
	draw.Draw(out, out.Rect, s.Background, s.Background.Rect.Min, draw.Src)
	dc := gg.NewContextForRGBA(out)
	for _, t := range s.Texts {
		fonts.DrawText(dc, t.Size, t.Text, t.At.X, t.At.Y, t.Color)
	}
	return out
}

// Quote is the last known USD price of a coin.
type Quote struct {
	Value float64
	Known bool
}

// QuoteOf looks up the price of c.
func QuoteOf(p pricefeed.Provider, c config.Coin) Quote {
	v, ok := p.Get(c.PriceID())
	return Quote{Value: v, Known: ok}
}

// String formats the quote as shown on the panel: "$67,890.12", "$0.00001234"
// or "$N/A".
func (q Quote) String() string {
	switch {
	case !q.Known:
		return "$N/A"
	case q.Value >= 1:
		return "$" + humanize.CommafWithDigits(q.Value, 2)
	default:
		return "$" + humanize.FtoaWithDigits(q.Value, 8)
	}
}
