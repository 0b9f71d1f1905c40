package dashboard

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// FontSize selects one of the text styles of the dashboard.
type FontSize int

const (
	SizeLabel  FontSize = iota // 36px bold, coin symbols
	SizeValue                  // 48px bold, prices
	SizeTime                   // 28px bold, clock
	SizeDate                   // 20px regular, date under the clock
	SizeSetup                  // 26px regular, setup list
	SizeButton                 // 24px regular, setup button
)

var faceStyles = []struct {
	bold bool
	px   float64
}{
	SizeLabel:  {true, 36},
	SizeValue:  {true, 48},
	SizeTime:   {true, 28},
	SizeDate:   {false, 20},
	SizeSetup:  {false, 26},
	SizeButton: {false, 24},
}

// Fonts holds one face per FontSize. Faces are not safe for concurrent use.
type Fonts struct {
	faces []font.Face
}

// LoadFonts parses the embedded Go fonts and builds all faces.
func LoadFonts() (*Fonts, error) {
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse bold font: %w", err)
	}
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("dashboard: parse regular font: %w", err)
	}

	f := &Fonts{faces: make([]font.Face, len(faceStyles))}
	for size, st := range faceStyles {
		ttf := regular
		if st.bold {
			ttf = bold
		}
		// At 72 DPI one point is one pixel.
		f.faces[size] = truetype.NewFace(ttf, &truetype.Options{Size: st.px, DPI: 72, Hinting: font.HintingFull})
	}
	return f, nil
}

// Face returns the face of a size.
func (f *Fonts) Face(s FontSize) font.Face {
	return f.faces[s]
}

// Measure returns the size of the inked area of text.
func (f *Fonts) Measure(s FontSize, text string) image.Point {
	b, _ := font.BoundString(f.faces[s], text)
	return image.Pt(ceil26(b.Max.X-b.Min.X), ceil26(b.Max.Y-b.Min.Y))
}

// DrawText paints text so that its inked area starts at (x, y).
func (f *Fonts) DrawText(dc *gg.Context, s FontSize, text string, x, y int, c color.Color) {
	face := f.faces[s]
	b, _ := font.BoundString(face, text)
	dc.SetFontFace(face)
	dc.SetColor(c)
	dc.DrawString(text, float64(x)-float26(b.Min.X), float64(y)-float26(b.Min.Y))
}

func ceil26(v fixed.Int26_6) int {
	return int(math.Ceil(float26(v)))
}

func float26(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
