// Package image565 provides the RGB565 pixel format used by small TFT framebuffers.
//
// Pixels are stored as one little-endian 16-bit word each: 5 bits red, 6 bits green,
// 5 bits blue.
package image565

import (
	"image"
	"image/color"
)

// RGB565 represents a packed 16-bit color: rrrrrggggggbbbbb.
type RGB565 struct {
	V uint16
}

// Pack truncates 8-bit channels to 5/6/5 bits and packs them.
func Pack(r, g, b uint8) RGB565 {
	return RGB565{V: uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)}
}

// Split returns the raw 5-bit red, 6-bit green and 5-bit blue fields.
func (c RGB565) Split() (r5, g6, b5 uint8) {
	return uint8(c.V >> 11 & 0x1F), uint8(c.V >> 5 & 0x3F), uint8(c.V & 0x1F)
}

// RGBA converts the RGB565 color to standard RGBA.
// Each field is replicated into the low bits so that full intensity maps to 0xFFFF.
func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5, g6, b5 := c.Split()
	r8 := uint32(r5<<3 | r5>>2)
	g8 := uint32(g6<<2 | g6>>4)
	b8 := uint32(b5<<3 | b5>>2)
	return r8 * 0x101, g8 * 0x101, b8 * 0x101, 0xFFFF
}

// toRGB565 converts any color.Color to RGB565.
func toRGB565(c color.Color) color.Color {
	if p, ok := c.(RGB565); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

// RGB565Model converts colors to RGB565.
var RGB565Model = color.ModelFunc(toRGB565)

// Encode converts a stream of (r, g, b) byte triples into packed little-endian words.
// The output is exactly two bytes per complete input triple; a trailing partial triple
// is ignored.
func Encode(rgb []byte) []byte {
	n := len(rgb) / 3
	out := make([]byte, 2*n)
	for i := 0; i < n; i++ {
		v := Pack(rgb[3*i], rgb[3*i+1], rgb[3*i+2]).V
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}

// Image is an RGB565 image with little-endian words, row-major.
type Image struct {
	Pix    []byte          // Pixel data (2 bytes per pixel)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// New creates a new Image with the specified bounds.
func New(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r}
	}
	return &Image{
		Pix:    make([]byte, 2*w*h),
		Stride: 2 * w,
		Rect:   r,
	}
}

// FromImage packs src into a new Image with the same bounds.
// *image.RGBA and *image.NRGBA sources take a direct path that reads the
// 8-bit channels without going through color.Color; alpha is ignored.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	dst := New(b)
	if dst.Pix == nil {
		return dst
	}

	var pix []byte
	var stride int
	switch s := src.(type) {
	case *image.RGBA:
		pix, stride = s.Pix, s.Stride
	case *image.NRGBA:
		pix, stride = s.Pix, s.Stride
	}

	if pix != nil {
		w := b.Dx()
		for y := 0; y < b.Dy(); y++ {
			si := y * stride
			di := y * dst.Stride
			for x := 0; x < w; x++ {
				v := Pack(pix[si], pix[si+1], pix[si+2]).V
				dst.Pix[di] = byte(v)
				dst.Pix[di+1] = byte(v >> 8)
				si += 4
				di += 2
			}
		}
		return dst
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, src.At(x, y))
		}
	}
	return dst
}

// ColorModel returns the color model of the image.
func (p *Image) ColorModel() color.Model {
	return RGB565Model
}

// Bounds returns the image bounds.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At returns the color of the pixel at (x, y).
func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the packed color of the pixel at (x, y).
func (p *Image) RGB565At(x, y int) RGB565 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return RGB565{}
	}
	i := p.PixOffset(x, y)
	return RGB565{V: uint16(p.Pix[i]) | uint16(p.Pix[i+1])<<8}
}

// Set sets the color of the pixel at (x, y).
func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, RGB565Model.Convert(c).(RGB565))
}

// SetRGB565 sets the packed color of the pixel at (x, y).
func (p *Image) SetRGB565(x, y int, c RGB565) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(c.V)
	p.Pix[i+1] = byte(c.V >> 8)
}

// PixOffset returns the index of the low byte of the pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

// SubImage returns a copy of the pixels visible through r, packed tightly
// (Stride == 2*r.Dx()). The result is what a region write expects as its source.
func (p *Image) SubImage(r image.Rectangle) *Image {
	r = r.Intersect(p.Rect)
	dst := New(r)
	if dst.Pix == nil {
		return dst
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		si := p.PixOffset(r.Min.X, y)
		di := (y - r.Min.Y) * dst.Stride
		copy(dst.Pix[di:di+dst.Stride], p.Pix[si:si+dst.Stride])
	}
	return dst
}
