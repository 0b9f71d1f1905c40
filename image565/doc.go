// Package image565 provides the 16-bit RGB565 pixel format used by small SPI/parallel TFT
// framebuffers such as the 3.5" 480x320 ILI9486 panels.
//
// Each pixel is one 16-bit word stored little-endian (low byte first):
//
//	bit: 15 14 13 12 11 | 10  9  8  7  6  5 | 4  3  2  1  0
//	     R4 R3 R2 R1 R0 | G5 G4 G3 G2 G1 G0 | B4 B3 B2 B1 B0
//
// Conversion from 24-bit colour truncates: red and blue keep their top 5 bits, green keeps
// its top 6 bits. No rounding is applied, so the encoding is bit-exact with what the panel
// controller does to a 24-bit stream.
//
// Memory layout example for a 2-pixel row holding pure red and pure blue:
//
//	Pixels: 0            1
//	Words:  0xF800       0x001F
//	Bytes:  0x00 0xF8    0x1F 0x00
//
// This package provides:
//
// - RGB565: a color type holding one packed word
// - RGB565Model: a color model converting standard Go colors to RGB565
// - Image: an image.Image / draw.Image implementation over packed little-endian words
// - Encode: the raw (r, g, b) byte stream codec
//
// Example usage:
//
//	// Pack a photo for the framebuffer
//	img := image565.FromImage(photo)
//	sink.WriteAt(img.Pix, 0)
//
//	// Pack raw samples
//	out := image565.Encode([]byte{255, 0, 0, 0, 0, 255}) // 00 F8 1F 00
package image565
