// Package fbpanel drives small RGB565 TFT panels exposed as a raw framebuffer
// (for example /dev/fb1 of a 3.5" 480×320 SPI display on a Raspberry Pi).
//
// This driver implements the display.Drawer interface from periph.io and adds
// explicit region writes for overlay-style partial updates.
//
// # Display Characteristics
//
// - 16-bit RGB565 pixels, little-endian words (see package image565)
// - Fixed resolution; the sink is exactly 2×W×H bytes with a stride of 2×W
// - Random-access writes at arbitrary byte offsets
// - Optional mounting rotation (0°, 90°, 180°, 270° clockwise)
// - Optional backlight GPIO
//
// # Logical and Physical Coordinates
//
// Drawing code always works in logical coordinates: the picture as the user
// should see it. When the panel is mounted upside down, the framebuffer memory
// holds the picture rotated by 180°. The Orientation type converts between the
// two:
//
//	o := fbpanel.Orientation{Rotation: drivers.Rotation180, W: 480, H: 320}
//	o.MapRect(image.Rect(270, 10, 470, 65)) // (10,255)-(210,310)
//
// For a 180° rotation a logical rectangle (x, y, w, h) of a W×H frame lives at
// physical (W-x-w, H-y-h, w, h). Every region write derives its byte offsets
// from this mapping.
//
// # Basic Usage
//
//	dev, err := fbpanel.OpenFramebuffer("/dev/fb1", &fbpanel.Opts{
//		W:        480,
//		H:        320,
//		Rotation: drivers.Rotation180,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer dev.Halt()
//
//	// Full frame
//	dev.Blit(dev.Bounds(), background)
//
//	// Partial update of the clock area only
//	dev.Blit(image.Rect(270, 10, 470, 65), clockImage)
//
// # Drawing Modes
//
// ## Full-Frame Update
//
// WriteFull writes 2×W×H bytes of already rotated, already encoded pixels at
// offset 0. Blit with the full bounds takes this path.
//
// ## Region Update
//
// WriteRegion writes one physical scanline at a time, seeking to
// ((py+r)×W'+px)×2 for row r. A sub-rectangle is not contiguous in the
// row-major frame, so it is never written as one flat blob.
//
// ## Differential Updates
//
// Draw composes the source into a copy of the last written frame, computes the
// minimal bounding rectangle of changed pixels and writes only that region.
//
// # Ghost-Free Overlays
//
// Overlays keep one Tracker per slot. Each update writes the union of the
// previous and the current box, repainted from a clean background snapshot, so a
// shorter string never leaves stale pixels behind:
//
//	var clock fbpanel.Tracker
//	area := clock.Next(box)
//	dev.Blit(area, renderOverBackground(area))
//
// # Concurrency
//
// All writes take an internal mutex; writes from different goroutines never
// interleave at the byte level.
//
// # Compatibility with periph.io
//
// Dev implements display.Drawer:
// https://pkg.go.dev/periph.io/x/conn/v3/display
package fbpanel
