package fbpanel

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"tinygo.org/x/drivers"
)

// Orientation relates logical drawing coordinates of a W×H frame to the
// physical scanline order of the framebuffer. Rotations are clockwise, as in
// tinygo drivers.
type Orientation struct {
	Rotation drivers.Rotation
	W, H     int // Logical size
}

// PhysicalSize returns the width and height of the frame as stored in memory.
func (o Orientation) PhysicalSize() (w, h int) {
	switch o.Rotation {
	case drivers.Rotation90, drivers.Rotation270:
		return o.H, o.W
	default:
		return o.W, o.H
	}
}

// MapRect maps a logical rectangle to the physical rectangle holding the same pixels.
func (o Orientation) MapRect(r image.Rectangle) image.Rectangle {
	switch o.Rotation {
	case drivers.Rotation90:
		// (x, y, w, h) -> (H-y-h, x, h, w)
		return image.Rect(o.H-r.Max.Y, r.Min.X, o.H-r.Min.Y, r.Max.X)
	case drivers.Rotation180:
		// (x, y, w, h) -> (W-x-w, H-y-h, w, h)
		return image.Rect(o.W-r.Max.X, o.H-r.Max.Y, o.W-r.Min.X, o.H-r.Min.Y)
	case drivers.Rotation270:
		// (x, y, w, h) -> (y, W-x-w, h, w)
		return image.Rect(r.Min.Y, o.W-r.Max.X, r.Max.Y, o.W-r.Min.X)
	default:
		return r
	}
}

// ToPhysical rotates a logical image into physical pixel order.
// The result always starts at (0, 0).
func (o Orientation) ToPhysical(img image.Image) image.Image {
	switch o.Rotation {
	case drivers.Rotation90:
		return imaging.Rotate270(img)
	case drivers.Rotation180:
		return imaging.Rotate180(img)
	case drivers.Rotation270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// ToLogical undoes ToPhysical.
func (o Orientation) ToLogical(img image.Image) image.Image {
	switch o.Rotation {
	case drivers.Rotation90:
		return imaging.Rotate90(img)
	case drivers.Rotation180:
		return imaging.Rotate180(img)
	case drivers.Rotation270:
		return imaging.Rotate270(img)
	default:
		return img
	}
}

// String returns e.g. "rot180".
func (o Orientation) String() string {
	return fmt.Sprintf("rot%d", 90*int(o.Rotation))
}

// ParseRotation converts degrees (0, 90, 180, 270) to a drivers.Rotation.
func ParseRotation(deg int) (drivers.Rotation, error) {
	switch deg {
	case 0:
		return drivers.Rotation0, nil
	case 90:
		return drivers.Rotation90, nil
	case 180:
		return drivers.Rotation180, nil
	case 270:
		return drivers.Rotation270, nil
	}
	return drivers.Rotation0, fmt.Errorf("fbpanel: unsupported rotation %d", deg)
}
