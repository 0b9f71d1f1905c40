package touch

import (
	"context"
	"image"
)

// Linux input event types and codes used by touch digitizers.
const (
	EvSyn = 0x00
	EvKey = 0x01
	EvAbs = 0x03

	AbsX = 0x00
	AbsY = 0x01

	BtnTouch = 0x14a
)

// Event is one raw input event.
type Event struct {
	Type  uint16
	Code  uint16
	Value int32
}

// Source delivers raw input events. ReadEvent blocks until an event is
// available.
type Source interface {
	ReadEvent() (Event, error)
}

// Contact is a change of the contact signal together with the raw position
// tracked at that moment.
type Contact struct {
	Raw  image.Point
	Down bool // Press if true, release otherwise
	// Valid reports whether both axes were seen since the last ResetAxes.
	Valid bool
}

// Reader tracks the latest raw axis values of a Source and reports contact
// transitions.
type Reader struct {
	src          Source
	raw          image.Point
	haveX, haveY bool
	down         bool
}

// NewReader returns a Reader over src.
func NewReader(src Source) *Reader {
	return &Reader{src: src}
}

// Next blocks until the contact signal changes and returns the transition.
//
// Axis events update the tracked raw position; repeated press or release
// events without a change in between are folded. ctx is checked between
// events only, a read in progress is not interrupted.
func (r *Reader) Next(ctx context.Context) (Contact, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Contact{}, err
		}
		ev, err := r.src.ReadEvent()
		if err != nil {
			return Contact{}, err
		}

		switch ev.Type {
		case EvAbs:
			switch ev.Code {
			case AbsX:
				r.raw.X = int(ev.Value)
				r.haveX = true
			case AbsY:
				r.raw.Y = int(ev.Value)
				r.haveY = true
			}
		case EvKey:
			if ev.Code != BtnTouch {
				continue
			}
			down := ev.Value != 0
			if down == r.down {
				continue
			}
			r.down = down
			return Contact{Raw: r.raw, Down: down, Valid: r.haveX && r.haveY}, nil
		}
	}
}

// ResetAxes forgets the tracked position so that the next Contact is only
// Valid once both axes have been reported again.
func (r *Reader) ResetAxes() {
	r.haveX, r.haveY = false, false
}
