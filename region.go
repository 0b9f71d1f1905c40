package fbpanel

import "image"

// Union returns the smallest rectangle containing both prev and cur.
// An empty prev means there was no previous paint and cur is returned as is.
func Union(prev, cur image.Rectangle) image.Rectangle {
	if prev.Empty() {
		return cur
	}
	return image.Rect(
		min(prev.Min.X, cur.Min.X),
		min(prev.Min.Y, cur.Min.Y),
		max(prev.Max.X, cur.Max.X),
		max(prev.Max.Y, cur.Max.Y),
	)
}

// Tracker remembers the last painted box of one overlay slot.
//
// Every slot (clock, price box, ...) needs its own Tracker: unioning unrelated
// slots would repaint unrelated screen area. A Tracker is not safe for
// concurrent use; the goroutine painting the slot owns it.
type Tracker struct {
	prev image.Rectangle
}

// Next returns the area to repaint so that cur is drawn and everything the
// previous box covered is restored, then records cur as the previous box.
func (t *Tracker) Next(cur image.Rectangle) image.Rectangle {
	area := Union(t.prev, cur)
	t.prev = cur
	return area
}

// Prev returns the last recorded box, or the zero rectangle.
func (t *Tracker) Prev() image.Rectangle {
	return t.prev
}

// Reset forgets the previous box. Call it after a full-frame redraw.
func (t *Tracker) Reset() {
	t.prev = image.Rectangle{}
}
