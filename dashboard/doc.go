// Package dashboard renders the coin price dashboard onto an fbpanel.Dev.
//
// A full redraw composes the coin background with the BTC label and price
// and writes the whole frame. Between redraws only two overlay slots change:
// the clock in the top right corner and the box of the rotating coin below
// the BTC price. Each overlay regenerates its region from a cached copy of the
// composed background and paints new text on top, so no erase pass is needed.
// The coin box changes width with its text; the union with the previous box
// is written so that a shorter text leaves no stale pixels.
//
// Runner owns the panel and drives both overlays from a ticker. Input maps
// touches and switches to the setup view on a double tap on the clock.
package dashboard
