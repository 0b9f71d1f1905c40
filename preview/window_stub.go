//go:build !cgo

package preview

import (
	"context"
	"errors"

	"github.com/flavioheleno/fbpanel"
)

// Window is unavailable without cgo.
type Window struct{}

func NewWindow(buf *fbpanel.Buffer, o fbpanel.Orientation, dig *Digitizer, scale int) *Window {
	return &Window{}
}

func (w *Window) Run(ctx context.Context) error {
	return errors.New("preview window requires cgo (build/run with CGO_ENABLED=1)")
}
