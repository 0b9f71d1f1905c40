package fbpanel

import (
	"errors"
	"fmt"
	"os"
	"sync"
)

// errNotFramebuffer is returned by queryFramebuffer when the file is not a
// framebuffer device (a regular file used as a sink, for instance).
var errNotFramebuffer = errors.New("fbpanel: not a framebuffer device")

// Buffer is an in-memory sink of fixed size. It is what a framebuffer looks like
// to the driver and is used for tests and for the desktop preview.
type Buffer struct {
	mu  sync.Mutex
	pix []byte
}

// NewBuffer returns a zeroed Buffer of size bytes.
func NewBuffer(size int) *Buffer {
	return &Buffer{pix: make([]byte, size)}
}

// WriteAt implements io.WriterAt. Writes past the end fail without modifying
// the buffer.
func (b *Buffer) WriteAt(p []byte, off int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if off < 0 || off+int64(len(p)) > int64(len(b.pix)) {
		return 0, fmt.Errorf("fbpanel: write of %d bytes at %d outside buffer of %d bytes", len(p), off, len(b.pix))
	}
	return copy(b.pix[off:], p), nil
}

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int {
	return len(b.pix)
}

// Snapshot copies the buffer content into dst.
func (b *Buffer) Snapshot(dst []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	copy(dst, b.pix)
}

// Bytes returns a copy of the buffer content.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.pix))
	b.Snapshot(out)
	return out
}

// OpenFramebuffer opens a framebuffer device (or any regular file of the right
// size) read/write and returns a Dev writing to it.
//
// When path is a real framebuffer, its resolution and depth are checked against
// opts: the physical resolution must match and pixels must be 16 bits.
func OpenFramebuffer(path string, opts *Opts) (*Dev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbpanel: open %s: %w", path, err)
	}

	opts = opts.withDefaults()
	info, err := queryFramebuffer(f)
	switch {
	case errors.Is(err, errNotFramebuffer):
		// Plain file; nothing to check.
	case err != nil:
		f.Close()
		return nil, err
	default:
		pw, ph := Orientation{Rotation: opts.Rotation, W: opts.W, H: opts.H}.PhysicalSize()
		if info.xres != pw || info.yres != ph || info.bpp != 16 {
			f.Close()
			return nil, fmt.Errorf("fbpanel: %s is %dx%d@%dbpp, want %dx%d@16bpp",
				path, info.xres, info.yres, info.bpp, pw, ph)
		}
	}

	d, err := New(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	d.closer = f
	return d, nil
}

// screenInfo holds the fields of fb_var_screeninfo the driver cares about.
type screenInfo struct {
	xres, yres int
	bpp        int
}
