//go:build linux

package touch

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	eviocgrab = 0x40044590 // _IOW('E', 0x90, int)
	eviocgabs = 0x80184540 // _IOR('E', 0x40+abs, struct input_absinfo)
)

// struct input_event: a timeval followed by type, code and value.
var (
	timevalSize = int(unsafe.Sizeof(unix.Timeval{}))
	eventSize   = timevalSize + 8
)

// AbsInfo is the range reported by the kernel for an absolute axis.
type AbsInfo struct {
	Value, Min, Max, Fuzz, Flat, Resolution int32
}

// Device is an evdev input node such as /dev/input/event0.
type Device struct {
	f   *os.File
	buf []byte
}

// OpenDevice opens an evdev node. With grab set the device is grabbed so
// that touches do not also reach the console.
func OpenDevice(path string, grab bool) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("touch: %w", err)
	}
	d := &Device{f: f, buf: make([]byte, eventSize)}
	if grab {
		err := d.control(func(fd uintptr) error {
			return unix.IoctlSetInt(int(fd), eviocgrab, 1)
		})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("touch: grab %s: %w", path, err)
		}
	}
	return d, nil
}

// ReadEvent blocks until the next event is read. It returns an error once
// the device is closed.
func (d *Device) ReadEvent() (Event, error) {
	if _, err := io.ReadFull(d.f, d.buf); err != nil {
		return Event{}, fmt.Errorf("touch: read event: %w", err)
	}
	p := d.buf[timevalSize:]
	return Event{
		Type:  binary.NativeEndian.Uint16(p[0:]),
		Code:  binary.NativeEndian.Uint16(p[2:]),
		Value: int32(binary.NativeEndian.Uint32(p[4:])),
	}, nil
}

// AbsRange queries the kernel for the range of an absolute axis.
func (d *Device) AbsRange(code uint16) (AbsInfo, error) {
	var info AbsInfo
	err := d.control(func(fd uintptr) error {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(eviocgabs+uint32(code)), uintptr(unsafe.Pointer(&info)))
		if errno != 0 {
			return errno
		}
		return nil
	})
	if err != nil {
		return AbsInfo{}, fmt.Errorf("touch: EVIOCGABS(%d): %w", code, err)
	}
	return info, nil
}

// control runs fn on the raw descriptor. Fd is avoided since it puts the
// file in blocking mode and Close would then no longer interrupt a read.
func (d *Device) control(fn func(fd uintptr) error) error {
	rc, err := d.f.SyscallConn()
	if err != nil {
		return err
	}
	var ferr error
	if err := rc.Control(func(fd uintptr) { ferr = fn(fd) }); err != nil {
		return err
	}
	return ferr
}

// Close closes the device, unblocking a pending ReadEvent.
func (d *Device) Close() error {
	return d.f.Close()
}
