//go:build !linux

package touch

import "errors"

// AbsInfo is the range reported by the kernel for an absolute axis.
type AbsInfo struct {
	Value, Min, Max, Fuzz, Flat, Resolution int32
}

// Device is an evdev input node. It is only available on Linux.
type Device struct{}

// OpenDevice always fails outside Linux.
func OpenDevice(path string, grab bool) (*Device, error) {
	return nil, errors.New("touch: evdev is only supported on linux")
}

func (d *Device) ReadEvent() (Event, error) {
	return Event{}, errors.New("touch: evdev is only supported on linux")
}

func (d *Device) AbsRange(code uint16) (AbsInfo, error) {
	return AbsInfo{}, errors.New("touch: evdev is only supported on linux")
}

func (d *Device) Close() error {
	return nil
}
