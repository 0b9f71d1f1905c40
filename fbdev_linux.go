//go:build linux

package fbpanel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const fbioGetVScreenInfo = 0x4600

// fbVarScreenInfo is large enough for struct fb_var_screeninfo on every
// kernel; only the leading fields are decoded.
type fbVarScreenInfo [160]byte

func queryFramebuffer(f *os.File) (screenInfo, error) {
	var raw fbVarScreenInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), fbioGetVScreenInfo, uintptr(unsafe.Pointer(&raw[0])))
	if errno != 0 {
		if errors.Is(errno, unix.ENOTTY) || errors.Is(errno, unix.EINVAL) {
			return screenInfo{}, errNotFramebuffer
		}
		return screenInfo{}, fmt.Errorf("fbpanel: FBIOGET_VSCREENINFO: %w", errno)
	}
	return screenInfo{
		xres: int(binary.NativeEndian.Uint32(raw[0:4])),
		yres: int(binary.NativeEndian.Uint32(raw[4:8])),
		bpp:  int(binary.NativeEndian.Uint32(raw[24:28])),
	}, nil
}
