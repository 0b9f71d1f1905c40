//go:build !linux

package fbpanel

import "os"

func queryFramebuffer(f *os.File) (screenInfo, error) {
	return screenInfo{}, errNotFramebuffer
}
