//go:build linux

package scanner

import (
	"os"

	"golang.org/x/sys/unix"
)

func getCreationTime(path string, _ os.FileInfo) int64 {
	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx); err != nil {
		return 0
	}
	// not every filesystem records a birth time
	if stx.Mask&unix.STATX_BTIME == 0 {
		return 0
	}
	return stx.Btime.Sec
}
