//go:build darwin

package scanner

import (
	"os"

	"golang.org/x/sys/unix"
)

func getCreationTime(path string, _ os.FileInfo) int64 {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0
	}
	return st.Birthtimespec.Sec
}
