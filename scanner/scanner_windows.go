//go:build windows

package scanner

import (
	"os"
	"syscall"
	"time"
)

func getCreationTime(_ string, info os.FileInfo) int64 {
	if winStat, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, winStat.CreationTime.Nanoseconds()).Unix()
	}
	return 0
}
