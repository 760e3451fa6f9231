//go:build !linux && !darwin && !windows

package scanner

import "os"

func getCreationTime(_ string, _ os.FileInfo) int64 {
	return 0
}
