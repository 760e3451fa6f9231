package scanner

import (
	"os"
	"path/filepath"

	"github.com/nrtkbb/fnbundle/models"
)

// Classify stats dir/name, following symlinks. Entries that cannot be
// stat'ed are reported as non-regular.
func Classify(dir, name string) models.DirectoryEntry {
	path := filepath.Join(dir, name)
	entry := models.DirectoryEntry{
		Name: name,
		Path: path,
	}

	info, err := os.Stat(path)
	if err != nil {
		return entry
	}

	entry.IsRegular = info.Mode().IsRegular()
	entry.SizeBytes = info.Size()
	entry.ModificationTimeUTC = info.ModTime().UTC().Unix()
	entry.CreationTimeUTC = getCreationTime(path, info)
	return entry
}
