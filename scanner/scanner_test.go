package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a,b,c,d.txt"), []byte("hello"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	t.Run("regular file", func(t *testing.T) {
		entry := Classify(dir, "a,b,c,d.txt")
		assert.True(t, entry.IsRegular)
		assert.Equal(t, "a,b,c,d.txt", entry.Name)
		assert.Equal(t, filepath.Join(dir, "a,b,c,d.txt"), entry.Path)
		assert.Equal(t, int64(5), entry.SizeBytes)
		assert.NotZero(t, entry.ModificationTimeUTC)
	})

	t.Run("directory", func(t *testing.T) {
		entry := Classify(dir, "sub")
		assert.False(t, entry.IsRegular)
	})

	t.Run("missing", func(t *testing.T) {
		entry := Classify(dir, "gone")
		assert.False(t, entry.IsRegular)
		assert.Zero(t, entry.SizeBytes)
	})
}

func TestClassifySymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))

	if err := os.Symlink(target, filepath.Join(dir, "link,1,2,3")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "nowhere"), filepath.Join(dir, "dangling")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	assert.True(t, Classify(dir, "link,1,2,3").IsRegular)
	assert.False(t, Classify(dir, "dangling").IsRegular)
}
