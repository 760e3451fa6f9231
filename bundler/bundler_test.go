package bundler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	require.True(t, strings.HasSuffix(string(data), "\n"), "output must be newline-terminated")
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"alice,2023,graphA,weighted.png", "alice,2023,graphA,weighted"},
		{"no-extension", "no-extension"},
		{"archive.tar.gz", "archive.tar"},
		{"trailing.", "trailing"},
		{".hidden", ".hidden"},
		{"..dots", "..dots"},
		{".a.b", ".a"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.name))
		})
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		want    [4]string
		wantErr bool
	}{
		{name: "alice,2023,graphA,weighted.png", want: [4]string{"alice", "2023", "graphA", "weighted"}},
		{name: "a,b,c,d", want: [4]string{"a", "b", "c", "d"}},
		{name: "a,,c,.txt", want: [4]string{"a", "", "c", ""}},
		{name: "x,y,z,w.v1.csv", want: [4]string{"x", "y", "z", "w.v1"}},
		{name: "broken-name.txt", wantErr: true},
		{name: "a,b,c.txt", wantErr: true},
		{name: "a,b,c,d,e.txt", wantErr: true},
		{name: "a,b,c.d,e", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrMalformedName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunScenarios(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "graph.txt")

	touch(t, in, "alice,2023,graphA,weighted.png")
	touch(t, in, "broken-name.txt")
	require.NoError(t, os.Mkdir(filepath.Join(in, "nested,1,2,3"), 0755))

	var diag bytes.Buffer
	result, err := New(&diag).Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Equal(t, []string{"alice,2023,graphA,weighted"}, readLines(t, out))
	assert.Equal(t,
		"Skipping malformed filename: broken-name.txt\n"+
			"Bundled entries written to "+out+"\n",
		diag.String())

	require.Len(t, result.Records, 1)
	assert.Equal(t, "alice,2023,graphA,weighted.png", result.Records[0].SourceName)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "broken-name.txt", result.Skipped[0].SourceName)
	assert.Equal(t, 1, result.Skipped[0].FieldCount)
	assert.Equal(t, 1, result.Ignored)
}

func TestRunEmptyDirectory(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "graph.txt")

	var diag bytes.Buffer
	result, err := New(&diag).Run(context.Background(), in, out)
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
	assert.Empty(t, result.Records)
	assert.Equal(t, "Bundled entries written to "+out+"\n", diag.String())
}

func TestRunEveryLineHasFourFields(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "graph.txt")

	names := []string{
		"a,b,c,d.txt",
		"e,f,g,h",
		"i,j,k,l.tar.gz",
		"m,n,o.txt",
		"p,q,r,s,t.txt",
		"nocommas",
		".hidden",
	}
	for _, n := range names {
		touch(t, in, n)
	}

	var diag bytes.Buffer
	_, err := New(&diag).Run(context.Background(), in, out)
	require.NoError(t, err)

	lines := readLines(t, out)
	assert.ElementsMatch(t, []string{"a,b,c,d", "e,f,g,h", "i,j,k,l.tar"}, lines)
	for _, line := range lines {
		assert.Len(t, strings.Split(line, ","), 4, line)
	}

	for _, skipped := range []string{"m,n,o.txt", "p,q,r,s,t.txt", "nocommas", ".hidden"} {
		assert.Contains(t, diag.String(), "Skipping malformed filename: "+skipped+"\n")
	}
	assert.NotContains(t, diag.String(), "a,b,c,d.txt")
}

func TestRunSubdirectoryIsSilent(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.Mkdir(filepath.Join(in, "nested,1,2,3"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(in, "plain"), 0755))

	var diag bytes.Buffer
	result, err := New(&diag).Run(context.Background(), in, out)
	require.NoError(t, err)

	assert.Empty(t, readLines(t, out))
	assert.NotContains(t, diag.String(), "Skipping")
	assert.Equal(t, 2, result.Ignored)
}

func TestRunIsIdempotent(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "graph.txt")
	touch(t, in, "a,b,c,d.txt")
	touch(t, in, "w,x,y,z.csv")
	touch(t, in, "bad.txt")

	b := New(&bytes.Buffer{})
	_, err := b.Run(context.Background(), in, out)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = b.Run(context.Background(), in, out)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "a,b,c,d\nw,x,y,z\n", string(second))
}

func TestRunOutputInsideInputIsIdempotent(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a,b,c,d.txt")
	out := filepath.Join(in, "w,x,y,z.txt")

	var diag bytes.Buffer
	b := New(&diag)
	_, err := b.Run(context.Background(), in, out)
	require.NoError(t, err)
	first, err := os.ReadFile(out)
	require.NoError(t, err)

	_, err = b.Run(context.Background(), in, out)
	require.NoError(t, err)
	second, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, "a,b,c,d\nw,x,y,z\n", string(first))
	assert.Equal(t, first, second)
}

func TestRunMalformedOutputInsideInput(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(in, "graph.txt")

	var diag bytes.Buffer
	_, err := New(&diag).Run(context.Background(), in, out)
	require.NoError(t, err)
	assert.Contains(t, diag.String(), "Skipping malformed filename: graph.txt\n")
	assert.Empty(t, readLines(t, out))
}

func TestRunInputIsAFile(t *testing.T) {
	in := filepath.Join(t.TempDir(), "a,b,c,d.txt")
	require.NoError(t, os.WriteFile(in, nil, 0644))
	out := filepath.Join(t.TempDir(), "graph.txt")

	_, err := New(&bytes.Buffer{}).Run(context.Background(), in, out)
	var fsErr *FileSystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "list", fsErr.Op)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunTruncatesExistingOutput(t *testing.T) {
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(out, []byte("stale,stale,stale,stale\n"), 0644))
	touch(t, in, "a,b,c,d.txt")

	_, err := New(&bytes.Buffer{}).Run(context.Background(), in, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"a,b,c,d"}, readLines(t, out))
}

func TestRunMissingInputDirectory(t *testing.T) {
	out := filepath.Join(t.TempDir(), "graph.txt")

	var diag bytes.Buffer
	result, err := New(&diag).Run(context.Background(), filepath.Join(t.TempDir(), "missing"), out)
	require.Error(t, err)
	assert.Nil(t, result)

	var fsErr *FileSystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "list", fsErr.Op)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file should be produced")
	assert.Empty(t, diag.String())
}

func TestRunUnwritableOutput(t *testing.T) {
	in := t.TempDir()
	touch(t, in, "a,b,c,d.txt")
	out := filepath.Join(t.TempDir(), "no-such-dir", "graph.txt")

	_, err := New(&bytes.Buffer{}).Run(context.Background(), in, out)
	var fsErr *FileSystemError
	require.True(t, errors.As(err, &fsErr))
	assert.Equal(t, "create", fsErr.Op)
	assert.Equal(t, out, fsErr.Path)
}
