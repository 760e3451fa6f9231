package bundler

import (
	"errors"
	"fmt"
)

// ErrMalformedName is returned by ParseName when a base name does not split
// into exactly four fields.
var ErrMalformedName = errors.New("malformed filename")

var errNotDir = errors.New("not a directory")

// FileSystemError reports a failure to list the input directory or to write
// the output file. It aborts the run.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}
