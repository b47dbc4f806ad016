package archiver

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
)

// ErrorKind classifies a per-file failure.
type ErrorKind string

// Per-file failure kinds.
const (
	KindPermission ErrorKind = "permission"
	KindIO         ErrorKind = "io"
	KindUnexpected ErrorKind = "unexpected"
)

// FileError describes a file that could not be added to the archive.
type FileError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *FileError) Error() string {
	switch e.Kind {
	case KindPermission:
		return fmt.Sprintf("access denied to file %s: %v", e.Path, e.Err)
	case KindIO:
		return fmt.Sprintf("failed to copy file %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("unexpected error with file %s: %v", e.Path, e.Err)
	}
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func newFileError(path string, err error) *FileError {
	return &FileError{Path: path, Kind: classify(err), Err: err}
}

// classify maps err onto a failure kind. Permission is checked first since
// permission errors are also path errors.
func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return KindPermission
	case isIOError(err):
		return KindIO
	default:
		return KindUnexpected
	}
}

func isIOError(err error) bool {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return true
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		return true
	}

	return errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrShortWrite) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrClosed)
}
