package storage

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrMissing is returned by Backend.Read when nothing has been stored yet.
var ErrMissing = errors.New("no stored tasks")

// CorruptError reports stored data that could not be decoded.
type CorruptError struct {
	Location string
	Err      error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt task store %s: %v", e.Location, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Backend reads and writes the whole collection at once.
//
// Read returns the decoded top-level value (normally []any of
// map[string]any), ErrMissing when nothing is stored, or a *CorruptError.
type Backend interface {
	Read() (any, error)
	Write(tasks []Task) error
	Location() string
	Close() error
}

// quarantiner is implemented by backends that can set corrupt data aside.
type quarantiner interface {
	Quarantine(now time.Time) (string, error)
}

// quarantineCopy copies the file at path next to itself with a timestamped
// suffix and returns the copy's path.
func quarantineCopy(path string, now time.Time) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read corrupt task store: %w", err)
	}
	dst := fmt.Sprintf("%s.corrupt-%s", path, now.UTC().Format("20060102T150405Z"))
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("write quarantine copy: %w", err)
	}
	return dst, nil
}
