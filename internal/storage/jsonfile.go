package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// JSONFile keeps the collection as an indented JSON array in one file.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) (*JSONFile, error) {
	if path == "" {
		return nil, errors.New("task file path is empty")
	}
	return &JSONFile{path: path}, nil
}

func (f *JSONFile) Location() string { return f.path }

func (f *JSONFile) Close() error { return nil }

func (f *JSONFile) Read() (any, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMissing
	}
	if err != nil {
		return nil, &CorruptError{Location: f.path, Err: err}
	}
	raw, err := decodeJSON(data)
	if err != nil {
		return nil, &CorruptError{Location: f.path, Err: err}
	}
	return raw, nil
}

func (f *JSONFile) Write(tasks []Task) error {
	var buf bytes.Buffer
	if err := encodeJSON(&buf, tasks); err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create task dir: %w", err)
		}
	}
	if err := writeFileAtomic(f.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file next to path and renames
// it into place, so a reader sees either the old or the new document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Quarantine copies the current file next to itself with a timestamped
// suffix and returns the copy's path.
func (f *JSONFile) Quarantine(now time.Time) (string, error) {
	return quarantineCopy(f.path, now)
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number.
func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return raw, nil
}

// encodeJSON writes tasks as a two-space indented array with a trailing
// newline. Non-ASCII and HTML characters are written as-is.
func encodeJSON(w io.Writer, tasks []Task) error {
	if tasks == nil {
		tasks = []Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}
