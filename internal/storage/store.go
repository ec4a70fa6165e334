// Package storage loads and saves the task collection as a whole.
package storage

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// LoadState tells why a load produced the tasks it did.
type LoadState int

const (
	// StateMissing means nothing was stored yet.
	StateMissing LoadState = iota
	// StateLoaded means the stored document was read.
	StateLoaded
	// StateCorrupt means stored data existed but could not be used; the
	// collection starts empty.
	StateCorrupt
)

func (s LoadState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateLoaded:
		return "loaded"
	case StateCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// LoadResult is the outcome of Store.Load. Tasks is never nil.
type LoadResult struct {
	Tasks       []Task
	State       LoadState
	Err         error
	Dropped     int
	Warnings    []string
	Quarantined string
}

// Options configures Open.
type Options struct {
	Backend           string
	Path              string
	QuarantineCorrupt bool
	Logger            *log.Logger
}

type Store struct {
	backend    Backend
	logger     *log.Logger
	quarantine bool
	now        func() time.Time
}

// Open builds a Store over the backend named in opts.
func Open(opts Options) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch strings.ToLower(opts.Backend) {
	case "", BackendJSON:
		b, err = NewJSONFile(opts.Path)
	case BackendSQLite:
		b, err = OpenSQLite(opts.Path)
	case BackendMemory:
		b = NewMemory()
	default:
		err = fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	s := NewStore(b, opts.Logger)
	s.quarantine = opts.QuarantineCorrupt
	return s, nil
}

// NewStore wraps an existing backend. A nil logger discards output.
func NewStore(b Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Store{backend: b, logger: logger, now: time.Now}
}

func (s *Store) Location() string { return s.backend.Location() }

func (s *Store) Close() error { return s.backend.Close() }

// Load reads the whole collection. It never fails: missing or unusable
// data yields an empty collection and the reason is recorded on the result.
func (s *Store) Load() LoadResult {
	res := LoadResult{Tasks: []Task{}}
	raw, err := s.backend.Read()
	switch {
	case errors.Is(err, ErrMissing):
		res.State = StateMissing
		s.logger.Debug("no stored tasks", "location", s.Location())
		return res
	case err != nil:
		return s.corrupt(res, err)
	}

	tasks, dropped, ok := NormalizeAll(raw)
	if !ok {
		return s.corrupt(res, &CorruptError{Location: s.Location(), Err: errors.New("top-level value is not a list")})
	}
	res.State = StateLoaded
	res.Tasks = tasks
	res.Dropped = dropped
	res.Warnings = CheckDocument(raw)

	if dropped > 0 {
		s.logger.Warn("dropped malformed records", "location", s.Location(), "count", dropped)
	}
	for _, w := range res.Warnings {
		s.logger.Debug("stored record differs from schema", "detail", w)
	}
	s.logger.Debug("loaded tasks", "location", s.Location(), "count", len(tasks))
	return res
}

func (s *Store) corrupt(res LoadResult, err error) LoadResult {
	res.State = StateCorrupt
	res.Err = err
	s.logger.Warn("stored tasks unreadable, starting empty", "location", s.Location(), "err", err)
	if !s.quarantine {
		return res
	}
	q, ok := s.backend.(quarantiner)
	if !ok {
		return res
	}
	dst, qerr := q.Quarantine(s.now())
	if qerr != nil {
		s.logger.Error("quarantine failed", "err", qerr)
		return res
	}
	res.Quarantined = dst
	s.logger.Info("corrupt task file copied", "to", dst)
	return res
}

// Save replaces the stored collection with tasks.
func (s *Store) Save(tasks []Task) error {
	if err := s.backend.Write(tasks); err != nil {
		return fmt.Errorf("save tasks to %s: %w", s.Location(), err)
	}
	s.logger.Debug("saved tasks", "location", s.Location(), "count", len(tasks))
	return nil
}

// Export writes tasks to w in the given format ("json" or "yaml").
func Export(w io.Writer, tasks []Task, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		return encodeJSON(w, tasks)
	case "yaml", "yml":
		if tasks == nil {
			tasks = []Task{}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
