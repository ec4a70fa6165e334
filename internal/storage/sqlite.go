package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite keeps the collection in a single table ordered by position.
type SQLite struct {
	db   *sql.DB
	path string

	// broken is set when an existing file could not be opened as a
	// database. Reads report it as corruption; the next Write replaces
	// the file with a fresh database.
	broken error
}

func OpenSQLite(dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, err
		}
	}
	s := &SQLite{path: dbPath}
	if err := s.connect(); err != nil {
		if !isLocalFile(dbPath) {
			return nil, err
		}
		s.broken = err
	}
	return s, nil
}

func (s *SQLite) connect() error {
	db, err := sql.Open("sqlite", sqliteDSN(s.path))
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", s.path, err)
	}
	db.SetMaxOpenConns(1)

	s.db = db
	if err := s.ensureSchema(); err != nil {
		db.Close()
		s.db = nil
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// reset removes an unreadable database file and starts a fresh one.
func (s *SQLite) reset() error {
	for _, suffix := range []string{"", "-journal", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove unreadable database: %w", err)
		}
	}
	if err := s.connect(); err != nil {
		return err
	}
	s.broken = nil
	return nil
}

// Quarantine copies an unreadable database file aside.
func (s *SQLite) Quarantine(now time.Time) (string, error) {
	return quarantineCopy(s.path, now)
}

func isLocalFile(path string) bool {
	if strings.HasPrefix(path, "file:") {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (s *SQLite) Location() string { return s.path }

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	position INTEGER PRIMARY KEY,
	subject TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return err
	}
	return s.ensureTaskColumns()
}

// ensureTaskColumns adds columns missing from databases written by older
// builds, which only stored the subject.
func (s *SQLite) ensureTaskColumns() error {
	required := []struct{ name, alter string }{
		{"description", `ALTER TABLE tasks ADD COLUMN description TEXT NOT NULL DEFAULT '-';`},
		{"deadline", `ALTER TABLE tasks ADD COLUMN deadline TEXT NOT NULL DEFAULT '-';`},
		{"completed", `ALTER TABLE tasks ADD COLUMN completed INTEGER NOT NULL DEFAULT 0;`},
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(tasks);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, col := range required {
		if _, ok := existing[col.name]; ok {
			continue
		}
		if _, err := s.db.Exec(col.alter); err != nil {
			return err
		}
	}
	return nil
}

// Read returns the rows as records so they go through the same
// normalization as a decoded JSON document.
func (s *SQLite) Read() (any, error) {
	if s.broken != nil {
		return nil, &CorruptError{Location: s.path, Err: s.broken}
	}
	rows, err := s.db.Query(`SELECT subject, description, deadline, completed FROM tasks ORDER BY position;`)
	if err != nil {
		return nil, &CorruptError{Location: s.path, Err: err}
	}
	defer rows.Close()

	items := []any{}
	for rows.Next() {
		var subject, description, deadline sql.NullString
		var completed int
		if err := rows.Scan(&subject, &description, &deadline, &completed); err != nil {
			return nil, &CorruptError{Location: s.path, Err: err}
		}
		rec := map[string]any{"completed": completed == 1}
		if subject.Valid {
			rec["subject"] = subject.String
		}
		if description.Valid {
			rec["description"] = description.String
		}
		if deadline.Valid {
			rec["deadline"] = deadline.String
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &CorruptError{Location: s.path, Err: err}
	}
	return items, nil
}

// Write replaces every row inside one transaction.
func (s *SQLite) Write(tasks []Task) error {
	if s.broken != nil {
		if err := s.reset(); err != nil {
			return err
		}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks;`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO tasks (position, subject, description, deadline, completed) VALUES (?, ?, ?, ?, ?);`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, t := range tasks {
		done := 0
		if t.Completed {
			done = 1
		}
		if _, err := stmt.Exec(i+1, t.Subject, t.Description, t.Deadline, done); err != nil {
			return fmt.Errorf("insert task %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
