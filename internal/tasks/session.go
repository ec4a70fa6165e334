// Package tasks implements the operations a user performs on the task list.
//
// A Session owns the one in-memory collection. Every successful mutation
// is followed by a full save; a failed save is reported on the Outcome and
// the mutation stands.
package tasks

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"taskbook/internal/storage"
)

// Saver persists the whole collection.
type Saver interface {
	Save(tasks []storage.Task) error
}

// Outcome describes an applied mutation.
type Outcome struct {
	Task     storage.Task
	Position int
	SaveErr  error
}

type Session struct {
	tasks  []storage.Task
	saver  Saver
	logger *log.Logger
}

// NewSession takes ownership of tasks. A nil logger discards output.
func NewSession(tasks []storage.Task, saver Saver, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	owned := make([]storage.Task, len(tasks))
	copy(owned, tasks)
	return &Session{tasks: owned, saver: saver, logger: logger}
}

// Tasks returns a copy of the collection.
func (s *Session) Tasks() []storage.Task {
	out := make([]storage.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Session) Len() int { return len(s.tasks) }

// Task returns the task at a 1-based position.
func (s *Session) Task(position int) (storage.Task, error) {
	if !s.valid(position) {
		return storage.Task{}, ErrNoSuchTask
	}
	return s.tasks[position-1], nil
}

// Add appends a pending task. All three fields must be non-blank.
func (s *Session) Add(subject, description, deadline string) (Outcome, error) {
	fields := [3]string{subject, description, deadline}
	for i, f := range fields {
		v, err := RequireText(f)
		if err != nil {
			return Outcome{}, err
		}
		fields[i] = v
	}
	t := storage.Task{Subject: fields[0], Description: fields[1], Deadline: fields[2]}
	s.tasks = append(s.tasks, t)
	return s.persist(t, len(s.tasks), "added task"), nil
}

// Complete marks the task at position as done. Completing a finished task
// changes nothing and returns ErrAlreadyCompleted.
func (s *Session) Complete(position int) (Outcome, error) {
	if !s.valid(position) {
		return Outcome{}, ErrNoSuchTask
	}
	t := &s.tasks[position-1]
	if t.Completed {
		return Outcome{Task: *t, Position: position}, ErrAlreadyCompleted
	}
	t.Completed = true
	return s.persist(*t, position, "completed task"), nil
}

// Delete removes the task at position when confirmation is affirmative.
// Later tasks move up one position.
func (s *Session) Delete(position int, confirmation string) (Outcome, error) {
	if !s.valid(position) {
		return Outcome{}, ErrNoSuchTask
	}
	t := s.tasks[position-1]
	if !IsConfirmation(confirmation) {
		return Outcome{Task: t, Position: position}, ErrCancelled
	}
	s.tasks = append(s.tasks[:position-1], s.tasks[position:]...)
	return s.persist(t, position, "deleted task"), nil
}

func (s *Session) persist(t storage.Task, position int, msg string) Outcome {
	out := Outcome{Task: t, Position: position}
	s.logger.Info(msg, "position", position, "subject", t.Subject)
	if err := s.saver.Save(s.tasks); err != nil {
		s.logger.Warn("save failed, changes kept in memory only", "err", err)
		out.SaveErr = err
	}
	return out
}

func (s *Session) valid(position int) bool {
	return position >= 1 && position <= len(s.tasks)
}

// RequireText trims v and rejects it when nothing is left.
func RequireText(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ErrEmptyField
	}
	return v, nil
}

// ParsePosition parses a 1-based task number typed by the user and checks
// it against a collection of n tasks.
func ParsePosition(input string, n int) (int, error) {
	if n == 0 {
		return 0, fmt.Errorf("there are no tasks: %w", ErrNoSuchTask)
	}
	pos, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("%q: %w", strings.TrimSpace(input), ErrNotNumber)
	}
	if pos < 1 || pos > n {
		return 0, fmt.Errorf("number must be between 1 and %d: %w", n, ErrNoSuchTask)
	}
	return pos, nil
}

// IsConfirmation reports whether token is an affirmative "y" answer.
func IsConfirmation(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), "y")
}
