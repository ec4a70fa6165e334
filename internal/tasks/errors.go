package tasks

import "errors"

var (
	ErrNoSuchTask       = errors.New("no such task")
	ErrAlreadyCompleted = errors.New("task is already completed")
	ErrCancelled        = errors.New("cancelled")
	ErrEmptyField       = errors.New("field is required")
	ErrNotNumber        = errors.New("not a valid number")
)
