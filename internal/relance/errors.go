package relance

import (
	"errors"
	"fmt"
)

// ErrRunInProgress is returned when another batch run holds the run lock
var ErrRunInProgress = errors.New("another reminder batch is already running")

// PersistenceError wraps a storage failure (connectivity loss, constraint violation, ...)
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// SendError is a failed or timed out delivery through the mailer
type SendError struct {
	To  string
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.To, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
