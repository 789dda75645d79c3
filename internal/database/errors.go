package database

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned before any write when a record misses required fields.
var ErrInvalidRecord = errors.New("invalid record")

// PersistenceError wraps a failed store operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistenceErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

func validateProfile(p *UserProfile) error {
	if p == nil {
		return fmt.Errorf("%w: nil user profile", ErrInvalidRecord)
	}
	if p.ChatID == 0 {
		return fmt.Errorf("%w: user profile must have a non-zero chat_id", ErrInvalidRecord)
	}
	return nil
}

func validateTurn(t *ChatTurn) error {
	if t == nil {
		return fmt.Errorf("%w: nil chat turn", ErrInvalidRecord)
	}
	if t.ChatID == 0 {
		return fmt.Errorf("%w: chat turn must have a non-zero chat_id", ErrInvalidRecord)
	}
	return nil
}

func validateFile(f *FileRecord) error {
	if f == nil {
		return fmt.Errorf("%w: nil file record", ErrInvalidRecord)
	}
	if f.FileName == "" {
		return fmt.Errorf("%w: file record must have a file name", ErrInvalidRecord)
	}
	return nil
}
