package common

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("task not found")

// NotFound 带上id的ErrNotFound
func NotFound(id int64) error {
	return fmt.Errorf("%w: %d", ErrNotFound, id)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

type InvalidSortError struct {
	Field string
}

func (e *InvalidSortError) Error() string {
	return fmt.Sprintf("can't sort by column %s: column doesn't exist", e.Field)
}
