package report

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when there are no records to aggregate.
var ErrEmptyDataset = errors.New("empty dataset")

// ErrDivisionByZero is returned when records exist but no orders were placed,
// so the average order value is undefined.
var ErrDivisionByZero = errors.New("division by zero: total orders is 0")

// WriteError reports that an artifact could not be written to Path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// NewWriteError wraps err as a WriteError for path.
func NewWriteError(path string, err error) error {
	if err == nil {
		return nil
	}
	return &WriteError{Path: path, Err: err}
}
