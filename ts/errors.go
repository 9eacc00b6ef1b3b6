package ts

import (
	"errors"
	"fmt"
)

// Common errors returned by the codec.
var (
	// ErrNotTS is returned when the document root is not a <TS> element.
	ErrNotTS = errors.New("document root is not <TS>")

	// ErrEmptyDocument is returned when the input contains no root element.
	ErrEmptyDocument = errors.New("empty translation document")

	// ErrTrailingContent is returned when markup or text follows </TS>.
	ErrTrailingContent = errors.New("content after root element")

	// ErrNilCatalog is returned when a nil catalog is passed to the encoder.
	ErrNilCatalog = errors.New("nil catalog")
)

// DecodeError wraps a failure to parse a translation document.
type DecodeError struct {
	Path   string
	Line   int
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	where := e.Path
	if where == "" {
		where = "<input>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("decode %s:%d: %v", where, e.Line, e.Err)
	}
	return fmt.Sprintf("decode %s (offset %d): %v", where, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
