package usage

import (
	"errors"
	"fmt"
)

var (
	// ErrTooFewRows is returned when the export ends before the header row.
	ErrTooFewRows = errors.New("too few rows")

	// ErrMalformedRow is returned when a row is narrower than the column layout.
	ErrMalformedRow = errors.New("malformed row")

	// ErrBadPeriod is returned when a period cell is not "<start> to <end>".
	ErrBadPeriod = errors.New("invalid period")

	// ErrBadTimestamp is returned when a timestamp is not YYYY/MM/DD HH:MM.
	ErrBadTimestamp = errors.New("invalid timestamp")

	// ErrBadUsage is returned when a consumption value is not numeric.
	ErrBadUsage = errors.New("invalid usage value")

	// ErrEmptySeries is returned when statistics are requested for zero intervals.
	ErrEmptySeries = errors.New("empty series")
)

// ParseError describes why an export could not be parsed
type ParseError struct {
	Row   int    // 0-indexed row in the export, -1 when not row specific
	Value string // offending cell, truncated
	Err   error
}

func (e *ParseError) Error() string {
	value := e.Value
	if len(value) > 80 {
		value = value[:80] + "..."
	}
	if e.Row < 0 {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	if value == "" {
		return fmt.Sprintf("parse error at row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("parse error at row %d: %q: %v", e.Row, value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
