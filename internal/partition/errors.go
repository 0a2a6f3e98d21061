package partition

import (
	"errors"
	"fmt"
)

// InvalidRangeError reports a date range the planner refuses to plan.
//
// Planning never guesses intent for malformed input: a missing date, an
// impossible calendar date or a reversed range all fail fast with this error.
type InvalidRangeError struct {
	// Code identifies the error category.
	Code RangeErrorCode

	// Message is a human-readable description.
	Message string

	// Start and End are the offending bounds, when known.
	Start Date
	End   Date
}

// RangeErrorCode categorizes range errors.
type RangeErrorCode string

const (
	// ErrCodeNullDate indicates a missing (zero) start or end date.
	ErrCodeNullDate RangeErrorCode = "NULL_DATE"

	// ErrCodeInvalidDate indicates a date that is not a real calendar day.
	ErrCodeInvalidDate RangeErrorCode = "INVALID_DATE"

	// ErrCodeInvalidRange indicates start is after end.
	ErrCodeInvalidRange RangeErrorCode = "INVALID_RANGE"
)

// Error implements the error interface.
func (e *InvalidRangeError) Error() string {
	if !e.Start.IsZero() || !e.End.IsZero() {
		return fmt.Sprintf("%s: %s (start=%s, end=%s)", e.Code, e.Message, e.Start, e.End)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsInvalidRange returns true if err is (or wraps) an InvalidRangeError.
func IsInvalidRange(err error) bool {
	var re *InvalidRangeError
	return errors.As(err, &re)
}

// checkRange validates the planner precondition start <= end.
func checkRange(start, end Date) error {
	if start.IsZero() || end.IsZero() {
		return &InvalidRangeError{
			Code:    ErrCodeNullDate,
			Message: "start and end dates are required",
			Start:   start,
			End:     end,
		}
	}
	for _, d := range []Date{start, end} {
		if !d.Valid() {
			return &InvalidRangeError{
				Code:    ErrCodeInvalidDate,
				Message: fmt.Sprintf("%s is not a calendar date in years 1..9999", d),
				Start:   start,
				End:     end,
			}
		}
	}
	if start.After(end) {
		return &InvalidRangeError{
			Code:    ErrCodeInvalidRange,
			Message: "start date is after end date",
			Start:   start,
			End:     end,
		}
	}
	return nil
}
