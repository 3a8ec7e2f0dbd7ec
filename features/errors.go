package features

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	errNotFinite  = errors.New("not a finite number")
	errNotInteger = errors.New("not an integer")
)

// MissingFieldError is returned when a column has neither a value nor a default.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// UnknownFieldError is returned for input names outside the schema.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// ParseError is returned when raw input cannot be converted to the field's type.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("field %q: cannot convert %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// RangeError is returned for values outside the field's declared domain.
type RangeError struct {
	Field  string
	Value  float64
	Min    float64
	Max    float64
	Reason string
}

func (e *RangeError) Error() string {
	value := strconv.FormatFloat(e.Value, 'f', -1, 64)
	if e.Reason != "" {
		return fmt.Sprintf("field %q: value %s %s", e.Field, value, e.Reason)
	}
	return fmt.Sprintf("field %q: value %s outside [%s, %s]", e.Field, value,
		strconv.FormatFloat(e.Min, 'f', -1, 64), strconv.FormatFloat(e.Max, 'f', -1, 64))
}

// IsInputError reports whether err was caused by bad user input.
func IsInputError(err error) bool {
	var (
		missing *MissingFieldError
		unknown *UnknownFieldError
		parse   *ParseError
		rng     *RangeError
	)
	return errors.As(err, &missing) || errors.As(err, &unknown) ||
		errors.As(err, &parse) || errors.As(err, &rng)
}
