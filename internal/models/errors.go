package models

import (
	"errors"
	"fmt"
)

// ValidationError is returned for missing or malformed input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Field != "":
		return fmt.Sprintf("invalid %s", e.Field)
	default:
		return "validation error"
	}
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// NotFoundError is returned when a waypoint is absent from the registry.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string {
	if e.Msg == "" {
		return "not found"
	}
	return e.Msg
}

// MissingStationData reports the first pair of a path that could not be resolved.
func MissingStationData(from, to string) *NotFoundError {
	return &NotFoundError{Msg: fmt.Sprintf("missing station data: %s → %s", from, to)}
}

// StoreError wraps a failure of the underlying station store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("station store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("station store %s failed", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsStore(err error) bool {
	var target *StoreError
	return errors.As(err, &target)
}
