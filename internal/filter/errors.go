package filter

import (
	"errors"
	"fmt"
)

// Sentinel errors for the filter package.
var (
	// ErrSyntax is returned when filter text or a filter key is malformed.
	ErrSyntax = errors.New("filter: syntax error")

	// ErrUnknownOperator is returned when a key names an operator that is
	// not registered.
	ErrUnknownOperator = errors.New("filter: unknown operator")

	// ErrFieldNotFound is returned when an item does not expose a field a
	// filter expression references.
	ErrFieldNotFound = errors.New("filter: field not found")

	// ErrOperatorExists is returned when registering a symbol twice.
	ErrOperatorExists = errors.New("filter: operator already registered")
)

// SyntaxError reports malformed filter text. Key is empty when the text as a
// whole could not be decoded.
type SyntaxError struct {
	Key    string
	Reason string
	Cause  error
}

func (e *SyntaxError) Error() string {
	msg := "filter: syntax error"
	if e.Key != "" {
		msg += fmt.Sprintf(" in key %q", e.Key)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// UnknownOperatorError reports a key whose operator is not registered.
type UnknownOperatorError struct {
	Key      string
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("filter: unknown operator %q in key %q", e.Operator, e.Key)
}

func (e *UnknownOperatorError) Unwrap() error {
	return ErrUnknownOperator
}

// FieldNotFoundError reports a field that an item does not expose.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("filter: field %q not found", e.Field)
}

func (e *FieldNotFoundError) Unwrap() error {
	return ErrFieldNotFound
}
