// Package cverr defines the error taxonomy shared by the workbench packages.
//
// Every error that crosses a package boundary carries a Kind so the tool
// server can decide how to surface it: invalid input becomes a user
// notification, processing failures are reported after the pipeline has
// released its flag, and skipped runs are silent.
package cverr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindProcessing   Kind = "processing"
	KindSkipped      Kind = "skipped"
	KindConfig       Kind = "config"
	KindExport       Kind = "export"
	KindUnknown      Kind = "unknown"
)

// Error is a kind-tagged error with the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap tags err with kind. A nil err yields nil, and an err that already
// carries a Kind is returned unchanged.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// IsKind reports whether the first typed error in the chain has the given kind.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// KindOf returns the kind of the first typed error in the chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

// UserMessage returns the message suitable for a notification: the typed
// message when present, otherwise the error text.
func UserMessage(err error) string {
	var target *Error
	if errors.As(err, &target) {
		if target.Cause != nil && target.Kind == KindProcessing {
			return fmt.Sprintf("%s: %v", target.Message, target.Cause)
		}
		return target.Message
	}
	return err.Error()
}
