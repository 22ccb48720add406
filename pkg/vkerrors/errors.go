// Package vkerrors defines the error kinds produced by the backup engine.
//
// Errors are classified by Kind rather than by Go type so that callers
// (the CLI, tests) can branch on "what went wrong" without importing
// engine internals. Use errors.As to recover a *Error and inspect Kind.
package vkerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an engine failure. See spec §7 for the full list.
type Kind string

const (
	KindSourceMissing         Kind = "source_missing"
	KindReadFailed            Kind = "read_failed"
	KindWriteFailed           Kind = "write_failed"
	KindDuplicatePath         Kind = "duplicate_path"
	KindDuplicateDigest       Kind = "duplicate_digest"
	KindDanglingReference     Kind = "dangling_reference"
	KindReferentialViolation  Kind = "referential_violation"
	KindSnapshotMissing       Kind = "snapshot_missing"
	KindTransactionFailed     Kind = "transaction_failed"
	KindInvalidInput          Kind = "invalid_input"
	KindMissing               Kind = "missing"
)

// Error is the concrete error type carrying a Kind, a human-readable
// detail, and an optional wrapped cause.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with the given kind and detail.
func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Wrap builds an *Error that carries an underlying cause.
func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
