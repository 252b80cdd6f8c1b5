// Package apperrors carries the error taxonomy shared by the service layer:
// validation failures, semantically disallowed operations, unique-constraint
// conflicts, missing references and store failures. Handlers translate kinds
// to HTTP statuses; services match them with errors.Is / KindOf.
package apperrors

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindInvalidOperation
	KindConflict
	KindNotFound
	KindStoreFailure
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func InvalidOperation(message string) *Error {
	return New(KindInvalidOperation, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Store(message string, err error) *Error {
	return Wrap(KindStoreFailure, message, err)
}

// KindOf reports the kind of the outermost *Error in err's chain, or
// KindUnknown when the chain carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
