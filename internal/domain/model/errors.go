package model

import "errors"

// ErrorKind tags an error with the failure category the UI reacts to.
type ErrorKind string

const (
	KindAuth       ErrorKind = "auth"
	KindValidation ErrorKind = "validation"
	KindProvider   ErrorKind = "provider"
	KindParse      ErrorKind = "parse"
	KindNotFound   ErrorKind = "not_found"
)

// Error is the tagged error returned across the application boundary.
// Message is the human-readable text shown to the user; Op names the
// operation or workflow step that failed.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// OpOf returns the Op of the first *Error in err's chain, or "" if none.
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
