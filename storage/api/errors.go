package api

import (
	"errors"
	"fmt"
)

// Code is the backend error code. The range is disjoint from the wallet
// level error kinds.
type Code int

const (
	AlreadyExists Code = 1001 + iota
	NotFound
	ItemNotFound
	ItemAlreadyExists
	IOError
	ConfigError
	QueryError
	BackendError
	InvalidHandle
)

var codeNames = map[Code]string{
	AlreadyExists:     "storage already exists",
	NotFound:          "storage not found",
	ItemNotFound:      "item not found",
	ItemAlreadyExists: "item already exists",
	IOError:           "storage io error",
	ConfigError:       "storage config error",
	QueryError:        "storage query error",
	BackendError:      "storage backend error",
	InvalidHandle:     "invalid storage handle",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("storage error %d", int(c))
}

// Error is the error every backend returns.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Code.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Errorf builds a backend error with a formatted message.
func Errorf(c Code, format string, a ...any) *Error {
	return &Error{Code: c, Msg: fmt.Sprintf(format, a...)}
}

// Wrap builds a backend error caused by err. A nil err gives nil.
func Wrap(c Code, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Code: c, Err: err}
}

// CodeOf returns the backend code of err, BackendError if err isn't one of
// ours.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return BackendError
}

// IsCode tells if err is a backend error with code c.
func IsCode(err error, c Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == c
}
