// Package errs is the wallet level error taxonomy. Every error returned from
// the wallet facade carries a Kind with a stable numeric code. Backend errors
// are translated one-to-one with FromStorage.
package errs

import (
	"errors"
	"fmt"

	"github.com/findy-network/findy-wallet/storage/api"
)

// Kind is the stable error code of the wallet error.
type Kind int

const (
	InvalidState     Kind = 112
	InvalidStructure Kind = 113
	IOError          Kind = 114

	InvalidHandle         Kind = 200
	UnknownType           Kind = 201
	TypeAlreadyRegistered Kind = 202
	AlreadyExists         Kind = 203
	NotFound              Kind = 204
	AlreadyOpened         Kind = 206
	AccessFailed          Kind = 207
	InputError            Kind = 208
	EncodingError         Kind = 209
	StorageError          Kind = 210
	EncryptionError       Kind = 211
	ItemNotFound          Kind = 212
	ItemAlreadyExists     Kind = 213
	QueryError            Kind = 214
)

var names = map[Kind]string{
	InvalidState:          "invalid state",
	InvalidStructure:      "invalid structure",
	IOError:               "io error",
	InvalidHandle:         "invalid wallet handle",
	UnknownType:           "unknown storage type",
	TypeAlreadyRegistered: "storage type already registered",
	AlreadyExists:         "wallet already exists",
	NotFound:              "wallet not found",
	AlreadyOpened:         "wallet already opened",
	AccessFailed:          "wallet access failed",
	InputError:            "wallet input error",
	EncodingError:         "wallet encoding error",
	StorageError:          "wallet storage error",
	EncryptionError:       "wallet encryption error",
	ItemNotFound:          "wallet item not found",
	ItemAlreadyExists:     "wallet item already exists",
	QueryError:            "wallet query error",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("wallet error %d", int(k))
}

// Error is the wallet error. Msg is optional detail, Err the optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so that errors.Is(err, errs.New(errs.NotFound))
// works without comparing the messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New returns a new wallet error of the kind with optional formatted detail.
func New(k Kind, format ...any) *Error {
	e := &Error{Kind: k}
	if len(format) > 0 {
		if f, ok := format[0].(string); ok {
			e.Msg = fmt.Sprintf(f, format[1:]...)
		}
	}
	return e
}

// Wrap returns a new wallet error of the kind caused by err.
func Wrap(k Kind, err error, format ...any) *Error {
	e := New(k, format...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first wallet error in the err chain. Errors
// which are not wallet errors are reported as StorageError.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StorageError
}

// Is tells if err has the wallet error kind k in its chain.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

var storageKinds = map[api.Code]Kind{
	api.AlreadyExists:     AlreadyExists,
	api.NotFound:          NotFound,
	api.ItemNotFound:      ItemNotFound,
	api.ItemAlreadyExists: ItemAlreadyExists,
	api.IOError:           StorageError,
	api.ConfigError:       InputError,
	api.QueryError:        QueryError,
	api.BackendError:      StorageError,
	api.InvalidHandle:     InvalidHandle,
}

// FromStorage translates a backend error to the wallet error. Wallet errors
// pass through untouched, unknown errors become StorageError.
func FromStorage(err error) error {
	if err == nil {
		return nil
	}
	var we *Error
	if errors.As(err, &we) {
		return err
	}
	var se *api.Error
	if errors.As(err, &se) {
		k, ok := storageKinds[se.Code]
		if !ok {
			k = StorageError
		}
		return Wrap(k, err)
	}
	return Wrap(StorageError, err)
}
