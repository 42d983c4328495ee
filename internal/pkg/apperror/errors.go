// internal/pkg/apperror/errors.go
package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error so that callers can react without string matching
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindValidation
	KindEmptyCart
	KindPersistence
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindValidation:
		return "VALIDATION"
	case KindEmptyCart:
		return "EMPTY_CART"
	case KindPersistence:
		return "PERSISTENCE"
	case KindConflict:
		return "CONFLICT"
	default:
		return "INTERNAL"
	}
}

// Sentinels usable with errors.Is to test only the kind of an error.
var (
	ErrNotFound    = &Error{Kind: KindNotFound, Message: "not found"}
	ErrValidation  = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrEmptyCart   = &Error{Kind: KindEmptyCart, Message: "cart is empty"}
	ErrPersistence = &Error{Kind: KindPersistence, Message: "storage unavailable"}
	ErrConflict    = &Error{Kind: KindConflict, Message: "concurrent modification"}
)

// Error is a classified application error
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target carrying a Code
// only matches errors with that code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// New creates a classified error
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap classifies err under kind, keeping it reachable through errors.Unwrap
func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

func NotFound(code, format string, args ...interface{}) *Error {
	return New(KindNotFound, code, fmt.Sprintf(format, args...))
}

func Validation(code, format string, args ...interface{}) *Error {
	return New(KindValidation, code, fmt.Sprintf(format, args...))
}

func Persistence(message string, err error) *Error {
	return Wrap(KindPersistence, "persistence_error", message, err)
}

func Conflict(message string, err error) *Error {
	return Wrap(KindConflict, "conflict", message, err)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the code of the first *Error in err's chain
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return "internal_error"
}

// MessageOf returns the user-facing message of err. Wrapped causes of
// persistence and internal failures are not exposed.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindPersistence, KindInternal:
			return appErr.Message
		}
		return appErr.Error()
	}
	return "internal server error"
}
