// Package apperrors holds the typed failures raised by the ordering services.
// Controllers map a Kind to an HTTP status; everything else is a 500.
package apperrors

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidOrder
	KindInvalidCoupon
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindInvalidOrder:
		return "InvalidOrder"
	case KindInvalidCoupon:
		return "InvalidCoupon"
	case KindConflict:
		return "Conflict"
	case KindValidation:
		return "Validation"
	default:
		return "Internal"
	}
}

// Error is a classified failure. Message is safe to show to API clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound formats "<resource> not found with <field> : '<value>'".
func NotFound(resource, field string, value interface{}) *Error {
	return newError(KindNotFound, "%s not found with %s : '%v'", resource, field, value)
}

func NotFoundf(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func InvalidOrder(format string, args ...interface{}) *Error {
	return newError(KindInvalidOrder, format, args...)
}

func InvalidCoupon(format string, args ...interface{}) *Error {
	return newError(KindInvalidCoupon, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return newError(KindConflict, format, args...)
}

// Wrap classifies err under kind, keeping it reachable through errors.Is/As.
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	e := newError(kind, format, args...)
	e.Err = err
	return e
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// FromLookup turns gorm.ErrRecordNotFound into a NotFound for resource and
// wraps any other failure as an internal error.
func FromLookup(err error, resource, field string, value interface{}) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(resource, field, value)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}
