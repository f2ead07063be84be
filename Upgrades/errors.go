package Upgrades

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrorKind classifies engine failures so the HTTP layer can map them to a
// status code without inspecting message text.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindForbidden         ErrorKind = "forbidden"
	KindConflict          ErrorKind = "conflict"
	KindValidation        ErrorKind = "validation"
	KindInsufficientFunds ErrorKind = "insufficient_funds"
	KindInternal          ErrorKind = "internal"
)

// Error is the structured result every failed engine operation returns.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to the status code the API responds with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict, KindValidation, KindInsufficientFunds:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func insufficientFunds(msg string) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: msg}
}

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", cause: err}
}

// AsEngineError extracts an *Error from any error returned by the engine.
func AsEngineError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// errVersionConflict signals an optimistic-lock miss inside a transaction;
// the operation is retried from scratch and the error never leaves the engine.
var errVersionConflict = errors.New("proposal version conflict")
