// Package apperr defines the coded errors shared by the meal planning packages.
// Callers branch on Code, never on Message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidName      = "INVALID_NAME"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeNotFound         = "NOT_FOUND"
	CodeNotATemplate     = "NOT_A_TEMPLATE"
	CodeOutOfRange       = "OUT_OF_RANGE"
	CodeMalformedKey     = "MALFORMED_KEY"
	CodeInvalidStartDate = "INVALID_START_DATE"
	CodeInvalidMealSlots = "INVALID_MEAL_SLOTS"
	CodeUnknownSlot      = "UNKNOWN_SLOT"
	CodeValidation       = "VALIDATION_FAILED"
	CodeTooManySlots     = "TOO_MANY_SLOTS"
	CodeSlotIsDefault    = "SLOT_IS_DEFAULT"
	CodeInvalidOrder     = "INVALID_ORDER"
	CodeRecipeInUse      = "RECIPE_IN_USE"
)

// Error is a typed error carrying a stable machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so sentinels like NotFound work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New returns an *Error with the given code and message.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a format string.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) string {
	if typed, ok := As(err); ok {
		return typed.Code
	}
	return ""
}

// Sentinels for errors.Is checks.
var (
	NotFound     = New(CodeNotFound, "not found")
	NotATemplate = New(CodeNotATemplate, "not a template")
	OutOfRange   = New(CodeOutOfRange, "out of range")
	MalformedKey = New(CodeMalformedKey, "malformed key")
)

// HTTPStatus maps a code to the status the API answers with. Unknown codes
// are server errors.
func HTTPStatus(code string) int {
	switch code {
	case CodeInvalidName, CodeOutOfRange, CodeMalformedKey, CodeInvalidStartDate,
		CodeInvalidMealSlots, CodeUnknownSlot, CodeValidation, CodeTooManySlots, CodeInvalidOrder:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicateName, CodeRecipeInUse, CodeSlotIsDefault:
		return http.StatusConflict
	case CodeNotATemplate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
