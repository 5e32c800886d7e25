package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// JSON returns the error as a JSON string
func (e *Error) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of kind carrying a more specific message, so callers
// can still match the kind with errors.Is.
func Wrap(kind *Error, message string) *Error {
	return &Error{
		Code:    kind.Code,
		Message: message,
		Err:     kind,
	}
}

// AsError extracts an *Error from err, falling back to ErrInternalServer.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return New(ErrInternalServer.Code, ErrInternalServer.Message, err)
}

// Common error types
var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden          = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Database error types
var (
	ErrDatabaseConnection  = New(http.StatusServiceUnavailable, "Database connection error", nil)
	ErrDatabaseQuery       = New(http.StatusInternalServerError, "Database query error", nil)
	ErrDatabaseTransaction = New(http.StatusInternalServerError, "Database transaction error", nil)
)

// Validation error types
var (
	ErrValidation   = New(http.StatusBadRequest, "Validation error", nil)
	ErrInvalidInput = New(http.StatusBadRequest, "Invalid input", nil)
)

// Fulfillment error types. Each guard failure has its own kind so clients
// can tell "stock ran out" from "already claimed" from "not your delivery".
var (
	ErrInsufficientStock = New(http.StatusBadRequest, "Insufficient stock", nil)
	ErrCardDeclined      = New(http.StatusBadRequest, "Payment processor declined the card", nil)
	ErrAlreadyClaimed    = New(http.StatusConflict, "Delivery already claimed or not pending", nil)
	ErrNotAssigned       = New(http.StatusForbidden, "Not allowed: you are not assigned to this delivery", nil)
	ErrInvalidTransition = New(http.StatusBadRequest, "Invalid status transition", nil)
	ErrNotYetDelivered   = New(http.StatusBadRequest, "Payment can only be marked as Paid when order is Delivered", nil)
	ErrAlreadyPaid       = New(http.StatusBadRequest, "Payment has already been settled", nil)
	ErrNoPaymentRecord   = New(http.StatusNotFound, "Payment record not found for this delivery", nil)
)
