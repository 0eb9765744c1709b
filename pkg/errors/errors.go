package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is what the API reports to clients: a stable code, the HTTP status
// it is served with, and a human message. Err keeps the cause for logs.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on code, so errors derived with WithMessage or Wrap still match
// the predefined value they came from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// WithMessage copies e with a more specific message.
func (e *Error) WithMessage(message string) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: message, Err: e.Err}
}

// Wrap copies e with message and err as the cause.
func (e *Error) Wrap(err error, message string) *Error {
	return &Error{Code: e.Code, Status: e.Status, Message: message, Err: err}
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrInvalidAPIKey      = New("INVALID_API_KEY", http.StatusUnauthorized, "invalid API key signature")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	// ErrUnreadableUpload covers multipart files that are missing or cannot be opened
	ErrUnreadableUpload = New("UNREADABLE_UPLOAD", http.StatusBadRequest, "upload could not be read")
	ErrInternal         = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError turns anything returned by a handler dependency into an *Error.
// Unknown errors become ErrInternal with the cause attached.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.Wrap(err, ErrInternal.Message)
}

// Validation reports err's text as a VALIDATION_ERROR
func Validation(err error) *Error {
	return ErrValidation.Wrap(err, err.Error())
}
