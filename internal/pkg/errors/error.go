package errors

import (
	"errors"
	"fmt"
)

// AppError carries a business code alongside the underlying cause
type AppError struct {
	Code    int
	Message string
	Details string
	Err     error
}

func (e *AppError) Error() string {
	switch {
	case e.Err != nil && e.Details != "":
		return fmt.Sprintf("[%d] %s (%s): %v", e.Code, e.Message, e.Details, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	case e.Details != "":
		return fmt.Sprintf("[%d] %s: %s", e.Code, e.Message, e.Details)
	default:
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError for code with optional details
func New(code int, details ...string) *AppError {
	return &AppError{Code: code, Message: GetMessage(code), Details: first(details)}
}

// Wrap attaches code to err. An AppError already in the chain keeps its code,
// so the innermost failure decides the HTTP status.
func Wrap(err error, code int, details ...string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if d := first(details); d != "" {
			appErr.Details = d
		}
		return appErr
	}

	return &AppError{Code: code, Message: GetMessage(code), Details: first(details), Err: err}
}

func Wrapf(err error, code int, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Is reports whether err carries code
func Is(err error, code int) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ExtractCode returns the code of err, ErrInternalServer for foreign errors
func ExtractCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternalServer
}

// GetDetails returns the details of err, falling back to the cause text
func GetDetails(err error) string {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr) && appErr.Details != "":
		return appErr.Details
	case appErr != nil && appErr.Err != nil:
		return appErr.Err.Error()
	case appErr != nil:
		return ""
	case err != nil:
		return err.Error()
	default:
		return ""
	}
}

// Describe maps err to the HTTP status and the client-facing message
func Describe(err error) (status int, message string) {
	code := ExtractCode(err)
	return GetHTTPStatus(code), FormatError(code, GetDetails(err))
}

func first(details []string) string {
	if len(details) > 0 {
		return details[0]
	}
	return ""
}
