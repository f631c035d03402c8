/*
Package errs provides the application error type and the error code constants.

This file defines CustomError, which carries a business code, a client-facing message and the
HTTP status used when the error is written as a response envelope.
*/
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"apitutor/internal/pkg/logx"
)

// CustomError is the error type returned by handlers, the user store and the realtime hub.
type CustomError struct {
	// Code is the business error code (see error_codes.go).
	Code int

	// Message is the client-facing description.
	Message string

	// Status is the HTTP status used when the error is sent as a response.
	Status int
}

// Error implements the error interface.
func (e CustomError) Error() string {
	return fmt.Sprintf("Error Code %d (HTTP %d): %s", e.Code, e.Status, e.Message)
}

// Is matches another *CustomError by code, so errors.Is(err, errs.NewError(errs.ErrUserNotFound)) works.
func (e *CustomError) Is(target error) bool {
	var t *CustomError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a *CustomError from a registered code.
// details are printf arguments for templates containing a verb. For ErrUnknown the first detail,
// when it is an error, is logged as the underlying cause and never exposed to the client.
// Unregistered codes fall back to ErrUnknown.
func NewError(code int, details ...any) *CustomError {
	templateErr, ok := errorMap[code]
	if !ok {
		logx.Error(
			fmt.Errorf("error code %d is not registered", code),
			"Unknown error code requested",
			"requested_code", code,
		)
		templateErr = errorMap[ErrUnknown]
	}

	customErr := templateErr

	if customErr.Status == 0 {
		customErr.Status = http.StatusBadRequest
	}

	if customErr.Code == ErrUnknown && len(details) > 0 {
		if cause, ok := details[0].(error); ok {
			logx.Error(cause, "Handling ErrUnknown with underlying error")
		}
	} else if len(details) > 0 {
		if strings.Contains(customErr.Message, "%") {
			customErr.Message = fmt.Sprintf(customErr.Message, details...)
		} else {
			logx.Warn("Error details ignored: message template has no placeholder.", "code", code)
		}
	}

	return &customErr
}

// From converts any error into a *CustomError. Errors that already are (or wrap) a *CustomError
// are returned as is; anything else becomes ErrUnknown with err logged as the cause.
func From(err error) *CustomError {
	if err == nil {
		return nil
	}

	var customErr *CustomError
	if errors.As(err, &customErr) {
		return customErr
	}

	return NewError(ErrUnknown, err)
}
