// Package errors provides the engine's unified error framework: one
// AppError type, a fixed Code taxonomy, and constructors for the three
// generation-pipeline error kinds.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies the category of an AppError.
type Code string

const (
	// General-purpose codes.
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"

	// The three generation-pipeline error kinds.
	CodeInfeasibleInput Code = "INFEASIBLE_INPUT"
	CodeNoSolution      Code = "NO_SOLUTION"
	CodeInternalFault   Code = "INTERNAL_FAULT"
)

// AppError is the engine's single error type: a code, a human message,
// optional details/cause, and an HTTP-status mapping for the trigger
// endpoint.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a details string.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause attaches an underlying cause.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField attaches a structured field.
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New constructs an AppError.
func New(code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap constructs an AppError around an existing error.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeInfeasibleInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeNoSolution:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an AppError of the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the Code from err, CodeUnknown if err isn't an AppError.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus extracts the mapped HTTP status from err.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// InvalidInput builds a CodeInvalidInput error for a malformed input field —
// the input adapter's fail-fast path for unknown labels.
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("field %q invalid: %s", field, reason)).WithField("field", field)
}

// InfeasibleInput builds the "no solver call" error the pre-flight
// analyzer raises on the first static contradiction it finds.
func InfeasibleInput(check, details string) *AppError {
	return New(CodeInfeasibleInput, fmt.Sprintf("pre-flight check %q failed", check)).WithDetails(details).WithField("check", check)
}

// NoSolution builds the error the solver driver raises when CP-SAT
// returns INFEASIBLE/MODEL_INVALID, or times out with no incumbent.
func NoSolution(status string) *AppError {
	return New(CodeNoSolution, "solver found no usable solution").WithField("status", status)
}

// InternalFault builds the catch-all error for malformed input, label
// normalization failures, and solver binding errors — anything that
// isn't a clean infeasibility or no-solution outcome.
func InternalFault(reason string, cause error) *AppError {
	e := New(CodeInternalFault, reason)
	if cause != nil {
		e = e.WithCause(cause)
	}
	return e
}

// ValidationErrors accumulates multiple per-field validation failures
// before they're folded into a single AppError.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// ValidationError is one field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

// Add appends a field-level validation failure.
func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any validation failure was recorded.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// ToAppError folds the accumulated field errors into a single AppError.
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeInvalidInput, "validation failed")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
