package common

import "errors"

// Error codes shared by every service.
const (
	CodeValidation  = "VALIDATION"
	CodeNotFound    = "NOT_FOUND"
	CodePersistence = "PERSISTENCE"
)

// AppError represents an error with an attached code.
type AppError struct {
	Code    string
	Message string
	Err     error
	Details any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// Validation reports bad user input. The caller re-prompts or aborts back to the menu.
func Validation(message string, err error) *AppError {
	return NewAppError(CodeValidation, message, err)
}

// NotFound reports a referenced customer, product or order that does not exist.
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, err)
}

// Persistence reports a store that could not be read or written.
func Persistence(message string, err error) *AppError {
	return NewAppError(CodePersistence, message, err)
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}

// HasCode reports whether err carries an AppError with the given code.
func HasCode(err error, code string) bool {
	var target *AppError
	if !errors.As(err, &target) {
		return false
	}
	return target.Code == code
}
