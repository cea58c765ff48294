package errors

import (
	"fmt"
)

// AppError is the unified error type of the module.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Fatal reports whether the error is a programming error.
func (e *AppError) Fatal() bool { return IsFatalCode(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Sentinels for errors.Is. They are never returned directly.
var (
	ErrCombineSizeMismatch = New(ErrCodeCombineSizeMismatch, "combine size mismatch")
	ErrMismatch            = New(ErrCodeMismatch, "mismatch")
	ErrNotAnIterator       = New(ErrCodeNotAnIterator, "not an iterator")
	ErrArithmetic          = New(ErrCodeArithmetic, "arithmetic error")
	ErrEmptySequence       = New(ErrCodeEmptySequence, "empty sequence")
	ErrBadMethodCall       = New(ErrCodeBadMethodCall, "bad method call")
	ErrSequenceConsumed    = New(ErrCodeSequenceConsumed, "sequence consumed")
	ErrInvalidInput        = New(ErrCodeInvalidInput, "invalid input")
)

// --- Constructors ---

// CombineSizeMismatch creates an error for a strict combine whose sides differ in length.
// side names the operand that had elements left over ("keys" or "values").
func CombineSizeMismatch(side string) *AppError {
	return &AppError{
		Code:    ErrCodeCombineSizeMismatch,
		Message: fmt.Sprintf("Strict combine ran out of elements: %s has leftovers.", side),
		Details: map[string]any{"leftover": side},
	}
}

// NotAnIterator creates an error for an operand that is not iterable.
func NotAnIterator(operation string, value any) *AppError {
	return &AppError{
		Code:    ErrCodeNotAnIterator,
		Message: fmt.Sprintf("Expected an iterable for %s but got %T.", operation, value),
		Details: map[string]any{"operation": operation, "type": fmt.Sprintf("%T", value)},
	}
}

// Mismatch creates an error for a key that the other operand does not contain.
func Mismatch(key any) *AppError {
	return &AppError{
		Code:    ErrCodeMismatch,
		Message: fmt.Sprintf("Given operand does not contain key %v.", key),
		Details: map[string]any{"key": key},
	}
}

// Arithmetic creates an error for an invalid arithmetic parameter.
func Arithmetic(operation string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeArithmetic,
		Message: fmt.Sprintf("%s: %s", operation, reason),
		Details: map[string]any{"operation": operation},
	}
}

// EmptySequence creates an error for a reduction undefined on an empty sequence.
func EmptySequence(operation string) *AppError {
	return &AppError{
		Code:    ErrCodeEmptySequence,
		Message: fmt.Sprintf("Cannot compute %s of an empty sequence.", operation),
		Details: map[string]any{"operation": operation},
	}
}

// BadMethodCall creates an error for an invalid higher-order proxy access.
func BadMethodCall(name string) *AppError {
	return &AppError{
		Code:    ErrCodeBadMethodCall,
		Message: fmt.Sprintf("Tried to access %s.", name),
		Details: map[string]any{"name": name},
	}
}

// SequenceConsumed creates an error for a pipeline whose sequence was moved away.
func SequenceConsumed() *AppError {
	return &AppError{
		Code:    ErrCodeSequenceConsumed,
		Message: "The sequence of this pipeline was moved into another pipeline.",
	}
}

// InvalidInput creates an error for malformed external input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		Details: details,
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.", Cause: cause,
	}
}
