// Package errors provides structured error types for the Relacore engine.
// All errors include a category, code, message, and degraded flag for
// consistent error handling across components.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies errors by engine component.
type ErrorCategory string

const (
	ErrCategoryValidation ErrorCategory = "VALIDATION"
	ErrCategoryIndex      ErrorCategory = "INDEX"
	ErrCategoryIntegrity  ErrorCategory = "INTEGRITY"
	ErrCategoryQuery      ErrorCategory = "QUERY"
	ErrCategoryStorage    ErrorCategory = "STORAGE"
	ErrCategoryJournal    ErrorCategory = "JOURNAL"
	ErrCategoryInternal   ErrorCategory = "INTERNAL"
)

// Error codes for each category.
const (
	// Validation codes
	CodeArityMismatch      = "ARITY_MISMATCH"
	CodeTypeMismatch       = "TYPE_MISMATCH"
	CodeInvalidSchema      = "INVALID_SCHEMA"
	CodeIncompatibleDomain = "INCOMPATIBLE_DOMAIN"
	CodeUnknownAttribute   = "UNKNOWN_ATTRIBUTE"

	// Index codes
	CodeDuplicateKey = "DUPLICATE_KEY"
	CodeIndexAbsent  = "INDEX_ABSENT"
	CodeKeyNotFound  = "KEY_NOT_FOUND"

	// Integrity codes
	CodeForeignKeyViolation = "FK_VIOLATION"
	CodeCompositeForeignKey = "COMPOSITE_FK"

	// Query codes
	CodeParseError  = "PARSE_ERROR"
	CodeNotGrouped  = "NOT_GROUPED"
	CodeBadArgument = "BAD_ARGUMENT"

	// Storage codes
	CodeUploadFailed    = "UPLOAD_FAILED"
	CodeDownloadFailed  = "DOWNLOAD_FAILED"
	CodeObjectNotFound  = "OBJECT_NOT_FOUND"
	CodeCorruptSnapshot = "CORRUPT_SNAPSHOT"

	// Journal codes
	CodeAppendFailed = "APPEND_FAILED"
	CodeReplayFailed = "REPLAY_FAILED"

	// Internal codes
	CodeUnexpected = "UNEXPECTED"
)

// EngineError is the structured error type used throughout the engine.
type EngineError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Cause    error
	// Degraded marks failures the engine absorbs by returning a neutral
	// result (reject the tuple, hand back the left operand) instead of
	// failing the whole operation.
	Degraded bool
}

// Error returns a formatted error string.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches this error's category and code.
func (e *EngineError) Is(target error) bool {
	var t *EngineError
	if errors.As(target, &t) {
		return e.Category == t.Category && e.Code == t.Code
	}
	return false
}

// New creates a new EngineError.
func New(category ErrorCategory, code, message string) *EngineError {
	return &EngineError{
		Category: category,
		Code:     code,
		Message:  message,
		Degraded: isDegraded(category),
	}
}

// Wrap creates a new EngineError wrapping an existing error.
func Wrap(category ErrorCategory, code, message string, cause error) *EngineError {
	return &EngineError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
		Degraded: isDegraded(category),
	}
}

// IsDegraded checks whether an error (or its chain) describes a structural
// violation the engine absorbed rather than a hard failure.
func IsDegraded(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Degraded
	}
	return false
}

// GetCategory extracts the error category from an error chain.
// Returns empty string if the error is not an EngineError.
func GetCategory(err error) ErrorCategory {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Category
	}
	return ""
}

// GetCode extracts the error code from an error chain.
// Returns empty string if the error is not an EngineError.
func GetCode(err error) string {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// isDegraded determines whether a category describes a structural violation
// that operators absorb instead of propagating.
func isDegraded(category ErrorCategory) bool {
	switch category {
	case ErrCategoryValidation, ErrCategoryIntegrity:
		return true
	default:
		return false
	}
}

// Convenience constructors for common errors.

func NewValidationError(code, message string) *EngineError {
	return New(ErrCategoryValidation, code, message)
}

func NewIndexError(code, message string) *EngineError {
	return New(ErrCategoryIndex, code, message)
}

func NewIntegrityError(code, message string) *EngineError {
	return New(ErrCategoryIntegrity, code, message)
}

func NewQueryError(code, message string) *EngineError {
	return New(ErrCategoryQuery, code, message)
}

func NewStorageError(code, message string, cause error) *EngineError {
	return Wrap(ErrCategoryStorage, code, message, cause)
}

func NewJournalError(code, message string, cause error) *EngineError {
	return Wrap(ErrCategoryJournal, code, message, cause)
}

func NewInternalError(message string, cause error) *EngineError {
	return Wrap(ErrCategoryInternal, CodeUnexpected, message, cause)
}
