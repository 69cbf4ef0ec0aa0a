package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a refcat error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"          // 404
	ErrDocumentTooLarge ErrorCode = "DOCUMENT_TOO_LARGE" // 413
	ErrStructural       ErrorCode = "STRUCTURAL_ERROR"   // 422
	ErrEmptyInput       ErrorCode = "EMPTY_INPUT"        // 422
	ErrCancelled        ErrorCode = "CANCELLED"          // 499
	ErrInternal         ErrorCode = "INTERNAL"           // 500
)

// RefcatError represents a structured error with code, status, and details.
type RefcatError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *RefcatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *RefcatError {
	return &RefcatError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when an entry cannot be found.
func NewNotFound(identifier string) *RefcatError {
	return &RefcatError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("entry not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewDocumentTooLarge creates a 413 error when a document exceeds the size limit.
func NewDocumentTooLarge(max, actual int64) *RefcatError {
	return &RefcatError{
		Code:    ErrDocumentTooLarge,
		Status:  413,
		Message: fmt.Sprintf("document exceeds maximum size: %d bytes (max %d)", actual, max),
		Details: map[string]any{"max_bytes": max, "actual_bytes": actual},
	}
}

// NewStructural creates a 422 error for a document that violates the heading
// convention. line is 1-based; 0 means the position is unknown.
func NewStructural(line int, msg string) *RefcatError {
	e := &RefcatError{
		Code:    ErrStructural,
		Status:  422,
		Message: msg,
	}
	if line > 0 {
		e.Message = fmt.Sprintf("line %d: %s", line, msg)
		e.Details = map[string]any{"line": line}
	}
	return e
}

// NewEmptyInput creates a 422 error for a document without entries.
func NewEmptyInput(msg string) *RefcatError {
	return &RefcatError{
		Code:    ErrEmptyInput,
		Status:  422,
		Message: msg,
	}
}

// NewCancelled creates a 499 error when an operation is cancelled by its context.
func NewCancelled(op string) *RefcatError {
	return &RefcatError{
		Code:    ErrCancelled,
		Status:  499,
		Message: fmt.Sprintf("%s cancelled", op),
		Details: map[string]any{"operation": op},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
// The message stays generic; the cause is kept in Details for logging.
func NewInternal(err error) *RefcatError {
	details := map[string]any{}
	if err != nil {
		details["internal_error"] = err.Error()
	}
	return &RefcatError{
		Code:    ErrInternal,
		Status:  500,
		Message: "an internal error occurred",
		Details: details,
	}
}

// Is checks if an error is (or wraps) a RefcatError with the given code.
func Is(err error, code ErrorCode) bool {
	var rErr *RefcatError
	if stderrors.As(err, &rErr) {
		return rErr.Code == code
	}
	return false
}

// IsParseError reports whether err is one of the two load-time parse failures.
func IsParseError(err error) bool {
	return Is(err, ErrStructural) || Is(err, ErrEmptyInput)
}
