package ingest

import "fmt"

// ErrorCode enumerates the taxonomy of errors the core surfaces to callers.
type ErrorCode string

const (
	// ErrTooManyOperations indicates a batch exceeded MaxOperationsPerBatch.
	ErrTooManyOperations ErrorCode = "TOO_MANY_OPERATIONS"
	// ErrSequenceAllocationFailed indicates the user row was missing or the
	// counter update affected zero rows.
	ErrSequenceAllocationFailed ErrorCode = "SEQUENCE_ALLOCATION_FAILED"
	// ErrUnknownOperationType indicates a discriminator outside the closed set.
	ErrUnknownOperationType ErrorCode = "UNKNOWN_OPERATION_TYPE"
	// ErrStorage indicates an underlying storage engine failure.
	ErrStorage ErrorCode = "STORAGE_ERROR"
)

// CoreError is the ingestion core's wrapped, coded error type, returned for
// batch-size, sequence-allocation, unknown-type and storage failures. It is
// never swallowed internally, and the caller decides whether/how to retry.
// Malformed payloads and descriptor/value-count mismatches are reported as
// plain wrapped errors, not as a CoreError.
type CoreError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *CoreError) Unwrap() error {
	return e.Err
}

// newCoreError constructs a CoreError with an optional wrapped cause.
func newCoreError(code ErrorCode, message string, cause error) *CoreError {
	return &CoreError{Code: code, Message: message, Err: cause}
}

// IsCode reports whether err is a *CoreError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var coreErr *CoreError
	if err == nil {
		return false
	}
	if ce, ok := err.(*CoreError); ok {
		coreErr = ce
	} else {
		return false
	}
	return coreErr.Code == code
}
