package payment

import (
	"fmt"

	apierrors "github.com/MintForge/server/internal/errors"
)

// Error describes a failed payment operation with its API error code.
// Expected and Received carry lamport amounts for insufficient-amount
// failures; both are zero otherwise.
type Error struct {
	Code     apierrors.ErrorCode
	Message  string
	Err      error
	Expected int64
	Received int64
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller should retry the operation.
func (e *Error) Retryable() bool {
	return e.Code.IsRetryable()
}

func newError(code apierrors.ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func wrapError(code apierrors.ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
