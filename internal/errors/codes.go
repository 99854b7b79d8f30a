package errors

// ErrorCode represents a machine-readable error identifier for frontend error handling.
type ErrorCode string

// Payment verification errors
const (
	// Transaction not visible at the configured commitment yet. The client
	// should retry after the transaction settles.
	ErrCodeTransactionNotFound ErrorCode = "transaction_not_found"

	// Transaction landed on chain but execution failed
	ErrCodeTransactionFailed ErrorCode = "transaction_failed"

	// Platform wallet does not appear in the transaction's account keys
	ErrCodeWrongRecipient ErrorCode = "wrong_recipient"

	// Balance delta at the platform wallet fell short of the package price
	// beyond the configured tolerance
	ErrCodeInsufficientAmount ErrorCode = "insufficient_amount"

	ErrCodeInvalidSignature ErrorCode = "invalid_signature"
)

// Validation errors (request input validation)
const (
	ErrCodeMissingField   ErrorCode = "missing_field"
	ErrCodeInvalidPackage ErrorCode = "invalid_package"
	ErrCodeInvalidWallet  ErrorCode = "invalid_wallet"
	ErrCodeInvalidMint    ErrorCode = "invalid_mint"
)

// Resource/state errors
const (
	// Session id unknown or expired; the two are indistinguishable to callers
	ErrCodeSessionNotFound ErrorCode = "session_not_found"

	// Registration attempted without a verified, unconsumed session
	ErrCodePaymentNotVerified ErrorCode = "payment_not_verified"
)

// External service errors
const (
	ErrCodeRPCError ErrorCode = "rpc_error"
)

// Internal/system errors
const (
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeConfigError   ErrorCode = "config_error"
)

// IsRetryable returns whether an error code represents a retryable error.
// Retryable errors are typically transient network/settlement issues, not
// validation failures.
func (e ErrorCode) IsRetryable() bool {
	switch e {
	case ErrCodeTransactionNotFound,
		ErrCodeRPCError:
		return true
	default:
		return false
	}
}

// HTTPStatus returns the appropriate HTTP status code for this error.
func (e ErrorCode) HTTPStatus() int {
	switch e {
	// 400 Bad Request - client validation and verification failures
	case ErrCodeTransactionNotFound,
		ErrCodeTransactionFailed,
		ErrCodeWrongRecipient,
		ErrCodeInsufficientAmount,
		ErrCodeInvalidSignature,
		ErrCodeMissingField,
		ErrCodeInvalidPackage,
		ErrCodeInvalidWallet,
		ErrCodeInvalidMint:
		return 400

	// 403 Forbidden - registration without verified payment
	case ErrCodePaymentNotVerified:
		return 403

	// 404 Not Found - session unknown or expired
	case ErrCodeSessionNotFound:
		return 404

	// 500 Internal Server Error - ledger transport and system errors
	default:
		return 500
	}
}
