package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

const (
	// ErrCodeSetup indicates broken plugin assembly or invalid configuration.
	ErrCodeSetup ErrorCode = "SETUP"
	// ErrCodeInvalidInput indicates an invalid value passed to a call.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeUnauthorized indicates a request with no authenticated user.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeForbidden indicates a request denied by role or permission checks.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeIdentityProtocol indicates a protocol-level rejection from an
	// identity provider (expected failure class).
	ErrCodeIdentityProtocol ErrorCode = "IDENTITY_PROTOCOL"
	// ErrCodeSessionStore indicates a session backend failure.
	ErrCodeSessionStore ErrorCode = "SESSION_STORE"
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)
