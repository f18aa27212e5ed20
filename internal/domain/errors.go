package domain

import (
	"errors"
	"fmt"
)

// Category sentinels, used with NewDomainError for operation-specific errors.
var (
	ErrEmptyInput    = fmt.Errorf("empty input")
	ErrBadRequest    = fmt.Errorf("malformed request")
	ErrAuthInvalid   = fmt.Errorf("authentication failed")
	ErrRateLimit     = fmt.Errorf("rate limit exceeded")
	ErrProviderError = fmt.Errorf("provider error")
	ErrUnsupported   = fmt.Errorf("not supported")
	ErrTimeout       = fmt.Errorf("operation timed out")
	ErrConfigLoad    = fmt.Errorf("failed to load configuration")
)

// DomainError wraps a sentinel error with context.
type DomainError struct {
	Op     string // operation name (e.g., "SearchClient.Search")
	Err    error  // underlying sentinel or wrapped error
	Detail string // human-readable detail
}

func (e *DomainError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *DomainError) Unwrap() error { return e.Err }

// NewDomainError creates a new DomainError.
func NewDomainError(op string, err error, detail string) *DomainError {
	return &DomainError{Op: op, Err: err, Detail: detail}
}

// WrapOp adds operation context to an error using fmt.Errorf wrapping.
// Returns nil if err is nil, enabling idiomatic use: return domain.WrapOp("op", err)
func WrapOp(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrorCode is a machine-parseable error category for monitoring and alerting.
type ErrorCode string

const (
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeEmptyInput    ErrorCode = "EMPTY_INPUT"
	CodeBadRequest    ErrorCode = "BAD_REQUEST"
	CodeAuthInvalid   ErrorCode = "AUTH_INVALID"
	CodeRateLimit     ErrorCode = "RATE_LIMIT"
	CodeProviderError ErrorCode = "PROVIDER_ERROR"
	CodeUnsupported   ErrorCode = "UNSUPPORTED"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeConfigLoad    ErrorCode = "CONFIG_LOAD"
)

// errorCodeMap maps sentinel errors to their machine-parseable codes.
var errorCodeMap = map[error]ErrorCode{
	ErrEmptyInput:    CodeEmptyInput,
	ErrBadRequest:    CodeBadRequest,
	ErrAuthInvalid:   CodeAuthInvalid,
	ErrRateLimit:     CodeRateLimit,
	ErrProviderError: CodeProviderError,
	ErrUnsupported:   CodeUnsupported,
	ErrTimeout:       CodeTimeout,
	ErrConfigLoad:    CodeConfigLoad,
}

// ErrorCodeOf returns the machine-parseable error code for the given error.
// It unwraps DomainError and uses errors.Is to match sentinel errors.
// Returns CodeUnknown if no matching sentinel is found.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code, ok := errorCodeMap[err]; ok {
		return code
	}

	var de *DomainError
	if errors.As(err, &de) {
		if code, ok := errorCodeMap[de.Err]; ok {
			return code
		}
	}

	for sentinel, code := range errorCodeMap {
		if errors.Is(err, sentinel) {
			return code
		}
	}

	return CodeUnknown
}

// IsRetryableError reports whether err is a transient error that may succeed on retry.
// The pipeline itself never retries; this informs callers.
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrRateLimit) || errors.Is(err, ErrTimeout)
}
