package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind separates deterministic rejections from retryable failures.
type Kind int

const (
	// KindRejected errors are deterministic; retrying does not help.
	KindRejected Kind = iota
	// KindFailed errors come from infrastructure; the caller may retry with
	// the same idempotency key.
	KindFailed
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Kind       Kind   `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new rejection AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Kind:       KindRejected,
	}
}

// Wrap wraps an internal error with a failure AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Kind:       KindFailed,
		Err:        err,
	}
}

// IsRejected reports whether err carries a deterministic rejection.
func IsRejected(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == KindRejected
}

// IsFailed reports whether err carries a retryable infrastructure failure.
// Errors that are not AppErrors count as failures.
func IsFailed(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == KindFailed
	}
	return true
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Ledger Business Logic (LED) ----

const (
	CodeInsufficientFunds = "LED_001"
	CodeValidation        = "LED_002"
	CodeInvalidAmount     = "LED_003"
	CodeNotFound          = "LED_004"
	CodeConflict          = "LED_005"
	CodeInternal          = "SYS_001"
	CodeRateLimit         = "RATE_001"
)

func ErrInsufficientFunds() *AppError {
	return New(CodeInsufficientFunds, "Insufficient balance in wallet", http.StatusUnprocessableEntity)
}

// ErrWalletNotFound is the spend rejection when no wallet exists yet.
// It shares the insufficient funds code so callers see one rejection reason.
func ErrWalletNotFound() *AppError {
	return New(CodeInsufficientFunds, "Wallet not found for this asset type", http.StatusUnprocessableEntity)
}

// ErrInvalidAmount rejects an amount that is not positive or does not fit
// 16 integer and 18 fractional digits.
func ErrInvalidAmount() *AppError {
	return New(CodeInvalidAmount, "Amount must be positive with at most 16 integer and 18 fractional digits", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyExists(entity string) *AppError {
	return New(CodeConflict, fmt.Sprintf("%s already exists", entity), http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimit, "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap(CodeInternal, "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeInternal, "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LED_002 validation error.
func Validation(message string) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest)
}
