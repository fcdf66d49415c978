package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string      `json:"error_code"`
	Message    string      `json:"message"`
	HTTPStatus int         `json:"-"`
	Details    interface{} `json:"details,omitempty"` // Structured payload (e.g., cost estimate)
	Err        error       `json:"-"`                 // Wrapped internal error (not exposed to client)
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

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithDetails attaches a structured details payload to the error.
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrDuplicateUser() *AppError {
	return New("AUTH_002", "Username or email already registered", http.StatusBadRequest)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or malformed token", http.StatusUnauthorized)
}

func ErrExpiredToken() *AppError {
	return New("AUTH_004", "Token has expired", http.StatusUnauthorized)
}

func ErrUnknownPrincipal() *AppError {
	return New("AUTH_005", "Token subject no longer resolves to a user", http.StatusUnauthorized)
}

// ---- Validation (VAL) ----

// Validation returns a VAL_001 error with the given message.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- Ownership (OWN) ----

func ErrNotOwned(resource string) *AppError {
	return New("OWN_001", fmt.Sprintf("%s not found or not owned by user", resource), http.StatusNotFound)
}

func ErrNotNFTClass() *AppError {
	return New("OWN_002", "Asset is not an NFT collection", http.StatusNotFound)
}

// ---- Mode policy (POL) ----

// ErrAckRequired signals that a high-stakes operation needs explicit cost
// acknowledgement. The details payload carries the cost estimate.
func ErrAckRequired(details interface{}) *AppError {
	e := New("POL_001", "Cost acknowledgement required: resubmit with acknowledged_cost set to true", http.StatusBadRequest)
	return e.WithDetails(details)
}

// ---- Ledger (LGR) ----

// ErrLedgerRejected covers failures strictly before submission acceptance.
// The whole operation is safe to retry.
func ErrLedgerRejected(err error) *AppError {
	return Wrap("LGR_001", "Ledger rejected the operation before acceptance", http.StatusBadGateway, err)
}

// ErrLedgerIndeterminate covers failures after submission with unknown
// outcome. The caller must reconcile before retrying.
func ErrLedgerIndeterminate(err error) *AppError {
	return Wrap("LGR_002", "Operation outcome indeterminate: submitted but not confirmed", http.StatusBadGateway, err)
}

func ErrLedgerUnavailable(err error) *AppError {
	return Wrap("LGR_003", "Ledger network unreachable", http.StatusInternalServerError, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_002", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
