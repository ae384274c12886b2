package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	ErrCodeBadRequest       ErrorCode = "bad_request"
	ErrCodeNotFound         ErrorCode = "not_found"
	ErrCodeValidationFailed ErrorCode = "validation_failed"
	ErrCodeUnauthorized     ErrorCode = "unauthorized"
	ErrCodeForbidden        ErrorCode = "forbidden"
	ErrCodePaymentRequired  ErrorCode = "payment_required"
	ErrCodeReverted         ErrorCode = "reverted"
	ErrCodeRateLimited      ErrorCode = "rate_limited"

	// Server errors (5xx)
	ErrCodeInternalError ErrorCode = "internal_error"
	ErrCodeDatabaseError ErrorCode = "database_error"
	ErrCodeServiceError  ErrorCode = "service_error"
)

// APIError represents a structured API error that carries error code and details
// Reverted transactions carry the revert reason verbatim in Message
type APIError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	jsonErr, _ := json.Marshal(e)
	return string(jsonErr)
}

func newAPIError(code ErrorCode, message string, details []string) *APIError {
	return &APIError{Code: code, Message: message, Details: strings.Join(details, ", ")}
}

func NewBadRequestError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeBadRequest, message, details)
}

func NewNotFoundError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeNotFound, message, details)
}

func NewValidationError(details ...string) *APIError {
	return newAPIError(ErrCodeValidationFailed, "Validation failed", details)
}

func NewUnauthorizedError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeUnauthorized, message, details)
}

func NewForbiddenError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeForbidden, message, details)
}

func NewInternalError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeInternalError, message, details)
}

func NewDatabaseError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeDatabaseError, message, details)
}

func NewServiceError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeServiceError, message, details)
}

func NewPaymentRequiredError(message string, details ...string) *APIError {
	return newAPIError(ErrCodePaymentRequired, message, details)
}

func NewRevertedError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeReverted, message, details)
}

func NewRateLimitedError(message string, details ...string) *APIError {
	return newAPIError(ErrCodeRateLimited, message, details)
}

// FromLedgerError maps a ledger error to an API error and its HTTP status.
// The second return is false when err is not a revert.
func FromLedgerError(err error) (*APIError, int, bool) {
	reason, ok := domain.RevertReason(err)
	if !ok {
		return nil, 0, false
	}

	switch {
	case stderrors.Is(err, domain.ErrNotOwner),
		stderrors.Is(err, domain.ErrNotAuthorized),
		stderrors.Is(err, domain.ErrAuthorityUnset):
		return NewForbiddenError(reason), http.StatusForbidden, true
	case stderrors.Is(err, domain.ErrAthleteTokenNotFound),
		stderrors.Is(err, domain.ErrRewardNotFound),
		stderrors.Is(err, domain.ErrContractNotFound):
		return NewNotFoundError(reason), http.StatusNotFound, true
	case stderrors.Is(err, domain.ErrInsufficientPayment),
		stderrors.Is(err, domain.ErrInsufficientFunds):
		return NewPaymentRequiredError(reason), http.StatusPaymentRequired, true
	default:
		return NewRevertedError(reason), http.StatusConflict, true
	}
}
