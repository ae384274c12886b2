package rest

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, errors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, errors.NewValidationError(message))
}

// respondError maps executor and validation errors to a response.
// Reverts carry their reason verbatim in the message.
func respondError(c *gin.Context, err error, message string) {
	if apiErr, status, ok := errors.FromLedgerError(err); ok {
		c.JSON(status, apiErr)
		return
	}

	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) {
		c.JSON(statusOf(apiErr.Code), apiErr)
		return
	}

	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, errors.NewInternalError(message, err.Error()))
}

func statusOf(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeBadRequest:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	case errors.ErrCodePaymentRequired:
		return http.StatusPaymentRequired
	case errors.ErrCodeReverted:
		return http.StatusConflict
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeServiceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
