package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/metrics"
)

const (
	REQUEST_ID_HEADER            = "X-Request-ID"
	REQUEST_ID_KEY    contextKey = "request_id"
)

// RequestID propagates the client's request id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(REQUEST_ID_HEADER)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(REQUEST_ID_KEY, id)
		c.Header(REQUEST_ID_HEADER, id)
		c.Next()
	}
}

// Logger returns a gin middleware for structured logging using zap
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		elapsed := time.Since(start)
		metrics.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), elapsed)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", elapsed),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", c.GetString(REQUEST_ID_KEY)),
		}
		if caller, ok := Caller(c); ok {
			fields = append(fields, zap.String("caller", caller.Hex()))
		}

		logger.InfoCtx(c.Request.Context(), "API request", fields...)
	}
}

// Recovery returns a gin middleware for panic recovery with logging
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorCtx(c.Request.Context(), fmt.Errorf("panic recovered: %v", err),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierrors.NewInternalError("Internal server error"))
			}
		}()
		c.Next()
	}
}
