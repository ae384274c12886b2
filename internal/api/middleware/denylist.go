package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/metrics"
	"github.com/nextup-labs/nxt-ledger/internal/registry"
)

// Denylist rejects callers on the denylist. It must run after Auth.
func Denylist(denylist registry.Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		if denylist == nil {
			c.Next()
			return
		}

		caller, ok := Caller(c)
		if ok && denylist.IsDenied(caller) {
			metrics.RequestsRejected.WithLabelValues(metrics.REJECTED_DENIED).Inc()
			logger.WarnCtx(c.Request.Context(), "Denied caller rejected",
				zap.String("caller", caller.Hex()),
				zap.String("path", c.Request.URL.Path),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, apierrors.NewForbiddenError("Caller is denied"))
			return
		}

		c.Next()
	}
}
