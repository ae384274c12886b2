package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nextup-labs/nxt-ledger/internal/api/shared/constants"
)

// SetupCORS configures CORS middleware. An empty origin list allows every origin.
func SetupCORS(origins []string) gin.HandlerFunc {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", constants.CALLER_HEADER, REQUEST_ID_HEADER},
		ExposeHeaders:    []string{"Content-Length", REQUEST_ID_HEADER},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	}
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return cors.New(config)
}
