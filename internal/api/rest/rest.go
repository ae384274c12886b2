package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/nextup-labs/nxt-ledger/internal/api/middleware"
	"github.com/nextup-labs/nxt-ledger/internal/ratelimit"
	"github.com/nextup-labs/nxt-ledger/internal/registry"
)

// SetupRoutes configures all REST API routes.
// Mutating routes authenticate the caller, reject denied callers, then apply the per-caller limiter.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, limiter ratelimit.Limiter, denylist registry.Denylist) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		// Public reads
		v1.GET("/sale", handler.GetSale)
		v1.GET("/athlete-tokens", handler.ListAthleteTokens)
		v1.GET("/athlete-tokens/:id", handler.GetAthleteToken)
		v1.GET("/rewards/:id", handler.GetReward)
		v1.GET("/balances/:token/:holder", handler.GetBalance)
		v1.GET("/accounts/:address", handler.GetAccount)
		v1.GET("/transactions/:id", handler.GetTransaction)
		v1.GET("/events", handler.GetEvents)
	}

	tx := v1.Group("", middleware.Auth(authCfg), middleware.Denylist(denylist), middleware.RateLimit(limiter))
	{
		// Utility token sale
		tx.POST("/sale/purchase", handler.Purchase)

		// Athlete tokens
		tx.POST("/athlete-tokens", handler.RegisterAthleteToken)
		tx.POST("/athlete-tokens/contracts", handler.DeployAthleteToken)
		tx.POST("/athlete-tokens/:id/purchase", handler.PurchaseAthleteToken)
		tx.PUT("/athlete-tokens/:id/status", handler.SetAthleteTokenStatus)

		// Rewards
		tx.POST("/rewards", handler.IssueReward)

		// Administration
		tx.POST("/contracts/:address/authority", handler.BindAuthority)
		tx.PUT("/ledger/utility-token", handler.SetUtilityTokenReference)
		tx.PUT("/ledger/reward-registry", handler.SetRewardRegistryReference)
		tx.POST("/ledger/withdraw", handler.Withdraw)
	}
}
