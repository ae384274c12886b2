package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/nextup-labs/nxt-ledger/internal/api/middleware"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/constants"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/dto"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/executor"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// Handler defines the interface for REST API handlers
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// Purchase buys utility tokens
	// POST /api/v1/sale/purchase
	Purchase(c *gin.Context)
	// GetSale returns the sale terms
	// GET /api/v1/sale
	GetSale(c *gin.Context)

	// DeployAthleteToken deploys an athlete token contract owned by the caller
	// POST /api/v1/athlete-tokens/contracts
	DeployAthleteToken(c *gin.Context)
	// RegisterAthleteToken registers an athlete token record
	// POST /api/v1/athlete-tokens
	RegisterAthleteToken(c *gin.Context)
	// ListAthleteTokens lists athlete token records
	// GET /api/v1/athlete-tokens
	ListAthleteTokens(c *gin.Context)
	// GetAthleteToken returns one athlete token record
	// GET /api/v1/athlete-tokens/:id
	GetAthleteToken(c *gin.Context)
	// PurchaseAthleteToken buys units of an athlete token
	// POST /api/v1/athlete-tokens/:id/purchase
	PurchaseAthleteToken(c *gin.Context)
	// SetAthleteTokenStatus enables or disables an athlete token
	// PUT /api/v1/athlete-tokens/:id/status
	SetAthleteTokenStatus(c *gin.Context)

	// IssueReward issues a reward grant
	// POST /api/v1/rewards
	IssueReward(c *gin.Context)
	// GetReward returns a reward grant
	// GET /api/v1/rewards/:id
	GetReward(c *gin.Context)

	// BindAuthority binds the authorized caller of a gated contract
	// POST /api/v1/contracts/:address/authority
	BindAuthority(c *gin.Context)
	// SetUtilityTokenReference repoints the ledger's utility token
	// PUT /api/v1/ledger/utility-token
	SetUtilityTokenReference(c *gin.Context)
	// SetRewardRegistryReference repoints the ledger's reward registry
	// PUT /api/v1/ledger/reward-registry
	SetRewardRegistryReference(c *gin.Context)
	// Withdraw moves custody funds out of the ledger
	// POST /api/v1/ledger/withdraw
	Withdraw(c *gin.Context)

	// GetBalance returns a token balance
	// GET /api/v1/balances/:token/:holder
	GetBalance(c *gin.Context)
	// GetAccount returns an address's native balance and contract kind
	// GET /api/v1/accounts/:address
	GetAccount(c *gin.Context)
	// GetTransaction returns a committed transaction
	// GET /api/v1/transactions/:id
	GetTransaction(c *gin.Context)
	// GetEvents pages through committed events
	// GET /api/v1/events?anchor=<sequence>&limit=<limit>&event_type=<type>
	GetEvents(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{executor: exec}
}

func (h *handler) Purchase(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, payment, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.Purchase(c.Request.Context(), caller, amount, payment)
	if err != nil {
		respondError(c, err, "Failed to purchase")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetSale(c *gin.Context) {
	resp, err := h.executor.GetSale(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get sale")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) DeployAthleteToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.DeployAthleteTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.DeployAthleteToken(c.Request.Context(), caller, req.Name, req.Symbol)
	if err != nil {
		respondError(c, err, "Failed to deploy athlete token")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *handler) RegisterAthleteToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.RegisterAthleteTokenRequest
	if !bindJSON(c, &req) {
		return
	}
	in, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.RegisterAthleteToken(c.Request.Context(), caller, in)
	if err != nil {
		respondError(c, err, "Failed to register athlete token")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *handler) ListAthleteTokens(c *gin.Context) {
	resp, err := h.executor.GetAthleteTokens(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list athlete tokens")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetAthleteToken(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.executor.GetAthleteToken(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get athlete token")
		return
	}
	if resp == nil {
		respondNotFound(c, domain.REASON_ATHLETE_NOT_FOUND)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) PurchaseAthleteToken(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, payment, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.PurchaseAthleteToken(c.Request.Context(), caller, id, amount, payment)
	if err != nil {
		respondError(c, err, "Failed to purchase athlete token")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) SetAthleteTokenStatus(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SetAthleteTokenStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.SetAthleteTokenDisabled(c.Request.Context(), caller, id, *req.IsDisabled)
	if err != nil {
		respondError(c, err, "Failed to update athlete token status")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) IssueReward(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.IssueRewardRequest
	if !bindJSON(c, &req) {
		return
	}
	recipient, amount, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.IssueReward(c.Request.Context(), caller, recipient, req.AthleteTokenID, req.MetadataRef, amount)
	if err != nil {
		respondError(c, err, "Failed to issue reward")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *handler) GetReward(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.executor.GetReward(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get reward")
		return
	}
	if resp == nil {
		respondNotFound(c, "Reward not found")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) BindAuthority(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	target, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}

	var req dto.BindAuthorityRequest
	if !bindJSON(c, &req) {
		return
	}
	authority, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.BindAuthority(c.Request.Context(), caller, target, authority)
	if err != nil {
		respondError(c, err, "Failed to bind authority")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) SetUtilityTokenReference(c *gin.Context) {
	h.setReference(c, h.executor.SetUtilityTokenReference)
}

func (h *handler) SetRewardRegistryReference(c *gin.Context) {
	h.setReference(c, h.executor.SetRewardRegistryReference)
}

type setReferenceFunc func(ctx context.Context, caller, addr common.Address) (*dto.TransactionResponse, error)

func (h *handler) setReference(c *gin.Context, set setReferenceFunc) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.SetReferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	addr, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := set(c.Request.Context(), caller, addr)
	if err != nil {
		respondError(c, err, "Failed to update reference")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) Withdraw(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if !bindJSON(c, &req) {
		return
	}
	to, amount, err := req.Validate()
	if err != nil {
		respondError(c, err, "Invalid request")
		return
	}

	resp, err := h.executor.Withdraw(c.Request.Context(), caller, to, amount)
	if err != nil {
		respondError(c, err, "Failed to withdraw")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetBalance(c *gin.Context) {
	tokenAddr, ok := parseAddressParam(c, "token")
	if !ok {
		return
	}
	holder, ok := parseAddressParam(c, "holder")
	if !ok {
		return
	}

	resp, err := h.executor.GetBalance(c.Request.Context(), tokenAddr, holder)
	if err != nil {
		respondError(c, err, "Failed to get balance")
		return
	}
	if resp == nil {
		respondNotFound(c, "Token contract not found")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetAccount(c *gin.Context) {
	addr, ok := parseAddressParam(c, "address")
	if !ok {
		return
	}

	resp, err := h.executor.GetAccount(c.Request.Context(), addr)
	if err != nil {
		respondError(c, err, "Failed to get account")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetTransaction(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Transaction ID is required")
		return
	}

	resp, err := h.executor.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get transaction")
		return
	}
	if resp == nil {
		respondNotFound(c, "Transaction not found")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) GetEvents(c *gin.Context) {
	var anchor uint64
	if raw := c.Query("anchor"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondValidationError(c, fmt.Sprintf("invalid anchor: %s", raw))
			return
		}
		anchor = v
	}

	var limit *int
	if raw := c.Query("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > constants.MAX_PAGE_SIZE {
			respondValidationError(c, fmt.Sprintf("limit must be between 1 and %d", constants.MAX_PAGE_SIZE))
			return
		}
		limit = &v
	}

	var eventType *domain.EventType
	if raw := c.Query("event_type"); raw != "" {
		t := domain.EventType(raw)
		if !t.Valid() {
			respondValidationError(c, fmt.Sprintf("unknown event_type: %s", raw))
			return
		}
		eventType = &t
	}

	resp, err := h.executor.GetEvents(c.Request.Context(), anchor, limit, eventType)
	if err != nil {
		respondError(c, err, "Failed to get events")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	resp, err := h.executor.Health(c.Request.Context())
	if err != nil {
		respondError(c, err, "Health check failed")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// requireCaller returns the caller resolved by the auth middleware
func requireCaller(c *gin.Context) (common.Address, bool) {
	caller, ok := middleware.Caller(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errors.NewUnauthorizedError("Caller is required"))
		return common.Address{}, false
	}
	return caller, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

// parseIDParam parses a record id; ids start at 1
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, fmt.Sprintf("Invalid %s", name), raw)
		return 0, false
	}
	return id, true
}

func parseAddressParam(c *gin.Context, name string) (common.Address, bool) {
	addr, err := dto.ParseAddressParam(name, c.Param(name))
	if err != nil {
		respondError(c, err, "Invalid address")
		return common.Address{}, false
	}
	return addr, true
}
