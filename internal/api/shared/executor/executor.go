package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/api/shared/constants"
	"github.com/nextup-labs/nxt-ledger/internal/api/shared/dto"
	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/emitter"
	"github.com/nextup-labs/nxt-ledger/internal/ledger"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/metrics"
	"github.com/nextup-labs/nxt-ledger/internal/store"
	"github.com/nextup-labs/nxt-ledger/internal/token"
)

// Executor is the interface for the API executor.
// Mutating operations return the committed transaction; reverts are returned as *domain.RevertError.
//
//go:generate mockgen -source=executor.go -destination=../../../mocks/mock_api_executor.go -package=mocks -mock_names=Executor=MockAPIExecutor
type Executor interface {
	// Purchase buys utility tokens from the ledger pool
	Purchase(ctx context.Context, caller common.Address, amount, paymentWei *uint256.Int) (*dto.TransactionResponse, error)
	// GetSale returns the utility token sale terms and references
	GetSale(ctx context.Context) (*dto.SaleResponse, error)

	// DeployAthleteToken deploys an athlete token contract owned by caller
	DeployAthleteToken(ctx context.Context, caller common.Address, name, symbol string) (*dto.DeployResponse, error)
	// RegisterAthleteToken registers an athlete token record
	RegisterAthleteToken(ctx context.Context, caller common.Address, in ledger.AthleteTokenInput) (*dto.TransactionResponse, error)
	// GetAthleteToken returns one record, or nil when the id is unknown
	GetAthleteToken(ctx context.Context, id uint64) (*dto.AthleteTokenResponse, error)
	// GetAthleteTokens returns every record in registration order
	GetAthleteTokens(ctx context.Context) (*dto.AthleteTokenListResponse, error)
	// PurchaseAthleteToken buys units of a registered athlete token
	PurchaseAthleteToken(ctx context.Context, caller common.Address, id uint64, amount, paymentWei *uint256.Int) (*dto.TransactionResponse, error)
	// SetAthleteTokenDisabled enables or disables a registered athlete token
	SetAthleteTokenDisabled(ctx context.Context, caller common.Address, id uint64, disabled bool) (*dto.TransactionResponse, error)

	// IssueReward issues a reward grant through the ledger
	IssueReward(ctx context.Context, caller, recipient common.Address, athleteTokenID uint64, metadataRef string, amount *uint256.Int) (*dto.TransactionResponse, error)
	// GetReward returns a reward grant, or nil when the id is unknown
	GetReward(ctx context.Context, id uint64) (*dto.RewardResponse, error)

	// BindAuthority binds the sole authorized caller of a gated contract
	BindAuthority(ctx context.Context, caller, target, authority common.Address) (*dto.TransactionResponse, error)
	// SetUtilityTokenReference points the ledger at another utility token
	SetUtilityTokenReference(ctx context.Context, caller, addr common.Address) (*dto.TransactionResponse, error)
	// SetRewardRegistryReference points the ledger at another reward registry
	SetRewardRegistryReference(ctx context.Context, caller, addr common.Address) (*dto.TransactionResponse, error)
	// Withdraw moves native currency out of the ledger's custody
	Withdraw(ctx context.Context, caller, to common.Address, amountWei *uint256.Int) (*dto.TransactionResponse, error)

	// GetBalance returns holder's balance of a fungible token
	GetBalance(ctx context.Context, tokenAddr, holder common.Address) (*dto.BalanceResponse, error)
	// GetAccount returns the native balance and contract kind of an address
	GetAccount(ctx context.Context, addr common.Address) (*dto.AccountResponse, error)
	// GetTransaction returns a committed transaction, or nil when not found
	GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error)
	// GetEvents returns committed events of transactions after anchor
	GetEvents(ctx context.Context, anchor uint64, limit *int, eventType *domain.EventType) (*dto.EventListResponse, error)
	// Health reports the committed sequence
	Health(ctx context.Context) (*dto.HealthResponse, error)
}

type executor struct {
	runtime *chain.Runtime
	store   store.Store
	emitter emitter.Emitter
	ledger  common.Address
}

// NewExecutor creates an executor submitting transactions to the ledger at ledgerAddr.
// em may be nil when event publishing is disabled.
func NewExecutor(rt *chain.Runtime, st store.Store, em emitter.Emitter, ledgerAddr common.Address) Executor {
	return &executor{runtime: rt, store: st, emitter: em, ledger: ledgerAddr}
}

// submit executes fn against the sale ledger as one transaction
func (e *executor) submit(ctx context.Context, caller common.Address, value *uint256.Int, method string, fn func(l *ledger.SaleLedger, tx *chain.Tx) error) (*dto.TransactionResponse, error) {
	l, err := e.saleLedger()
	if err != nil {
		return nil, err
	}
	return e.execute(ctx, chain.Message{From: caller, To: e.ledger, Value: value, Method: method}, func(tx *chain.Tx) error {
		return fn(l, tx)
	})
}

func (e *executor) execute(ctx context.Context, msg chain.Message, fn func(tx *chain.Tx) error) (*dto.TransactionResponse, error) {
	receipt, err := e.runtime.Execute(ctx, msg, fn)
	if err != nil {
		return nil, e.failed(ctx, msg, err)
	}
	e.committed(ctx, receipt)
	resp := dto.MapReceiptToDTO(receipt)
	return &resp, nil
}

func (e *executor) failed(ctx context.Context, msg chain.Message, err error) error {
	if reason, ok := domain.RevertReason(err); ok {
		metrics.ObserveTransaction(msg.Method, metrics.STATUS_REVERTED, reason)
		logger.InfoCtx(ctx, "Transaction reverted",
			zap.String("method", msg.Method),
			zap.String("from", msg.From.Hex()),
			zap.String("reason", reason),
		)
		return err
	}
	metrics.ObserveTransaction(msg.Method, metrics.STATUS_FAILED, "")
	logger.ErrorCtx(ctx, fmt.Errorf("failed to execute %s: %w", msg.Method, err))
	return apierrors.NewServiceError("Failed to execute transaction", err.Error())
}

func (e *executor) committed(ctx context.Context, receipt *chain.Receipt) {
	metrics.ObserveTransaction(receipt.Method, metrics.STATUS_COMMITTED, "")
	metrics.Sequence.Set(float64(receipt.Sequence))
	logger.InfoCtx(ctx, "Transaction committed",
		zap.Uint64("sequence", receipt.Sequence),
		zap.String("method", receipt.Method),
		zap.String("tx_id", receipt.ID),
	)
	if e.emitter != nil {
		e.emitter.Notify()
	}
}

func (e *executor) saleLedger() (*ledger.SaleLedger, error) {
	c, ok := e.runtime.Contract(e.ledger)
	if !ok {
		return nil, apierrors.NewInternalError("Sale ledger is not deployed")
	}
	l, ok := c.(*ledger.SaleLedger)
	if !ok {
		return nil, apierrors.NewInternalError("Configured ledger address is not a sale ledger")
	}
	return l, nil
}

func (e *executor) Purchase(ctx context.Context, caller common.Address, amount, paymentWei *uint256.Int) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, paymentWei, "purchase", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		return l.Purchase(tx, amount)
	})
}

func (e *executor) GetSale(ctx context.Context) (*dto.SaleResponse, error) {
	l, err := e.saleLedger()
	if err != nil {
		return nil, err
	}

	var resp dto.SaleResponse
	_ = e.runtime.Read(func() error {
		sale := l.SaleParameters()
		resp = dto.SaleResponse{
			Ledger:           e.ledger.Hex(),
			Owner:            l.Owner().Hex(),
			PricePerTokenWei: sale.PricePerTokenWei.Dec(),
			MaxSupply:        sale.MaxSupply.Dec(),
			SuppliedAmount:   sale.SuppliedAmount.Dec(),
			Remaining:        sale.Remaining().Dec(),
			UtilityToken:     l.UtilityTokenReference().Hex(),
			RewardRegistry:   l.RewardRegistryReference().Hex(),
		}
		return nil
	})
	resp.CustodyWei = e.runtime.BalanceOf(e.ledger).Dec()

	return &resp, nil
}

func (e *executor) DeployAthleteToken(ctx context.Context, caller common.Address, name, symbol string) (*dto.DeployResponse, error) {
	msg := chain.Message{From: caller, Method: "deploy"}
	var deployed common.Address
	resp, err := e.execute(ctx, msg, func(tx *chain.Tx) error {
		addr, err := tx.Deploy(func(addr common.Address) chain.Contract {
			return token.NewAthleteToken(addr, caller, name, symbol)
		})
		deployed = addr
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto.DeployResponse{Address: deployed.Hex(), Transaction: *resp}, nil
}

func (e *executor) RegisterAthleteToken(ctx context.Context, caller common.Address, in ledger.AthleteTokenInput) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, nil, "createAthleteToken", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		_, err := l.RegisterAthleteToken(tx, in)
		return err
	})
}

func (e *executor) GetAthleteToken(ctx context.Context, id uint64) (*dto.AthleteTokenResponse, error) {
	l, err := e.saleLedger()
	if err != nil {
		return nil, err
	}

	var record domain.AthleteTokenRecord
	err = e.runtime.Read(func() error {
		var err error
		record, err = l.AthleteToken(id)
		return err
	})
	if errors.Is(err, domain.ErrAthleteTokenNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resp := dto.MapAthleteTokenToDTO(record)
	return &resp, nil
}

func (e *executor) GetAthleteTokens(ctx context.Context) (*dto.AthleteTokenListResponse, error) {
	l, err := e.saleLedger()
	if err != nil {
		return nil, err
	}

	var records []domain.AthleteTokenRecord
	_ = e.runtime.Read(func() error {
		records = l.AthleteTokens()
		return nil
	})

	resp := &dto.AthleteTokenListResponse{
		AthleteTokens: make([]dto.AthleteTokenResponse, 0, len(records)),
		Total:         len(records),
	}
	for _, r := range records {
		resp.AthleteTokens = append(resp.AthleteTokens, dto.MapAthleteTokenToDTO(r))
	}
	return resp, nil
}

func (e *executor) PurchaseAthleteToken(ctx context.Context, caller common.Address, id uint64, amount, paymentWei *uint256.Int) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, paymentWei, "purchaseAthleteToken", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		return l.PurchaseAthleteToken(tx, id, amount)
	})
}

func (e *executor) SetAthleteTokenDisabled(ctx context.Context, caller common.Address, id uint64, disabled bool) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, nil, "setAthleteTokenDisabled", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		return l.SetAthleteTokenDisabled(tx, id, disabled)
	})
}

func (e *executor) IssueReward(ctx context.Context, caller, recipient common.Address, athleteTokenID uint64, metadataRef string, amount *uint256.Int) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, nil, "createAthleteReward", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		_, err := l.IssueReward(tx, recipient, athleteTokenID, metadataRef, amount)
		return err
	})
}

func (e *executor) GetReward(ctx context.Context, id uint64) (*dto.RewardResponse, error) {
	l, err := e.saleLedger()
	if err != nil {
		return nil, err
	}

	var registryAddr common.Address
	_ = e.runtime.Read(func() error {
		registryAddr = l.RewardRegistryReference()
		return nil
	})

	c, ok := e.runtime.Contract(registryAddr)
	if !ok {
		return nil, nil
	}
	registry, ok := c.(*token.RewardRegistry)
	if !ok {
		return nil, nil
	}

	var grant domain.RewardGrant
	err = e.runtime.Read(func() error {
		var err error
		grant, err = registry.Grant(id)
		return err
	})
	if errors.Is(err, domain.ErrRewardNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	resp := dto.MapRewardToDTO(grant)
	return &resp, nil
}

func (e *executor) BindAuthority(ctx context.Context, caller, target, authority common.Address) (*dto.TransactionResponse, error) {
	msg := chain.Message{From: caller, To: target, Method: "bindAuthority"}
	return e.execute(ctx, msg, func(tx *chain.Tx) error {
		c, ok := tx.Resolve(target)
		if !ok {
			return domain.Revert(domain.ErrContractNotFound, "contract %s not found", target.Hex())
		}
		binder, ok := c.(token.AuthorityBinder)
		if !ok {
			return domain.Revert(domain.ErrUnsupportedCall, "contract %s has no authority binding", target.Hex())
		}
		return binder.BindAuthority(tx, authority)
	})
}

func (e *executor) SetUtilityTokenReference(ctx context.Context, caller, addr common.Address) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, nil, "setUtilityTokenReference", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		return l.SetUtilityTokenReference(tx, addr)
	})
}

func (e *executor) SetRewardRegistryReference(ctx context.Context, caller, addr common.Address) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, nil, "setRewardRegistryReference", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		return l.SetRewardRegistryReference(tx, addr)
	})
}

func (e *executor) Withdraw(ctx context.Context, caller, to common.Address, amountWei *uint256.Int) (*dto.TransactionResponse, error) {
	return e.submit(ctx, caller, nil, "withdraw", func(l *ledger.SaleLedger, tx *chain.Tx) error {
		return l.Withdraw(tx, to, amountWei)
	})
}

func (e *executor) GetBalance(ctx context.Context, tokenAddr, holder common.Address) (*dto.BalanceResponse, error) {
	c, ok := e.runtime.Contract(tokenAddr)
	if !ok {
		return nil, nil
	}
	reader, ok := c.(token.BalanceReader)
	if !ok {
		return nil, apierrors.NewBadRequestError("Contract is not a fungible token", tokenAddr.Hex())
	}

	var balance *uint256.Int
	_ = e.runtime.Read(func() error {
		balance = reader.BalanceOf(holder)
		return nil
	})

	return &dto.BalanceResponse{
		Token:   tokenAddr.Hex(),
		Holder:  holder.Hex(),
		Balance: balance.Dec(),
	}, nil
}

func (e *executor) GetAccount(ctx context.Context, addr common.Address) (*dto.AccountResponse, error) {
	resp := &dto.AccountResponse{
		Address:    addr.Hex(),
		BalanceWei: e.runtime.BalanceOf(addr).Dec(),
	}
	if c, ok := e.runtime.Contract(addr); ok {
		resp.IsContract = true
		resp.Kind = c.Kind()
	}
	return resp, nil
}

func (e *executor) GetTransaction(ctx context.Context, id string) (*dto.TransactionResponse, error) {
	tx, err := e.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get transaction: %v", err))
	}
	if tx == nil {
		return nil, nil
	}

	events, err := e.store.GetEvents(ctx, store.EventQueryFilter{TransactionID: &id})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get events: %v", err))
	}

	resp := dto.MapTransactionToDTO(tx, events)
	return &resp, nil
}

func (e *executor) GetEvents(ctx context.Context, anchor uint64, limit *int, eventType *domain.EventType) (*dto.EventListResponse, error) {
	pageSize := constants.DEFAULT_EVENTS_LIMIT
	if limit != nil {
		pageSize = *limit
	}

	events, err := e.store.GetEvents(ctx, store.EventQueryFilter{
		EventType:     eventType,
		AfterSequence: anchor,
		Limit:         pageSize,
	})
	if err != nil {
		return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get events: %v", err))
	}

	// A full page may end mid-transaction. Pages only hold complete transactions:
	// the partial one is dropped, or loaded in full when it is alone on the page.
	var next *uint64
	if len(events) > 0 && len(events) == pageSize {
		last := events[len(events)-1].Sequence
		if events[0].Sequence != last {
			cut := len(events)
			for cut > 0 && events[cut-1].Sequence == last {
				cut--
			}
			events = events[:cut]
			last = events[cut-1].Sequence
		} else {
			txID := events[0].TransactionID
			events, err = e.store.GetEvents(ctx, store.EventQueryFilter{EventType: eventType, TransactionID: &txID})
			if err != nil {
				return nil, apierrors.NewDatabaseError(fmt.Sprintf("Failed to get events: %v", err))
			}
		}
		next = &last
	}

	resp := &dto.EventListResponse{
		Events:     make([]dto.StoredEventResponse, 0, len(events)),
		NextAnchor: next,
	}
	for _, ev := range events {
		resp.Events = append(resp.Events, dto.MapStoredEventToDTO(ev))
	}
	return resp, nil
}

func (e *executor) Health(ctx context.Context) (*dto.HealthResponse, error) {
	return &dto.HealthResponse{Status: "ok", Sequence: e.runtime.Sequence()}, nil
}
