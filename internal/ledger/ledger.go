// Package ledger implements the sale ledger: the utility token sale, the athlete
// token registry with its drops, and reward issuance.
package ledger

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/access"
	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// Config holds the constructor arguments of a sale ledger
type Config struct {
	PricePerTokenWei *uint256.Int
	MaxSupply        *uint256.Int
	UtilityToken     common.Address
	RewardRegistry   common.Address
}

// SaleLedger is the orchestrating contract. It stores the addresses of the
// contracts it drives and resolves them through the runtime on every call.
type SaleLedger struct {
	address common.Address
	gate    *access.Gate
	state   state
}

type state struct {
	Gate           access.State                `json:"gate"`
	Sale           domain.SaleParameters       `json:"sale"`
	UtilityToken   common.Address              `json:"utility_token"`
	RewardRegistry common.Address              `json:"reward_registry"`
	AthleteTokens  []domain.AthleteTokenRecord `json:"athlete_tokens"`
}

// New creates a sale ledger owned by owner
func New(address common.Address, owner common.Address, cfg Config) *SaleLedger {
	price := cfg.PricePerTokenWei
	if price == nil {
		price = uint256.NewInt(0)
	}
	maxSupply := cfg.MaxSupply
	if maxSupply == nil {
		maxSupply = uint256.NewInt(0)
	}
	return &SaleLedger{
		address: address,
		gate:    access.NewGate(domain.LABEL_SALE_LEDGER, owner),
		state: state{
			Sale: domain.SaleParameters{
				PricePerTokenWei: price.Clone(),
				MaxSupply:        maxSupply.Clone(),
				SuppliedAmount:   uint256.NewInt(0),
			},
			UtilityToken:   cfg.UtilityToken,
			RewardRegistry: cfg.RewardRegistry,
			AthleteTokens:  []domain.AthleteTokenRecord{},
		},
	}
}

// Factory rebuilds sale ledgers from snapshots
func Factory(address common.Address) chain.Contract {
	return New(address, common.Address{}, Config{})
}

func (l *SaleLedger) Address() common.Address {
	return l.address
}

func (l *SaleLedger) Kind() domain.ContractKind {
	return domain.KindSaleLedger
}

func (l *SaleLedger) ExportState() (json.RawMessage, error) {
	s := l.state
	s.Gate = l.gate.Export()
	return json.Marshal(&s)
}

func (l *SaleLedger) ImportState(data json.RawMessage) error {
	var s state
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Sale.PricePerTokenWei == nil {
		s.Sale.PricePerTokenWei = uint256.NewInt(0)
	}
	if s.Sale.MaxSupply == nil {
		s.Sale.MaxSupply = uint256.NewInt(0)
	}
	if s.Sale.SuppliedAmount == nil {
		s.Sale.SuppliedAmount = uint256.NewInt(0)
	}
	if s.AthleteTokens == nil {
		s.AthleteTokens = []domain.AthleteTokenRecord{}
	}
	for i := range s.AthleteTokens {
		s.AthleteTokens[i].Normalize()
	}
	l.gate = access.NewGate(domain.LABEL_SALE_LEDGER, s.Gate.Owner)
	l.gate.Import(s.Gate)
	l.state = s
	return nil
}

// Gate exposes the ledger's owner check
func (l *SaleLedger) Gate() access.Authorizer {
	return l.gate
}

func (l *SaleLedger) Owner() common.Address {
	return l.gate.Owner()
}

// SaleParameters returns a copy of the utility token sale terms
func (l *SaleLedger) SaleParameters() domain.SaleParameters {
	return domain.SaleParameters{
		PricePerTokenWei: l.state.Sale.PricePerTokenWei.Clone(),
		MaxSupply:        l.state.Sale.MaxSupply.Clone(),
		SuppliedAmount:   l.state.Sale.SuppliedAmount.Clone(),
	}
}

func (l *SaleLedger) UtilityTokenReference() common.Address {
	return l.state.UtilityToken
}

func (l *SaleLedger) RewardRegistryReference() common.Address {
	return l.state.RewardRegistry
}

// SetUtilityTokenReference repoints the utility token address; owner only
func (l *SaleLedger) SetUtilityTokenReference(tx *chain.Tx, addr common.Address) error {
	if err := l.gate.RequireOwner(tx.Caller()); err != nil {
		return err
	}
	l.state.UtilityToken = addr
	tx.Emit(domain.EventTypeReferenceUpdated, map[string]string{
		"reference": "utility_token",
		"address":   addr.Hex(),
	})
	return nil
}

// SetRewardRegistryReference repoints the reward registry address; owner only
func (l *SaleLedger) SetRewardRegistryReference(tx *chain.Tx, addr common.Address) error {
	if err := l.gate.RequireOwner(tx.Caller()); err != nil {
		return err
	}
	l.state.RewardRegistry = addr
	tx.Emit(domain.EventTypeReferenceUpdated, map[string]string{
		"reference": "reward_registry",
		"address":   addr.Hex(),
	})
	return nil
}

// Withdraw sends custody funds to another account; owner only
func (l *SaleLedger) Withdraw(tx *chain.Tx, to common.Address, amount *uint256.Int) error {
	if err := l.gate.RequireOwner(tx.Caller()); err != nil {
		return err
	}
	if tx.BalanceOf(l.address).Lt(amount) {
		return domain.Revert(domain.ErrInsufficientCustody, domain.REASON_INSUFFICIENT_CUSTODY)
	}
	if err := tx.Transfer(to, amount); err != nil {
		return err
	}
	tx.Emit(domain.EventTypeCustodyWithdrawn, map[string]string{
		"to":     to.Hex(),
		"amount": amount.Dec(),
	})
	return nil
}
