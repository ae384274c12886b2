package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ContractKind identifies the behaviour a deployed contract implements
type ContractKind string

const (
	KindUtilityToken   ContractKind = "utility_token"
	KindAthleteToken   ContractKind = "athlete_token"
	KindRewardRegistry ContractKind = "reward_registry"
	KindSaleLedger     ContractKind = "sale_ledger"
)

// EventType represents the type of an event emitted by a contract
type EventType string

const (
	EventTypeTransfer                  EventType = "transfer"
	EventTypeAthleteTokenCreated       EventType = "athlete_token_created"
	EventTypeAthleteRewardCreated      EventType = "athlete_reward_created"
	EventTypeUtilityTokenPurchased     EventType = "utility_token_purchased"
	EventTypeAthleteTokenPurchased     EventType = "athlete_token_purchased"
	EventTypeAthleteTokenStatusChanged EventType = "athlete_token_status_changed"
	EventTypeAuthorityBound            EventType = "authority_bound"
	EventTypeReferenceUpdated          EventType = "reference_updated"
	EventTypeCustodyWithdrawn          EventType = "custody_withdrawn"
	EventTypeContractDeployed          EventType = "contract_deployed"
)

// Valid reports whether t is a known event type
func (t EventType) Valid() bool {
	switch t {
	case EventTypeTransfer,
		EventTypeAthleteTokenCreated,
		EventTypeAthleteRewardCreated,
		EventTypeUtilityTokenPurchased,
		EventTypeAthleteTokenPurchased,
		EventTypeAthleteTokenStatusChanged,
		EventTypeAuthorityBound,
		EventTypeReferenceUpdated,
		EventTypeCustodyWithdrawn,
		EventTypeContractDeployed:
		return true
	}
	return false
}

// SaleParameters holds the utility token sale terms owned by the ledger.
// SuppliedAmount never exceeds MaxSupply and never decreases.
type SaleParameters struct {
	PricePerTokenWei *uint256.Int `json:"price_per_token_wei"`
	MaxSupply        *uint256.Int `json:"max_supply"`
	SuppliedAmount   *uint256.Int `json:"supplied_amount"`
}

// Remaining returns the number of units still available for sale
func (p SaleParameters) Remaining() *uint256.Int {
	if p.SuppliedAmount.Gt(p.MaxSupply) {
		return uint256.NewInt(0)
	}
	return new(uint256.Int).Sub(p.MaxSupply, p.SuppliedAmount)
}

// Drop is a scheduled supply release attached to an athlete token record
type Drop struct {
	ReleaseTimestamp uint64       `json:"release_timestamp"`
	Supply           *uint256.Int `json:"supply"`
	Price            *uint256.Int `json:"price"`
}

// AthleteTokenRecord is the ledger's registration entry for one athlete token contract
type AthleteTokenRecord struct {
	ID                              uint64         `json:"id"`
	Price                           *uint256.Int   `json:"price"`
	TokenContract                   common.Address `json:"token_contract"`
	IsDisabled                      bool           `json:"is_disabled"`
	MaxSupply                       *uint256.Int   `json:"max_supply"`
	SuppliedAmount                  *uint256.Int   `json:"supplied_amount"`
	AvailableForSale                *uint256.Int   `json:"available_for_sale"`
	CountMaxSupplyAsAvailableTokens bool           `json:"count_max_supply_as_available_tokens"`
	Drops                           []Drop         `json:"drops"`
}

// Available returns how many units of the athlete token can still be sold.
// When CountMaxSupplyAsAvailableTokens is set the remaining max supply is the
// pool, otherwise the AvailableForSale counter is, capped by the remaining max supply.
func (r AthleteTokenRecord) Available() *uint256.Int {
	remaining := uint256.NewInt(0)
	if r.MaxSupply.Gt(r.SuppliedAmount) {
		remaining.Sub(r.MaxSupply, r.SuppliedAmount)
	}
	if r.CountMaxSupplyAsAvailableTokens || remaining.Lt(r.AvailableForSale) {
		return remaining
	}
	return r.AvailableForSale.Clone()
}

// Clone returns a deep copy of the record, including its drops
func (r AthleteTokenRecord) Clone() AthleteTokenRecord {
	c := r
	c.Price = cloneAmount(r.Price)
	c.MaxSupply = cloneAmount(r.MaxSupply)
	c.SuppliedAmount = cloneAmount(r.SuppliedAmount)
	c.AvailableForSale = cloneAmount(r.AvailableForSale)
	c.Drops = make([]Drop, len(r.Drops))
	for i, d := range r.Drops {
		c.Drops[i] = Drop{
			ReleaseTimestamp: d.ReleaseTimestamp,
			Supply:           cloneAmount(d.Supply),
			Price:            cloneAmount(d.Price),
		}
	}
	return c
}

// Normalize replaces nil amounts with zero so arithmetic never dereferences nil
func (r *AthleteTokenRecord) Normalize() {
	r.Price = orZero(r.Price)
	r.MaxSupply = orZero(r.MaxSupply)
	r.SuppliedAmount = orZero(r.SuppliedAmount)
	r.AvailableForSale = orZero(r.AvailableForSale)
	if r.Drops == nil {
		r.Drops = []Drop{}
	}
	for i := range r.Drops {
		r.Drops[i].Supply = orZero(r.Drops[i].Supply)
		r.Drops[i].Price = orZero(r.Drops[i].Price)
	}
}

// RewardGrant is a non-fungible reward referencing an athlete token id
type RewardGrant struct {
	ID             uint64         `json:"id"`
	AthleteTokenID uint64         `json:"athlete_token_id"`
	Recipient      common.Address `json:"recipient"`
	MetadataRef    string         `json:"metadata_ref"`
	Amount         *uint256.Int   `json:"amount"`
}

// Event is a normalized contract event.
// Attribute values are rendered as strings so events hash and serialize deterministically.
type Event struct {
	Type       EventType         `json:"event_type"`
	Contract   common.Address    `json:"contract"`
	LogIndex   uint              `json:"log_index"`
	Attributes map[string]string `json:"attributes"`
}

// Attr returns the attribute value for key, or an empty string
func (e Event) Attr(key string) string {
	if e.Attributes == nil {
		return ""
	}
	return e.Attributes[key]
}

// ParseAddress parses a hex address, rejecting anything that is not 20 bytes of hex
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %s", s)
	}
	return common.HexToAddress(s), nil
}

// ParseAmount parses a base-10 (or 0x-prefixed hex) unsigned 256-bit amount
func ParseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := uint256.FromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// IsZeroAddress reports whether addr is the zero address
func IsZeroAddress(addr common.Address) bool {
	return addr == (common.Address{})
}

func cloneAmount(v *uint256.Int) *uint256.Int {
	if v == nil {
		return nil
	}
	return v.Clone()
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return v
}
