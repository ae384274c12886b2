package dto

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/api/shared/constants"
	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/ledger"
)

// PurchaseRequest buys utility tokens from the ledger pool
type PurchaseRequest struct {
	Amount     string `json:"amount"`
	PaymentWei string `json:"payment_wei"`
}

// Validate validates the request body and returns the parsed amounts
func (r *PurchaseRequest) Validate() (amount *uint256.Int, payment *uint256.Int, err error) {
	if amount, err = parseAmount("amount", r.Amount); err != nil {
		return nil, nil, err
	}
	if payment, err = parseOptionalAmount("payment_wei", r.PaymentWei); err != nil {
		return nil, nil, err
	}
	return amount, payment, nil
}

// DeployAthleteTokenRequest deploys a new athlete token contract owned by the caller
type DeployAthleteTokenRequest struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// Validate validates the request body
func (r *DeployAthleteTokenRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apierrors.NewValidationError("name is required")
	}
	if strings.TrimSpace(r.Symbol) == "" {
		return apierrors.NewValidationError("symbol is required")
	}
	return nil
}

// DropRequest is one scheduled supply release
type DropRequest struct {
	ReleaseTimestamp uint64 `json:"release_timestamp"`
	Supply           string `json:"supply"`
	Price            string `json:"price"`
}

// RegisterAthleteTokenRequest registers an athlete token record on the ledger.
// Amounts are optional and default to zero.
type RegisterAthleteTokenRequest struct {
	Price                           string        `json:"price"`
	TokenContract                   string        `json:"token_contract"`
	IsDisabled                      bool          `json:"is_disabled"`
	MaxSupply                       string        `json:"max_supply"`
	SuppliedAmount                  string        `json:"supplied_amount"`
	AvailableForSale                string        `json:"available_for_sale"`
	CountMaxSupplyAsAvailableTokens bool          `json:"count_max_supply_as_available_tokens"`
	Drops                           []DropRequest `json:"drops"`
}

// Validate validates the request body and returns the ledger input
func (r *RegisterAthleteTokenRequest) Validate() (ledger.AthleteTokenInput, error) {
	var in ledger.AthleteTokenInput
	var err error

	if in.TokenContract, err = parseAddress("token_contract", r.TokenContract); err != nil {
		return in, err
	}
	if in.Price, err = parseOptionalAmount("price", r.Price); err != nil {
		return in, err
	}
	if in.MaxSupply, err = parseOptionalAmount("max_supply", r.MaxSupply); err != nil {
		return in, err
	}
	if in.SuppliedAmount, err = parseOptionalAmount("supplied_amount", r.SuppliedAmount); err != nil {
		return in, err
	}
	if in.AvailableForSale, err = parseOptionalAmount("available_for_sale", r.AvailableForSale); err != nil {
		return in, err
	}

	if len(r.Drops) > constants.MAX_DROPS_PER_REQUEST {
		return in, apierrors.NewValidationError(fmt.Sprintf("maximum %d drops allowed", constants.MAX_DROPS_PER_REQUEST))
	}
	in.Drops = make([]domain.Drop, 0, len(r.Drops))
	for i, d := range r.Drops {
		supply, err := parseOptionalAmount(fmt.Sprintf("drops[%d].supply", i), d.Supply)
		if err != nil {
			return in, err
		}
		price, err := parseOptionalAmount(fmt.Sprintf("drops[%d].price", i), d.Price)
		if err != nil {
			return in, err
		}
		in.Drops = append(in.Drops, domain.Drop{ReleaseTimestamp: d.ReleaseTimestamp, Supply: supply, Price: price})
	}

	in.IsDisabled = r.IsDisabled
	in.CountMaxSupplyAsAvailableTokens = r.CountMaxSupplyAsAvailableTokens
	return in, nil
}

// SetAthleteTokenStatusRequest enables or disables an athlete token
type SetAthleteTokenStatusRequest struct {
	IsDisabled *bool `json:"is_disabled"`
}

// Validate validates the request body
func (r *SetAthleteTokenStatusRequest) Validate() error {
	if r.IsDisabled == nil {
		return apierrors.NewValidationError("is_disabled is required")
	}
	return nil
}

// IssueRewardRequest issues a reward grant through the ledger
type IssueRewardRequest struct {
	Recipient      string `json:"recipient"`
	AthleteTokenID uint64 `json:"athlete_token_id"`
	MetadataRef    string `json:"metadata_ref"`
	Amount         string `json:"amount"`
}

// Validate validates the request body and returns the parsed recipient and amount
func (r *IssueRewardRequest) Validate() (common.Address, *uint256.Int, error) {
	recipient, err := parseAddress("recipient", r.Recipient)
	if err != nil {
		return common.Address{}, nil, err
	}
	if len(r.MetadataRef) > constants.MAX_METADATA_REF_SIZE {
		return common.Address{}, nil, apierrors.NewValidationError(fmt.Sprintf("metadata_ref exceeds %d bytes", constants.MAX_METADATA_REF_SIZE))
	}
	amount, err := parseOptionalAmount("amount", r.Amount)
	if err != nil {
		return common.Address{}, nil, err
	}
	return recipient, amount, nil
}

// BindAuthorityRequest binds the sole authorized caller of a gated contract
type BindAuthorityRequest struct {
	Authority string `json:"authority"`
}

// Validate validates the request body
func (r *BindAuthorityRequest) Validate() (common.Address, error) {
	return parseAddress("authority", r.Authority)
}

// SetReferenceRequest points the ledger at another contract
type SetReferenceRequest struct {
	Address string `json:"address"`
}

// Validate validates the request body
func (r *SetReferenceRequest) Validate() (common.Address, error) {
	return parseAddress("address", r.Address)
}

// WithdrawRequest moves native currency out of the ledger's custody
type WithdrawRequest struct {
	To        string `json:"to"`
	AmountWei string `json:"amount_wei"`
}

// Validate validates the request body
func (r *WithdrawRequest) Validate() (common.Address, *uint256.Int, error) {
	to, err := parseAddress("to", r.To)
	if err != nil {
		return common.Address{}, nil, err
	}
	amount, err := parseAmount("amount_wei", r.AmountWei)
	if err != nil {
		return common.Address{}, nil, err
	}
	return to, amount, nil
}

// ParseAddressParam parses an address taken from the path or a header
func ParseAddressParam(name, value string) (common.Address, error) {
	return parseAddress(name, value)
}

func parseAddress(field, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, apierrors.NewValidationError(fmt.Sprintf("%s is required", field))
	}
	addr, err := domain.ParseAddress(value)
	if err != nil {
		return common.Address{}, apierrors.NewValidationError(fmt.Sprintf("%s: %s", field, err.Error()))
	}
	return addr, nil
}

func parseAmount(field, value string) (*uint256.Int, error) {
	v, err := domain.ParseAmount(value)
	if err != nil {
		return nil, apierrors.NewValidationError(fmt.Sprintf("%s: %s", field, err.Error()))
	}
	return v, nil
}

func parseOptionalAmount(field, value string) (*uint256.Int, error) {
	if strings.TrimSpace(value) == "" {
		return uint256.NewInt(0), nil
	}
	return parseAmount(field, value)
}
