package token

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/access"
	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// UtilityToken is the mintable token sold by the ledger.
// Minting is restricted to the bound authority or the owner, and fails for
// everyone while no authority is bound.
type UtilityToken struct {
	address common.Address
	gate    *access.Gate
	state   fungibleState
}

type utilityTokenState struct {
	Gate     access.State  `json:"gate"`
	Fungible fungibleState `json:"fungible"`
}

// NewUtilityToken creates a utility token owned by owner
func NewUtilityToken(address common.Address, owner common.Address, name, symbol string) *UtilityToken {
	return &UtilityToken{
		address: address,
		gate:    access.NewGate(name, owner),
		state:   newFungibleState(name, symbol),
	}
}

// UtilityTokenFactory rebuilds utility tokens from snapshots
func UtilityTokenFactory(address common.Address) chain.Contract {
	return NewUtilityToken(address, common.Address{}, domain.LABEL_UTILITY_TOKEN, "")
}

func (t *UtilityToken) Address() common.Address {
	return t.address
}

func (t *UtilityToken) Kind() domain.ContractKind {
	return domain.KindUtilityToken
}

func (t *UtilityToken) ExportState() (json.RawMessage, error) {
	return json.Marshal(&utilityTokenState{
		Gate:     t.gate.Export(),
		Fungible: t.state,
	})
}

func (t *UtilityToken) ImportState(data json.RawMessage) error {
	var s utilityTokenState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s.Fungible.normalize()
	t.gate = access.NewGate(s.Fungible.Metadata.Name, s.Gate.Owner)
	t.gate.Import(s.Gate)
	t.state = s.Fungible
	return nil
}

// Gate exposes the token's authorization checks
func (t *UtilityToken) Gate() access.Authorizer {
	return t.gate
}

// Metadata returns the token name, symbol and decimals
func (t *UtilityToken) Metadata() Metadata {
	return t.state.Metadata
}

// BindAuthority sets the sole authorized minter; owner only
func (t *UtilityToken) BindAuthority(tx *chain.Tx, authority common.Address) error {
	if err := t.gate.BindAuthority(tx.Caller(), authority); err != nil {
		return err
	}
	tx.Emit(domain.EventTypeAuthorityBound, map[string]string{
		"authority": authority.Hex(),
	})
	return nil
}

// Mint credits amount to the recipient
func (t *UtilityToken) Mint(tx *chain.Tx, to common.Address, amount *uint256.Int) error {
	if err := t.gate.RequireOwnerOrAuthority(tx.Caller()); err != nil {
		return err
	}
	return t.state.mintTo(tx, to, amount)
}

// Transfer moves tokens from the caller to another holder
func (t *UtilityToken) Transfer(tx *chain.Tx, to common.Address, amount *uint256.Int) error {
	return t.state.transfer(tx, t.gate.Label(), to, amount)
}

func (t *UtilityToken) BalanceOf(holder common.Address) *uint256.Int {
	return t.state.balanceOf(holder)
}

func (t *UtilityToken) TotalSupply() *uint256.Int {
	return t.state.TotalSupply.Clone()
}
