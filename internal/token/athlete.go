package token

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/access"
	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// AthleteToken is the fungible balance store deployed once per athlete.
// Minting is not gated; the owner can still record a bound authority.
type AthleteToken struct {
	address common.Address
	gate    *access.Gate
	state   fungibleState
}

type athleteTokenState struct {
	Gate     access.State  `json:"gate"`
	Fungible fungibleState `json:"fungible"`
}

// NewAthleteToken creates an athlete token owned by owner
func NewAthleteToken(address common.Address, owner common.Address, name, symbol string) *AthleteToken {
	return &AthleteToken{
		address: address,
		gate:    access.NewGate(name, owner),
		state:   newFungibleState(name, symbol),
	}
}

// AthleteTokenFactory rebuilds athlete tokens from snapshots
func AthleteTokenFactory(address common.Address) chain.Contract {
	return NewAthleteToken(address, common.Address{}, domain.LABEL_ATHLETE_TOKEN, "")
}

func (t *AthleteToken) Address() common.Address {
	return t.address
}

func (t *AthleteToken) Kind() domain.ContractKind {
	return domain.KindAthleteToken
}

func (t *AthleteToken) ExportState() (json.RawMessage, error) {
	return json.Marshal(&athleteTokenState{
		Gate:     t.gate.Export(),
		Fungible: t.state,
	})
}

func (t *AthleteToken) ImportState(data json.RawMessage) error {
	var s athleteTokenState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s.Fungible.normalize()
	t.gate = access.NewGate(s.Fungible.Metadata.Name, s.Gate.Owner)
	t.gate.Import(s.Gate)
	t.state = s.Fungible
	return nil
}

func (t *AthleteToken) Gate() access.Authorizer {
	return t.gate
}

func (t *AthleteToken) Metadata() Metadata {
	return t.state.Metadata
}

// BindAuthority records the authorized caller; owner only
func (t *AthleteToken) BindAuthority(tx *chain.Tx, authority common.Address) error {
	if err := t.gate.BindAuthority(tx.Caller(), authority); err != nil {
		return err
	}
	tx.Emit(domain.EventTypeAuthorityBound, map[string]string{
		"authority": authority.Hex(),
	})
	return nil
}

func (t *AthleteToken) Mint(tx *chain.Tx, to common.Address, amount *uint256.Int) error {
	return t.state.mintTo(tx, to, amount)
}

func (t *AthleteToken) Transfer(tx *chain.Tx, to common.Address, amount *uint256.Int) error {
	return t.state.transfer(tx, t.gate.Label(), to, amount)
}

func (t *AthleteToken) BalanceOf(holder common.Address) *uint256.Int {
	return t.state.balanceOf(holder)
}

func (t *AthleteToken) TotalSupply() *uint256.Int {
	return t.state.TotalSupply.Clone()
}
