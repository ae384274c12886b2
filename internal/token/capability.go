// Package token implements the balance-store contracts the ledger drives:
// the gated utility token, per-athlete tokens and the reward registry.
package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
)

// Minter is the capability the ledger calls to create tokens for a buyer
type Minter interface {
	Mint(tx *chain.Tx, to common.Address, amount *uint256.Int) error
}

// AuthorityBinder is implemented by contracts whose owner can bind a sole authorized caller
type AuthorityBinder interface {
	BindAuthority(tx *chain.Tx, authority common.Address) error
}

// BalanceReader exposes fungible balances
type BalanceReader interface {
	BalanceOf(holder common.Address) *uint256.Int
	TotalSupply() *uint256.Int
}

// RewardIssuer is the capability the ledger calls to append a reward grant
type RewardIssuer interface {
	Issue(tx *chain.Tx, recipient common.Address, athleteTokenID uint64, metadataRef string, amount *uint256.Int) (uint64, error)
}

// Receiver is implemented by contracts that want to be notified when they receive tokens.
// The hook runs inside the minting transaction.
type Receiver interface {
	OnTokenReceived(tx *chain.Tx, from common.Address, amount *uint256.Int) error
}
