package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/token"
)

// Purchase sells amount utility tokens to the caller for the attached value.
// The payment already sits in the ledger's custody when this runs.
//
// The supply counter is committed before the mint call, so a reentrant
// purchase from the mint path sees the updated pool.
func (l *SaleLedger) Purchase(tx *chain.Tx, amount *uint256.Int) error {
	sale := &l.state.Sale

	next, err := reservePool(sale.SuppliedAmount, sale.MaxSupply, amount)
	if err != nil {
		return err
	}
	if err := requirePayment(tx.Value(), amount, sale.PricePerTokenWei); err != nil {
		return err
	}

	sale.SuppliedAmount = next

	buyer := tx.Caller()
	tx.Emit(domain.EventTypeUtilityTokenPurchased, map[string]string{
		"buyer":       buyer.Hex(),
		"amount":      amount.Dec(),
		"payment_wei": tx.Value().Dec(),
	})

	return mint(tx, l.state.UtilityToken, buyer, amount)
}

// reservePool returns the supplied amount after selling amount more units
func reservePool(supplied, maxSupply, amount *uint256.Int) (*uint256.Int, error) {
	next, overflow := new(uint256.Int).AddOverflow(supplied, amount)
	if overflow || next.Gt(maxSupply) {
		if !supplied.Lt(maxSupply) {
			return nil, domain.Revert(domain.ErrInsufficientPoolSupply, domain.REASON_MAX_SUPPLY_REACHED)
		}
		return nil, domain.Revert(domain.ErrInsufficientPoolSupply, domain.REASON_NOT_ENOUGH_TOKENS)
	}
	return next, nil
}

// requirePayment checks payment covers amount * price exactly; surplus is kept
func requirePayment(payment, amount, price *uint256.Int) error {
	cost, overflow := new(uint256.Int).MulOverflow(amount, price)
	if overflow || payment.Lt(cost) {
		return domain.Revert(domain.ErrInsufficientPayment, domain.REASON_INSUFFICIENT_PAYMENT)
	}
	return nil
}

func mint(tx *chain.Tx, tokenAddr common.Address, to common.Address, amount *uint256.Int) error {
	return tx.Call(tokenAddr, func(c chain.Contract, sub *chain.Tx) error {
		minter, ok := c.(token.Minter)
		if !ok {
			return domain.Revert(domain.ErrUnsupportedCall, "contract %s cannot mint", tokenAddr.Hex())
		}
		return minter.Mint(sub, to, amount)
	})
}
