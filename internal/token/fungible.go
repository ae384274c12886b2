package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// Metadata describes a fungible token
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

type fungibleState struct {
	Metadata    Metadata                        `json:"metadata"`
	TotalSupply *uint256.Int                    `json:"total_supply"`
	Balances    map[common.Address]*uint256.Int `json:"balances"`
}

func newFungibleState(name, symbol string) fungibleState {
	return fungibleState{
		Metadata: Metadata{
			Name:     name,
			Symbol:   symbol,
			Decimals: domain.TOKEN_DECIMALS,
		},
		TotalSupply: uint256.NewInt(0),
		Balances:    make(map[common.Address]*uint256.Int),
	}
}

func (s *fungibleState) normalize() {
	if s.TotalSupply == nil {
		s.TotalSupply = uint256.NewInt(0)
	}
	if s.Balances == nil {
		s.Balances = make(map[common.Address]*uint256.Int)
	}
}

func (s *fungibleState) balanceOf(holder common.Address) *uint256.Int {
	if b, ok := s.Balances[holder]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

func (s *fungibleState) credit(to common.Address, amount *uint256.Int) error {
	supply, overflow := new(uint256.Int).AddOverflow(s.TotalSupply, amount)
	if overflow {
		return domain.ErrAmountOverflow
	}
	balance, overflow := new(uint256.Int).AddOverflow(s.balanceOf(to), amount)
	if overflow {
		return domain.ErrAmountOverflow
	}
	s.TotalSupply = supply
	s.Balances[to] = balance
	return nil
}

func (s *fungibleState) move(label string, from, to common.Address, amount *uint256.Int) error {
	fromBalance := s.balanceOf(from)
	if fromBalance.Lt(amount) {
		return domain.Revert(domain.ErrInsufficientBalance, "%s: transfer amount exceeds balance", label)
	}
	if from == to {
		return nil
	}
	toBalance, overflow := new(uint256.Int).AddOverflow(s.balanceOf(to), amount)
	if overflow {
		return domain.ErrAmountOverflow
	}
	s.Balances[from] = new(uint256.Int).Sub(fromBalance, amount)
	s.Balances[to] = toBalance
	return nil
}

// mintTo credits amount to recipient, emits the mint Transfer event and
// notifies a receiving contract
func (s *fungibleState) mintTo(tx *chain.Tx, to common.Address, amount *uint256.Int) error {
	if err := s.credit(to, amount); err != nil {
		return err
	}
	emitTransfer(tx, common.Address{}, to, amount)
	return notifyReceiver(tx, to, common.Address{}, amount)
}

func (s *fungibleState) transfer(tx *chain.Tx, label string, to common.Address, amount *uint256.Int) error {
	from := tx.Caller()
	if err := s.move(label, from, to, amount); err != nil {
		return err
	}
	emitTransfer(tx, from, to, amount)
	return notifyReceiver(tx, to, from, amount)
}

func emitTransfer(tx *chain.Tx, from, to common.Address, amount *uint256.Int) {
	tx.Emit(domain.EventTypeTransfer, map[string]string{
		"from":   from.Hex(),
		"to":     to.Hex(),
		"amount": amount.Dec(),
	})
}

func notifyReceiver(tx *chain.Tx, to, from common.Address, amount *uint256.Int) error {
	if !tx.IsContract(to) {
		return nil
	}
	return tx.Call(to, func(c chain.Contract, sub *chain.Tx) error {
		receiver, ok := c.(Receiver)
		if !ok {
			return nil
		}
		return receiver.OnTokenReceived(sub, from, amount)
	})
}
