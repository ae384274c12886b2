package chain

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

type txLog struct {
	events []domain.Event
	output map[string]string
}

// Tx is one call frame of a running transaction.
// Nested frames created by Call share the event log and the rollback scope.
type Tx struct {
	ctx    context.Context
	rt     *Runtime
	log    *txLog
	origin common.Address
	caller common.Address
	self   common.Address
	value  *uint256.Int
	depth  int
	now    time.Time
}

// Context returns the context the transaction was submitted with
func (tx *Tx) Context() context.Context {
	return tx.ctx
}

// Caller returns the immediate caller of this frame
func (tx *Tx) Caller() common.Address {
	return tx.caller
}

// Origin returns the account that submitted the transaction
func (tx *Tx) Origin() common.Address {
	return tx.origin
}

// Self returns the address of the contract executing this frame
func (tx *Tx) Self() common.Address {
	return tx.self
}

// Value returns the native currency attached to this frame
func (tx *Tx) Value() *uint256.Int {
	return tx.value.Clone()
}

// Now returns the transaction timestamp
func (tx *Tx) Now() time.Time {
	return tx.now
}

// Emit appends an event raised by the executing contract
func (tx *Tx) Emit(eventType domain.EventType, attributes map[string]string) {
	tx.log.events = append(tx.log.events, domain.Event{
		Type:       eventType,
		Contract:   tx.self,
		LogIndex:   uint(len(tx.log.events)),
		Attributes: attributes,
	})
}

// Return records an output value on the receipt
func (tx *Tx) Return(key string, value string) {
	tx.log.output[key] = value
}

// Call resolves target through the lookup table and runs fn in a nested frame
// whose caller is the current contract
func (tx *Tx) Call(target common.Address, fn func(c Contract, sub *Tx) error) error {
	if tx.depth+1 > MaxCallDepth {
		return domain.Revert(domain.ErrCallDepthExceeded, "call depth exceeded")
	}
	c, ok := tx.rt.contracts[target]
	if !ok {
		return domain.Revert(domain.ErrContractNotFound, "contract %s not found", target.Hex())
	}
	sub := &Tx{
		ctx:    tx.ctx,
		rt:     tx.rt,
		log:    tx.log,
		origin: tx.origin,
		caller: tx.self,
		self:   target,
		value:  uint256.NewInt(0),
		depth:  tx.depth + 1,
		now:    tx.now,
	}
	return fn(c, sub)
}

// Send runs fn against target as a message from the submitting account.
// It is only valid in the outermost frame of a transaction addressed to no contract,
// so one account can batch several contract calls into a single transaction.
func (tx *Tx) Send(target common.Address, fn func(c Contract, sub *Tx) error) error {
	if tx.depth != 0 || !domain.IsZeroAddress(tx.self) {
		return domain.Revert(domain.ErrUnsupportedCall, "send is only available to account batches")
	}
	c, ok := tx.rt.contracts[target]
	if !ok {
		return domain.Revert(domain.ErrContractNotFound, "contract %s not found", target.Hex())
	}
	sub := &Tx{
		ctx:    tx.ctx,
		rt:     tx.rt,
		log:    tx.log,
		origin: tx.origin,
		caller: tx.caller,
		self:   target,
		value:  uint256.NewInt(0),
		depth:  tx.depth + 1,
		now:    tx.now,
	}
	return fn(c, sub)
}

// IsContract reports whether addr resolves to a deployed contract
func (tx *Tx) IsContract(addr common.Address) bool {
	_, ok := tx.rt.contracts[addr]
	return ok
}

// Resolve returns the contract deployed at addr
func (tx *Tx) Resolve(addr common.Address) (Contract, bool) {
	c, ok := tx.rt.contracts[addr]
	return c, ok
}

// Transfer moves native currency held by the executing contract to another account
func (tx *Tx) Transfer(to common.Address, amount *uint256.Int) error {
	return tx.rt.move(tx.self, to, amount)
}

// BalanceOf returns the native currency balance of addr
func (tx *Tx) BalanceOf(addr common.Address) *uint256.Int {
	return tx.rt.balanceOf(addr).Clone()
}

// Deploy registers a contract at the next address derived for the executing account
func (tx *Tx) Deploy(build func(addr common.Address) Contract) (common.Address, error) {
	deployer := tx.self
	if domain.IsZeroAddress(deployer) {
		deployer = tx.caller
	}
	addr := tx.rt.nextAddress(deployer)
	if _, exists := tx.rt.contracts[addr]; exists {
		return common.Address{}, domain.Revert(domain.ErrUnsupportedCall, "address %s already in use", addr.Hex())
	}
	c := build(addr)
	tx.rt.contracts[addr] = c
	tx.Emit(domain.EventTypeContractDeployed, map[string]string{
		"address":  addr.Hex(),
		"kind":     string(c.Kind()),
		"deployer": deployer.Hex(),
	})
	tx.Return("contract_address", addr.Hex())
	return addr, nil
}
