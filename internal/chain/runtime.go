package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
)

// MaxCallDepth bounds nested contract calls within one transaction
const MaxCallDepth = 64

// Contract is a deployed entity addressable through the runtime's lookup table
type Contract interface {
	// Address returns the contract's own address
	Address() common.Address
	// Kind returns the contract kind used to rebuild it from a snapshot
	Kind() domain.ContractKind
	// ExportState serializes the contract state
	ExportState() (json.RawMessage, error)
	// ImportState replaces the contract state
	ImportState(data json.RawMessage) error
}

// Factory rebuilds an empty contract at addr so ImportState can fill it
type Factory func(addr common.Address) Contract

// CommitHook runs after a transaction succeeded, before the runtime releases its lock.
// Returning an error reverts the transaction.
type CommitHook func(ctx context.Context, receipt *Receipt, snapshot *Snapshot) error

// Message describes a transaction submitted to the runtime
type Message struct {
	From   common.Address
	To     common.Address
	Value  *uint256.Int
	Method string
}

// Runtime executes transactions one at a time against the contract set.
// Every transaction either commits in full or leaves no trace.
type Runtime struct {
	mu        sync.Mutex
	contracts map[common.Address]Contract
	balances  map[common.Address]*uint256.Int
	nonces    map[common.Address]uint64
	sequence  uint64
	clock     adapter.Clock
	hook      CommitHook
}

// Option configures a Runtime
type Option func(*Runtime)

// WithCommitHook installs a hook invoked for every committed transaction
func WithCommitHook(hook CommitHook) Option {
	return func(r *Runtime) {
		r.hook = hook
	}
}

// NewRuntime creates an empty runtime
func NewRuntime(clock adapter.Clock, opts ...Option) *Runtime {
	r := &Runtime{
		contracts: make(map[common.Address]Contract),
		balances:  make(map[common.Address]*uint256.Int),
		nonces:    make(map[common.Address]uint64),
		clock:     clock,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCommitHook replaces the commit hook
func (r *Runtime) SetCommitHook(hook CommitHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hook = hook
}

// Execute runs fn as a single transaction.
// The message value moves from msg.From to msg.To before fn runs.
func (r *Runtime) Execute(ctx context.Context, msg Message, fn func(tx *Tx) error) (*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value := msg.Value
	if value == nil {
		value = uint256.NewInt(0)
	}

	cp, err := r.checkpoint()
	if err != nil {
		return nil, fmt.Errorf("failed to checkpoint state: %w", err)
	}

	// microsecond precision survives a round trip through the store
	now := r.clock.Now().UTC().Truncate(time.Microsecond)
	log := &txLog{output: map[string]string{}}
	tx := &Tx{
		ctx:    ctx,
		rt:     r,
		log:    log,
		origin: msg.From,
		caller: msg.From,
		self:   msg.To,
		value:  value,
		now:    now,
	}

	if err := r.apply(msg, value, tx, fn); err != nil {
		if rerr := r.revert(cp); rerr != nil {
			return nil, fmt.Errorf("failed to revert after %v: %w", err, rerr)
		}
		logger.DebugCtx(ctx, "Transaction reverted",
			zap.String("method", msg.Method),
			zap.String("from", msg.From.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	receipt := &Receipt{
		Sequence:  r.sequence + 1,
		From:      msg.From,
		To:        msg.To,
		Method:    msg.Method,
		Value:     value.Clone(),
		Events:    log.events,
		Output:    log.output,
		Timestamp: now,
	}
	if err := receipt.seal(); err != nil {
		return nil, r.abort(cp, "failed to seal receipt", err)
	}
	r.sequence++

	if r.hook != nil {
		snapshot, err := r.export()
		if err == nil {
			err = r.hook(ctx, receipt, snapshot)
		}
		if err != nil {
			r.sequence--
			return nil, r.abort(cp, "commit hook failed", err)
		}
	}

	return receipt, nil
}

// abort restores cp after a transaction body succeeded but the commit could not complete
func (r *Runtime) abort(cp *checkpoint, stage string, cause error) error {
	if rerr := r.revert(cp); rerr != nil {
		return fmt.Errorf("failed to revert after %s (%v): %w", stage, cause, rerr)
	}
	return fmt.Errorf("%s: %w", stage, cause)
}

func (r *Runtime) apply(msg Message, value *uint256.Int, tx *Tx, fn func(tx *Tx) error) error {
	if !domain.IsZeroAddress(msg.To) {
		if _, ok := r.contracts[msg.To]; !ok {
			return domain.Revert(domain.ErrContractNotFound, "contract %s not found", msg.To.Hex())
		}
	}
	if !value.IsZero() {
		if err := r.move(msg.From, msg.To, value); err != nil {
			return err
		}
	}
	return fn(tx)
}

// Deploy deploys a contract built by build at the address derived from (deployer, nonce)
func (r *Runtime) Deploy(ctx context.Context, deployer common.Address, build func(addr common.Address) Contract) (*Receipt, common.Address, error) {
	var deployed common.Address
	receipt, err := r.Execute(ctx, Message{From: deployer, Method: "deploy"}, func(tx *Tx) error {
		addr, err := tx.Deploy(build)
		if err != nil {
			return err
		}
		deployed = addr
		return nil
	})
	if err != nil {
		return nil, common.Address{}, err
	}
	return receipt, deployed, nil
}

// Credit adds native currency to addr outside of any transaction (genesis funding)
func (r *Runtime) Credit(addr common.Address, amount *uint256.Int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sum, overflow := new(uint256.Int).AddOverflow(r.balanceOf(addr), amount)
	if overflow {
		return domain.ErrAmountOverflow
	}
	r.balances[addr] = sum
	return nil
}

// Read runs fn while holding the runtime lock so it observes committed state only
func (r *Runtime) Read(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn()
}

// Contract resolves addr through the lookup table
func (r *Runtime) Contract(addr common.Address) (Contract, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contracts[addr]
	return c, ok
}

// BalanceOf returns the native currency balance of addr
func (r *Runtime) BalanceOf(addr common.Address) *uint256.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.balanceOf(addr).Clone()
}

// Sequence returns the number of committed transactions
func (r *Runtime) Sequence() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sequence
}

// Export returns a serializable snapshot of the whole runtime
func (r *Runtime) Export() (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.export()
}

// Import replaces the runtime state with snapshot, rebuilding contracts through factories
func (r *Runtime) Import(snapshot *Snapshot, factories map[domain.ContractKind]Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contracts := make(map[common.Address]Contract, len(snapshot.Contracts))
	for _, cs := range snapshot.Contracts {
		factory, ok := factories[cs.Kind]
		if !ok {
			return fmt.Errorf("no factory for contract kind %s", cs.Kind)
		}
		c := factory(cs.Address)
		if err := c.ImportState(cs.State); err != nil {
			return fmt.Errorf("failed to import contract %s: %w", cs.Address.Hex(), err)
		}
		contracts[cs.Address] = c
	}

	r.contracts = contracts
	r.balances = cloneBalances(snapshot.Balances)
	r.nonces = make(map[common.Address]uint64, len(snapshot.Nonces))
	for addr, n := range snapshot.Nonces {
		r.nonces[addr] = n
	}
	r.sequence = snapshot.Sequence

	return nil
}

func (r *Runtime) export() (*Snapshot, error) {
	addrs := make([]common.Address, 0, len(r.contracts))
	for addr := range r.contracts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})

	snapshot := &Snapshot{
		Sequence:  r.sequence,
		Balances:  cloneBalances(r.balances),
		Nonces:    make(map[common.Address]uint64, len(r.nonces)),
		Contracts: make([]ContractState, 0, len(addrs)),
	}
	for addr, n := range r.nonces {
		snapshot.Nonces[addr] = n
	}
	for _, addr := range addrs {
		c := r.contracts[addr]
		state, err := c.ExportState()
		if err != nil {
			return nil, fmt.Errorf("failed to export contract %s: %w", addr.Hex(), err)
		}
		snapshot.Contracts = append(snapshot.Contracts, ContractState{
			Address: addr,
			Kind:    c.Kind(),
			State:   state,
		})
	}

	return snapshot, nil
}

type checkpoint struct {
	contracts map[common.Address]Contract
	states    map[common.Address]json.RawMessage
	balances  map[common.Address]*uint256.Int
	nonces    map[common.Address]uint64
}

func (r *Runtime) checkpoint() (*checkpoint, error) {
	cp := &checkpoint{
		contracts: make(map[common.Address]Contract, len(r.contracts)),
		states:    make(map[common.Address]json.RawMessage, len(r.contracts)),
		balances:  cloneBalances(r.balances),
		nonces:    make(map[common.Address]uint64, len(r.nonces)),
	}
	for addr, c := range r.contracts {
		state, err := c.ExportState()
		if err != nil {
			return nil, err
		}
		cp.contracts[addr] = c
		cp.states[addr] = state
	}
	for addr, n := range r.nonces {
		cp.nonces[addr] = n
	}
	return cp, nil
}

func (r *Runtime) revert(cp *checkpoint) error {
	for addr, c := range cp.contracts {
		if err := c.ImportState(cp.states[addr]); err != nil {
			return err
		}
	}
	r.contracts = cp.contracts
	r.balances = cp.balances
	r.nonces = cp.nonces
	return nil
}

func (r *Runtime) balanceOf(addr common.Address) *uint256.Int {
	if b, ok := r.balances[addr]; ok {
		return b
	}
	return uint256.NewInt(0)
}

func (r *Runtime) move(from, to common.Address, amount *uint256.Int) error {
	fromBalance := r.balanceOf(from)
	if fromBalance.Lt(amount) {
		return domain.Revert(domain.ErrInsufficientFunds,
			"insufficient funds: %s has %s wei, needs %s", from.Hex(), fromBalance.Dec(), amount.Dec())
	}
	if from == to {
		return nil
	}
	toBalance, overflow := new(uint256.Int).AddOverflow(r.balanceOf(to), amount)
	if overflow {
		return domain.ErrAmountOverflow
	}
	r.balances[from] = new(uint256.Int).Sub(fromBalance, amount)
	r.balances[to] = toBalance
	return nil
}

func (r *Runtime) nextAddress(deployer common.Address) common.Address {
	nonce := r.nonces[deployer]
	r.nonces[deployer] = nonce + 1
	return crypto.CreateAddress(deployer, nonce)
}

func cloneBalances(in map[common.Address]*uint256.Int) map[common.Address]*uint256.Int {
	out := make(map[common.Address]*uint256.Int, len(in))
	for addr, b := range in {
		out[addr] = b.Clone()
	}
	return out
}
