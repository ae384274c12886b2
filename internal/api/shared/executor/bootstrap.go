package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/ledger"
	"github.com/nextup-labs/nxt-ledger/internal/logger"
	"github.com/nextup-labs/nxt-ledger/internal/store"
)

// BootstrapConfig describes the ledger created when the store holds no state
type BootstrapConfig struct {
	Genesis ledger.GenesisConfig
	// Balances are credited before genesis so the first snapshot carries them
	Balances map[common.Address]*uint256.Int
}

// CommitHook persists every committed transaction with the snapshot taken after it
func CommitHook(st store.Store) chain.CommitHook {
	return func(ctx context.Context, receipt *chain.Receipt, snapshot *chain.Snapshot) error {
		input, err := store.NewCommitInput(receipt, snapshot)
		if err != nil {
			return err
		}
		return st.SaveCommit(ctx, input)
	}
}

// Bootstrap installs the persistence hook, then restores the runtime from the stored
// snapshot or runs genesis. It returns the sale ledger address.
func Bootstrap(ctx context.Context, rt *chain.Runtime, st store.Store, cfg BootstrapConfig) (common.Address, error) {
	rt.SetCommitHook(CommitHook(st))

	raw, err := st.LoadState(ctx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to load state: %w", err)
	}

	if raw != nil {
		var snapshot chain.Snapshot
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return common.Address{}, fmt.Errorf("failed to decode state: %w", err)
		}
		if err := rt.Import(&snapshot, ledger.Factories()); err != nil {
			return common.Address{}, fmt.Errorf("failed to restore state: %w", err)
		}
		for _, c := range snapshot.Contracts {
			if c.Kind == domain.KindSaleLedger {
				logger.InfoCtx(ctx, "Restored ledger state",
					zap.Uint64("sequence", snapshot.Sequence),
					zap.Int("contracts", len(snapshot.Contracts)),
					zap.String("sale_ledger", c.Address.Hex()),
				)
				return c.Address, nil
			}
		}
		return common.Address{}, fmt.Errorf("stored state has no sale ledger")
	}

	for addr, amount := range cfg.Balances {
		if err := rt.Credit(addr, amount); err != nil {
			return common.Address{}, fmt.Errorf("failed to credit %s: %w", addr.Hex(), err)
		}
	}

	deployment, err := ledger.Genesis(ctx, rt, cfg.Genesis)
	if err != nil {
		return common.Address{}, err
	}

	logger.InfoCtx(ctx, "Genesis completed",
		zap.String("utility_token", deployment.UtilityToken.Hex()),
		zap.String("reward_registry", deployment.RewardRegistry.Hex()),
		zap.String("sale_ledger", deployment.SaleLedger.Hex()),
		zap.Bool("bound", !cfg.Genesis.SkipBind),
	)

	return deployment.SaleLedger, nil
}
