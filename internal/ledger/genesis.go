package ledger

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/token"
)

// GenesisConfig describes the initial contract set
type GenesisConfig struct {
	Owner                common.Address
	PricePerTokenWei     *uint256.Int
	MaxSupply            *uint256.Int
	UtilityTokenName     string
	UtilityTokenSymbol   string
	RewardRegistryName   string
	RewardRegistrySymbol string
	// SkipBind leaves both stores without an authority; the owner binds them later
	SkipBind bool
}

// Deployment holds the addresses produced by Genesis
type Deployment struct {
	UtilityToken   common.Address `json:"utility_token"`
	RewardRegistry common.Address `json:"reward_registry"`
	SaleLedger     common.Address `json:"sale_ledger"`
}

// Factories returns the contract factories needed to restore a snapshot
func Factories() map[domain.ContractKind]chain.Factory {
	return map[domain.ContractKind]chain.Factory{
		domain.KindUtilityToken:   token.UtilityTokenFactory,
		domain.KindAthleteToken:   token.AthleteTokenFactory,
		domain.KindRewardRegistry: token.RewardRegistryFactory,
		domain.KindSaleLedger:     Factory,
	}
}

// Genesis deploys the utility token, the reward registry and the sale ledger,
// then binds the ledger as the authorized caller of both stores unless SkipBind is set.
// Everything runs as one transaction from the owner, so genesis commits or leaves no trace.
func Genesis(ctx context.Context, rt *chain.Runtime, cfg GenesisConfig) (*Deployment, error) {
	owner := cfg.Owner
	utilityName, utilitySymbol := orDefault(cfg.UtilityTokenName, domain.LABEL_UTILITY_TOKEN), orDefault(cfg.UtilityTokenSymbol, "NXT")
	registryName, registrySymbol := orDefault(cfg.RewardRegistryName, "NFT"), orDefault(cfg.RewardRegistrySymbol, "NFT")

	var deployment Deployment
	_, err := rt.Execute(ctx, chain.Message{From: owner, Method: "genesis"}, func(tx *chain.Tx) error {
		var err error
		deployment.UtilityToken, err = tx.Deploy(func(addr common.Address) chain.Contract {
			return token.NewUtilityToken(addr, owner, utilityName, utilitySymbol)
		})
		if err != nil {
			return fmt.Errorf("failed to deploy utility token: %w", err)
		}

		deployment.RewardRegistry, err = tx.Deploy(func(addr common.Address) chain.Contract {
			return token.NewRewardRegistry(addr, owner, registryName, registrySymbol)
		})
		if err != nil {
			return fmt.Errorf("failed to deploy reward registry: %w", err)
		}

		deployment.SaleLedger, err = tx.Deploy(func(addr common.Address) chain.Contract {
			return New(addr, owner, Config{
				PricePerTokenWei: cfg.PricePerTokenWei,
				MaxSupply:        cfg.MaxSupply,
				UtilityToken:     deployment.UtilityToken,
				RewardRegistry:   deployment.RewardRegistry,
			})
		})
		if err != nil {
			return fmt.Errorf("failed to deploy sale ledger: %w", err)
		}

		tx.Return("utility_token", deployment.UtilityToken.Hex())
		tx.Return("reward_registry", deployment.RewardRegistry.Hex())
		tx.Return("sale_ledger", deployment.SaleLedger.Hex())

		if cfg.SkipBind {
			return nil
		}
		for _, target := range []common.Address{deployment.UtilityToken, deployment.RewardRegistry} {
			err := tx.Send(target, func(c chain.Contract, sub *chain.Tx) error {
				return bindAuthority(sub, c, deployment.SaleLedger)
			})
			if err != nil {
				return fmt.Errorf("failed to bind authority on %s: %w", target.Hex(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("genesis failed: %w", err)
	}

	return &deployment, nil
}

// BindAuthority submits a bind-authority transaction from caller to target
func BindAuthority(ctx context.Context, rt *chain.Runtime, caller, target, authority common.Address) error {
	_, err := rt.Execute(ctx, chain.Message{From: caller, To: target, Method: "bindAuthority"}, func(tx *chain.Tx) error {
		c, ok := tx.Resolve(target)
		if !ok {
			return domain.Revert(domain.ErrContractNotFound, "contract %s not found", target.Hex())
		}
		return bindAuthority(tx, c, authority)
	})
	if err != nil {
		return fmt.Errorf("failed to bind authority on %s: %w", target.Hex(), err)
	}
	return nil
}

func bindAuthority(tx *chain.Tx, c chain.Contract, authority common.Address) error {
	binder, ok := c.(token.AuthorityBinder)
	if !ok {
		return domain.Revert(domain.ErrUnsupportedCall, "contract %s has no authority binding", c.Address().Hex())
	}
	return binder.BindAuthority(tx, authority)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
