package token

import (
	"encoding/json"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/access"
	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// RewardRegistry is the append-only store of non-fungible reward grants.
// Grant ids start at 1 and are never reused.
type RewardRegistry struct {
	address common.Address
	gate    *access.Gate
	state   rewardRegistryState
}

type rewardRegistryState struct {
	Gate   access.State         `json:"gate"`
	Name   string               `json:"name"`
	Symbol string               `json:"symbol"`
	Grants []domain.RewardGrant `json:"grants"`
}

// NewRewardRegistry creates a reward registry owned by owner
func NewRewardRegistry(address common.Address, owner common.Address, name, symbol string) *RewardRegistry {
	return &RewardRegistry{
		address: address,
		gate:    access.NewGate(domain.LABEL_REWARD_REGISTRY, owner),
		state: rewardRegistryState{
			Name:   name,
			Symbol: symbol,
			Grants: []domain.RewardGrant{},
		},
	}
}

// RewardRegistryFactory rebuilds reward registries from snapshots
func RewardRegistryFactory(address common.Address) chain.Contract {
	return NewRewardRegistry(address, common.Address{}, "", "")
}

func (r *RewardRegistry) Address() common.Address {
	return r.address
}

func (r *RewardRegistry) Kind() domain.ContractKind {
	return domain.KindRewardRegistry
}

func (r *RewardRegistry) ExportState() (json.RawMessage, error) {
	s := r.state
	s.Gate = r.gate.Export()
	return json.Marshal(&s)
}

func (r *RewardRegistry) ImportState(data json.RawMessage) error {
	var s rewardRegistryState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s.Grants == nil {
		s.Grants = []domain.RewardGrant{}
	}
	r.gate = access.NewGate(domain.LABEL_REWARD_REGISTRY, s.Gate.Owner)
	r.gate.Import(s.Gate)
	r.state = s
	return nil
}

func (r *RewardRegistry) Gate() access.Authorizer {
	return r.gate
}

// BindAuthority sets the sole authorized issuer; owner only
func (r *RewardRegistry) BindAuthority(tx *chain.Tx, authority common.Address) error {
	if err := r.gate.BindAuthority(tx.Caller(), authority); err != nil {
		return err
	}
	tx.Emit(domain.EventTypeAuthorityBound, map[string]string{
		"authority": authority.Hex(),
	})
	return nil
}

// Issue appends a grant and returns its id
func (r *RewardRegistry) Issue(tx *chain.Tx, recipient common.Address, athleteTokenID uint64, metadataRef string, amount *uint256.Int) (uint64, error) {
	if err := r.gate.RequireOwnerOrAuthority(tx.Caller()); err != nil {
		return 0, err
	}
	if amount == nil {
		amount = uint256.NewInt(0)
	}

	id := uint64(len(r.state.Grants)) + 1
	r.state.Grants = append(r.state.Grants, domain.RewardGrant{
		ID:             id,
		AthleteTokenID: athleteTokenID,
		Recipient:      recipient,
		MetadataRef:    metadataRef,
		Amount:         amount.Clone(),
	})

	tx.Emit(domain.EventTypeTransfer, map[string]string{
		"from":     common.Address{}.Hex(),
		"to":       recipient.Hex(),
		"token_id": strconv.FormatUint(id, 10),
	})

	return id, nil
}

// Grant returns the grant with the given id
func (r *RewardRegistry) Grant(id uint64) (domain.RewardGrant, error) {
	if id == 0 || id > uint64(len(r.state.Grants)) {
		return domain.RewardGrant{}, domain.Revert(domain.ErrRewardNotFound, "%s: invalid token ID", r.gate.Label())
	}
	g := r.state.Grants[id-1]
	g.Amount = g.Amount.Clone()
	return g, nil
}

// GrantsOf returns the grants issued to recipient, in issuance order
func (r *RewardRegistry) GrantsOf(recipient common.Address) []domain.RewardGrant {
	var grants []domain.RewardGrant
	for _, g := range r.state.Grants {
		if g.Recipient == recipient {
			g.Amount = g.Amount.Clone()
			grants = append(grants, g)
		}
	}
	return grants
}

// Count returns the number of grants issued
func (r *RewardRegistry) Count() uint64 {
	return uint64(len(r.state.Grants))
}
