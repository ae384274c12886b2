package ledger

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/token"
)

// IssueReward asks the reward registry to append a grant for recipient.
// The athlete token id is recorded as given and is not checked against the registry of records.
func (l *SaleLedger) IssueReward(tx *chain.Tx, recipient common.Address, athleteTokenID uint64, metadataRef string, amount *uint256.Int) (uint64, error) {
	if err := l.gate.RequireOwner(tx.Caller()); err != nil {
		return 0, err
	}

	var rewardID uint64
	registry := l.state.RewardRegistry
	err := tx.Call(registry, func(c chain.Contract, sub *chain.Tx) error {
		issuer, ok := c.(token.RewardIssuer)
		if !ok {
			return domain.Revert(domain.ErrUnsupportedCall, "contract %s cannot issue rewards", registry.Hex())
		}
		id, err := issuer.Issue(sub, recipient, athleteTokenID, metadataRef, amount)
		if err != nil {
			return err
		}
		rewardID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	idStr := strconv.FormatUint(rewardID, 10)
	tx.Emit(domain.EventTypeAthleteRewardCreated, map[string]string{
		"athlete_token_id": strconv.FormatUint(athleteTokenID, 10),
		"reward_id":        idStr,
	})
	tx.Return("reward_id", idStr)
	return rewardID, nil
}
