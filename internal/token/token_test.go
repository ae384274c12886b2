package token_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/mocks"
	"github.com/nextup-labs/nxt-ledger/internal/token"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	minter   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	holder   = common.HexToAddress("0x00000000000000000000000000000000000000d4")
)

func newRuntime(t *testing.T) *chain.Runtime {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Unix(1700000000, 0)).AnyTimes()
	return chain.NewRuntime(clock)
}

func call(rt *chain.Runtime, from, to common.Address, fn func(tx *chain.Tx) error) (*chain.Receipt, error) {
	return rt.Execute(context.Background(), chain.Message{From: from, To: to}, fn)
}

func deployUtility(t *testing.T, rt *chain.Runtime) *token.UtilityToken {
	_, addr, err := rt.Deploy(context.Background(), owner, func(addr common.Address) chain.Contract {
		return token.NewUtilityToken(addr, owner, domain.LABEL_UTILITY_TOKEN, "NXT")
	})
	require.NoError(t, err)
	c, ok := rt.Contract(addr)
	require.True(t, ok)
	return c.(*token.UtilityToken)
}

func TestUtilityToken_MintBeforeBindFailsForEveryone(t *testing.T) {
	rt := newRuntime(t)
	nxt := deployUtility(t, rt)

	for _, caller := range []common.Address{owner, minter, stranger} {
		_, err := call(rt, caller, nxt.Address(), func(tx *chain.Tx) error {
			return nxt.Mint(tx, holder, uint256.NewInt(5))
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthorityUnset)
		assert.Equal(t, "NextUp: Admin contract address is null", err.Error())
	}
	assert.True(t, nxt.TotalSupply().IsZero())
}

func TestUtilityToken_BindAuthorityOwnerOnly(t *testing.T) {
	rt := newRuntime(t)
	nxt := deployUtility(t, rt)

	_, err := call(rt, stranger, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.BindAuthority(tx, stranger)
	})
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Nil(t, nxt.Gate().Authority())

	receipt, err := call(rt, owner, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.BindAuthority(tx, minter)
	})
	require.NoError(t, err)
	bound := receipt.EventsOf(domain.EventTypeAuthorityBound)
	require.Len(t, bound, 1)
	assert.Equal(t, minter.Hex(), bound[0].Attr("authority"))
}

func TestUtilityToken_MintAfterBind(t *testing.T) {
	rt := newRuntime(t)
	nxt := deployUtility(t, rt)
	require.NoError(t, bindAuthority(rt, nxt, minter))

	receipt, err := call(rt, minter, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Mint(tx, holder, uint256.NewInt(5))
	})
	require.NoError(t, err)
	transfers := receipt.EventsOf(domain.EventTypeTransfer)
	require.Len(t, transfers, 1)
	assert.Equal(t, domain.ETHEREUM_ZERO_ADDRESS, transfers[0].Attr("from"))
	assert.Equal(t, holder.Hex(), transfers[0].Attr("to"))
	assert.Equal(t, "5", transfers[0].Attr("amount"))

	// the owner keeps mint rights alongside the bound authority
	_, err = call(rt, owner, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Mint(tx, holder, uint256.NewInt(1))
	})
	require.NoError(t, err)

	_, err = call(rt, stranger, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Mint(tx, stranger, uint256.NewInt(1))
	})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Equal(t, "NextUp: Caller is not authorized", err.Error())

	assert.Equal(t, uint64(6), nxt.BalanceOf(holder).Uint64())
	assert.Equal(t, uint64(6), nxt.TotalSupply().Uint64())
	assert.True(t, nxt.BalanceOf(stranger).IsZero())
}

func TestUtilityToken_Transfer(t *testing.T) {
	rt := newRuntime(t)
	nxt := deployUtility(t, rt)
	require.NoError(t, bindAuthority(rt, nxt, minter))

	_, err := call(rt, minter, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Mint(tx, holder, uint256.NewInt(10))
	})
	require.NoError(t, err)

	_, err = call(rt, holder, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Transfer(tx, stranger, uint256.NewInt(4))
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), nxt.BalanceOf(holder).Uint64())
	assert.Equal(t, uint64(4), nxt.BalanceOf(stranger).Uint64())

	_, err = call(rt, stranger, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Transfer(tx, holder, uint256.NewInt(5))
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.Equal(t, "NextUp: transfer amount exceeds balance", err.Error())
	assert.Equal(t, uint64(4), nxt.BalanceOf(stranger).Uint64())
	assert.Equal(t, uint64(10), nxt.TotalSupply().Uint64())
}

func TestUtilityToken_ExportImport(t *testing.T) {
	rt := newRuntime(t)
	nxt := deployUtility(t, rt)
	require.NoError(t, bindAuthority(rt, nxt, minter))
	_, err := call(rt, minter, nxt.Address(), func(tx *chain.Tx) error {
		return nxt.Mint(tx, holder, uint256.NewInt(3))
	})
	require.NoError(t, err)

	state, err := nxt.ExportState()
	require.NoError(t, err)

	restored := token.UtilityTokenFactory(nxt.Address()).(*token.UtilityToken)
	require.NoError(t, restored.ImportState(state))

	assert.Equal(t, owner, restored.Gate().Owner())
	assert.Equal(t, minter, *restored.Gate().Authority())
	assert.Equal(t, "NXT", restored.Metadata().Symbol)
	assert.Equal(t, uint8(domain.TOKEN_DECIMALS), restored.Metadata().Decimals)
	assert.Equal(t, uint64(3), restored.BalanceOf(holder).Uint64())
	assert.Equal(t, uint64(3), restored.TotalSupply().Uint64())
}

func TestAthleteToken_MintIsUngated(t *testing.T) {
	rt := newRuntime(t)
	_, addr, err := rt.Deploy(context.Background(), owner, func(addr common.Address) chain.Contract {
		return token.NewAthleteToken(addr, owner, "Athlete One", "ATH1")
	})
	require.NoError(t, err)
	c, _ := rt.Contract(addr)
	athlete := c.(*token.AthleteToken)

	_, err = call(rt, stranger, addr, func(tx *chain.Tx) error {
		return athlete.Mint(tx, holder, uint256.NewInt(2))
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), athlete.BalanceOf(holder).Uint64())
	assert.Equal(t, "ATH1", athlete.Metadata().Symbol)
	assert.Equal(t, domain.KindAthleteToken, athlete.Kind())
}

func TestRewardRegistry_IssueSequentialIDs(t *testing.T) {
	rt := newRuntime(t)
	_, addr, err := rt.Deploy(context.Background(), owner, func(addr common.Address) chain.Contract {
		return token.NewRewardRegistry(addr, owner, "NFT", "NFT")
	})
	require.NoError(t, err)
	c, _ := rt.Contract(addr)
	registry := c.(*token.RewardRegistry)

	issue := func(caller common.Address, athleteID uint64) (uint64, error) {
		var id uint64
		_, err := call(rt, caller, addr, func(tx *chain.Tx) error {
			var err error
			id, err = registry.Issue(tx, holder, athleteID, "ipfs://reward", uint256.NewInt(1))
			return err
		})
		return id, err
	}

	_, err = issue(owner, 1)
	assert.ErrorIs(t, err, domain.ErrAuthorityUnset)
	assert.Equal(t, "AthleteERC721: Admin contract address is null", err.Error())

	require.NoError(t, bindAuthority(rt, registry, minter))

	_, err = issue(stranger, 1)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	first, err := issue(minter, 7)
	require.NoError(t, err)
	second, err := issue(owner, 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Equal(t, uint64(2), registry.Count())

	grant, err := registry.Grant(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), grant.AthleteTokenID)
	assert.Equal(t, holder, grant.Recipient)
	assert.Equal(t, "ipfs://reward", grant.MetadataRef)

	_, err = registry.Grant(3)
	assert.ErrorIs(t, err, domain.ErrRewardNotFound)
	assert.Len(t, registry.GrantsOf(holder), 2)
	assert.Empty(t, registry.GrantsOf(stranger))
}

func bindAuthority(rt *chain.Runtime, target token.AuthorityBinder, authority common.Address) error {
	addr := target.(chain.Contract).Address()
	_, err := call(rt, owner, addr, func(tx *chain.Tx) error {
		return target.BindAuthority(tx, authority)
	})
	return err
}
