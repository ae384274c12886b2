package access_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextup-labs/nxt-ledger/internal/access"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ledger   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

func TestGate_RequireOwner(t *testing.T) {
	g := access.NewGate("NextUp", owner)

	assert.NoError(t, g.RequireOwner(owner))

	err := g.RequireOwner(stranger)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Equal(t, "Ownable: caller is not the owner", err.Error())
}

func TestGate_UnsetAuthorityRejectsEveryone(t *testing.T) {
	g := access.NewGate("NextUp", owner)
	assert.Nil(t, g.Authority())

	for _, caller := range []common.Address{owner, ledger, stranger} {
		err := g.RequireOwnerOrAuthority(caller)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrAuthorityUnset)
		assert.Equal(t, "NextUp: Admin contract address is null", err.Error())

		err = g.RequireBoundAuthority(caller)
		assert.ErrorIs(t, err, domain.ErrAuthorityUnset)
	}
}

func TestGate_BindAuthority(t *testing.T) {
	g := access.NewGate("NextUp", owner)

	err := g.BindAuthority(stranger, stranger)
	assert.ErrorIs(t, err, domain.ErrNotOwner)
	assert.Nil(t, g.Authority())

	require.NoError(t, g.BindAuthority(owner, ledger))
	require.NotNil(t, g.Authority())
	assert.Equal(t, ledger, *g.Authority())

	assert.NoError(t, g.RequireOwnerOrAuthority(ledger))
	assert.NoError(t, g.RequireOwnerOrAuthority(owner))
	assert.NoError(t, g.RequireBoundAuthority(ledger))

	err = g.RequireOwnerOrAuthority(stranger)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Equal(t, "NextUp: Caller is not authorized", err.Error())

	err = g.RequireBoundAuthority(owner)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
}

func TestGate_RebindOverwrites(t *testing.T) {
	g := access.NewGate("AthleteERC721", owner)
	require.NoError(t, g.BindAuthority(owner, ledger))
	require.NoError(t, g.BindAuthority(owner, stranger))

	assert.Equal(t, stranger, *g.Authority())
	assert.ErrorIs(t, g.RequireOwnerOrAuthority(ledger), domain.ErrNotAuthorized)
	assert.NoError(t, g.RequireOwnerOrAuthority(stranger))
}

func TestGate_ExportImport(t *testing.T) {
	g := access.NewGate("NextUp", owner)
	require.NoError(t, g.BindAuthority(owner, ledger))

	state := g.Export()
	restored := access.NewGate("NextUp", common.Address{})
	restored.Import(state)

	assert.Equal(t, owner, restored.Owner())
	assert.Equal(t, ledger, *restored.Authority())

	// mutating the exported copy must not leak into either gate
	*state.Authority = stranger
	assert.Equal(t, ledger, *g.Authority())
	assert.Equal(t, ledger, *restored.Authority())
}

func TestGate_ImplementsAuthorizer(t *testing.T) {
	var _ access.Authorizer = access.NewGate("Admin", owner)
}
