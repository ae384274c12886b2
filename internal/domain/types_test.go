package domain

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr bool
	}{
		{input: "0", want: 0},
		{input: "42", want: 42},
		{input: " 7 ", want: 7},
		{input: "0x2a", want: 42},
		{input: "", wantErr: true},
		{input: "-1", wantErr: true},
		{input: "1.5", wantErr: true},
		{input: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Uint64())
		})
	}
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", addr.Hex())

	_, err = ParseAddress("0x1234")
	assert.Error(t, err)
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventTypeUtilityTokenPurchased.Valid())
	assert.True(t, EventTypeContractDeployed.Valid())
	assert.False(t, EventType("minted").Valid())
	assert.False(t, EventType("").Valid())
}

func TestAthleteTokenRecord_Available(t *testing.T) {
	record := AthleteTokenRecord{
		MaxSupply:        uint256.NewInt(100),
		SuppliedAmount:   uint256.NewInt(30),
		AvailableForSale: uint256.NewInt(10),
	}
	assert.Equal(t, uint64(10), record.Available().Uint64())

	record.AvailableForSale = uint256.NewInt(500)
	assert.Equal(t, uint64(70), record.Available().Uint64())

	record.CountMaxSupplyAsAvailableTokens = true
	assert.Equal(t, uint64(70), record.Available().Uint64())

	record.SuppliedAmount = uint256.NewInt(120)
	assert.True(t, record.Available().IsZero())
}

func TestRevertReason(t *testing.T) {
	err := Revert(ErrNotOwner, REASON_NOT_OWNER)

	reason, ok := RevertReason(err)
	assert.True(t, ok)
	assert.Equal(t, REASON_NOT_OWNER, reason)
	assert.ErrorIs(t, err, ErrNotOwner)

	_, ok = RevertReason(ErrNotOwner)
	assert.False(t, ok)
}
