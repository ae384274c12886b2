package registry_test

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
	"github.com/nextup-labs/nxt-ledger/internal/mocks"
	"github.com/nextup-labs/nxt-ledger/internal/registry"
)

func TestLoadDenylist(t *testing.T) {
	denied := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	other := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	tests := []struct {
		name         string
		content      []byte
		readErr      error
		expectedErr  string
		validateFunc func(t *testing.T, dl registry.Denylist)
	}{
		{
			name:    "successful load",
			content: []byte(`{"addresses": ["0x00000000000000000000000000000000000000AA", " 0x00000000000000000000000000000000000000cc "]}`),
			validateFunc: func(t *testing.T, dl registry.Denylist) {
				assert.Equal(t, 2, dl.Size())
				assert.True(t, dl.IsDenied(denied))
				assert.False(t, dl.IsDenied(other))
			},
		},
		{
			name:    "empty denylist",
			content: []byte(`{}`),
			validateFunc: func(t *testing.T, dl registry.Denylist) {
				assert.Equal(t, 0, dl.Size())
				assert.False(t, dl.IsDenied(denied))
			},
		},
		{
			name:        "file read error",
			readErr:     assert.AnError,
			expectedErr: "failed to read denylist file",
		},
		{
			name:        "JSON parse error",
			content:     []byte(`invalid json`),
			expectedErr: "failed to parse denylist JSON",
		},
		{
			name:        "invalid address",
			content:     []byte(`{"addresses": ["not-an-address"]}`),
			expectedErr: "invalid denylist address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockFS := mocks.NewMockFileSystem(ctrl)
			mockFS.EXPECT().ReadFile("denylist.json").Return(tt.content, tt.readErr)

			mockJSON := mocks.NewMockJSON(ctrl)
			if tt.readErr == nil {
				mockJSON.
					EXPECT().
					Unmarshal(gomock.Any(), gomock.Any()).
					DoAndReturn(func(data []byte, v interface{}) error {
						return json.Unmarshal(data, v)
					})
			}

			dl, err := registry.LoadDenylist(mockFS, mockJSON, "denylist.json")
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
				assert.Nil(t, dl)
				return
			}
			require.NoError(t, err)
			tt.validateFunc(t, dl)
		})
	}
}

func TestLoadDenylist_RealJSON(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFS := mocks.NewMockFileSystem(ctrl)
	mockFS.EXPECT().ReadFile("denylist.json").Return([]byte(`{"addresses": ["0x00000000000000000000000000000000000000aa"]}`), nil)

	dl, err := registry.LoadDenylist(mockFS, adapter.NewJSON(), "denylist.json")
	require.NoError(t, err)
	assert.True(t, dl.IsDenied(common.HexToAddress("0xaa")))
}
