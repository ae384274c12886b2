package registry

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nextup-labs/nxt-ledger/internal/adapter"
)

// Denylist answers whether a caller is barred from submitting transactions
//
//go:generate mockgen -source=denylist.go -destination=../mocks/denylist.go -package=mocks -mock_names=Denylist=MockDenylist
type Denylist interface {
	// IsDenied checks if an address is on the denylist
	IsDenied(address common.Address) bool

	// Size returns the number of denied addresses
	Size() int
}

// DenylistData represents the structure of the denylist file
type DenylistData struct {
	Addresses []string `json:"addresses"`
}

type denylist struct {
	addresses map[common.Address]struct{}
}

// LoadDenylist loads the denylist from a JSON file
func LoadDenylist(fs adapter.FileSystem, json adapter.JSON, filePath string) (Denylist, error) {
	data, err := fs.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read denylist file: %w", err)
	}

	var denylistData DenylistData
	if err := json.Unmarshal(data, &denylistData); err != nil {
		return nil, fmt.Errorf("failed to parse denylist JSON: %w", err)
	}

	dl := &denylist{addresses: make(map[common.Address]struct{}, len(denylistData.Addresses))}
	for _, raw := range denylistData.Addresses {
		addr := strings.TrimSpace(raw)
		if !common.IsHexAddress(addr) {
			return nil, fmt.Errorf("invalid denylist address %q", raw)
		}
		dl.addresses[common.HexToAddress(addr)] = struct{}{}
	}

	return dl, nil
}

func (d *denylist) IsDenied(address common.Address) bool {
	if d == nil {
		return false
	}
	_, ok := d.addresses[address]
	return ok
}

func (d *denylist) Size() int {
	if d == nil {
		return 0
	}
	return len(d.addresses)
}
