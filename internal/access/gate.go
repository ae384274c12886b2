// Package access implements the owner / bound-authority checks shared by every gated contract.
package access

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// Authorizer is implemented by every contract that exposes owner and
// bound-authority checks
type Authorizer interface {
	// Owner returns the current owner
	Owner() common.Address
	// Authority returns the bound authority, or nil while unset
	Authority() *common.Address
	// RequireOwner fails with domain.ErrNotOwner unless caller is the owner
	RequireOwner(caller common.Address) error
	// BindAuthority sets the sole authorized caller; owner only
	BindAuthority(caller common.Address, authority common.Address) error
	// RequireBoundAuthority fails unless caller is the bound authority
	RequireBoundAuthority(caller common.Address) error
}

// State is the serializable form of a Gate
type State struct {
	Owner     common.Address  `json:"owner"`
	Authority *common.Address `json:"authority,omitempty"`
}

// Gate is a single-owner authority plus an optional sole-authorized-caller binding.
// The label prefixes revert reasons, e.g. "NextUp: Caller is not authorized".
type Gate struct {
	label string
	state State
}

// NewGate creates a gate owned by owner with no authority bound
func NewGate(label string, owner common.Address) *Gate {
	return &Gate{label: label, state: State{Owner: owner}}
}

// Label returns the display name used in revert reasons
func (g *Gate) Label() string {
	return g.label
}

func (g *Gate) Owner() common.Address {
	return g.state.Owner
}

func (g *Gate) Authority() *common.Address {
	if g.state.Authority == nil {
		return nil
	}
	a := *g.state.Authority
	return &a
}

func (g *Gate) RequireOwner(caller common.Address) error {
	if caller != g.state.Owner {
		return domain.Revert(domain.ErrNotOwner, domain.REASON_NOT_OWNER)
	}
	return nil
}

// BindAuthority overwrites any previous binding; there is no revocation guard
func (g *Gate) BindAuthority(caller common.Address, authority common.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	g.state.Authority = &authority
	return nil
}

func (g *Gate) RequireBoundAuthority(caller common.Address) error {
	if g.state.Authority == nil {
		return g.authorityUnset()
	}
	if caller != *g.state.Authority {
		return g.notAuthorized()
	}
	return nil
}

// RequireOwnerOrAuthority passes for the bound authority or the owner.
// An unset binding fails for every caller, the owner included.
func (g *Gate) RequireOwnerOrAuthority(caller common.Address) error {
	if g.state.Authority == nil {
		return g.authorityUnset()
	}
	if caller != *g.state.Authority && caller != g.state.Owner {
		return g.notAuthorized()
	}
	return nil
}

// Export returns a copy of the gate state
func (g *Gate) Export() State {
	s := State{Owner: g.state.Owner}
	if g.state.Authority != nil {
		a := *g.state.Authority
		s.Authority = &a
	}
	return s
}

// Import replaces the gate state
func (g *Gate) Import(s State) {
	g.state = State{Owner: s.Owner}
	if s.Authority != nil {
		a := *s.Authority
		g.state.Authority = &a
	}
}

func (g *Gate) authorityUnset() error {
	return domain.Revert(domain.ErrAuthorityUnset, "%s: Admin contract address is null", g.label)
}

func (g *Gate) notAuthorized() error {
	return domain.Revert(domain.ErrNotAuthorized, "%s: Caller is not authorized", g.label)
}
