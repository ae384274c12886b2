package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOwner is returned when the caller is not the owner of the governed contract
	ErrNotOwner = errors.New("caller is not the owner")

	// ErrAuthorityUnset is returned when a gated contract has no authorized caller bound yet
	ErrAuthorityUnset = errors.New("authority is unset")

	// ErrNotAuthorized is returned when the caller is neither the owner nor the bound authority
	ErrNotAuthorized = errors.New("caller is not authorized")

	// ErrInsufficientPoolSupply is returned when a purchase would exceed the remaining pool
	ErrInsufficientPoolSupply = errors.New("insufficient pool supply")

	// ErrInsufficientPayment is returned when the attached payment does not cover the price
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrInsufficientFunds is returned when an account cannot cover a native currency transfer
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientBalance is returned when a token holder cannot cover a token transfer
	ErrInsufficientBalance = errors.New("insufficient token balance")

	// ErrInsufficientCustody is returned when the ledger cannot cover a withdrawal
	ErrInsufficientCustody = errors.New("insufficient custody")

	// ErrAthleteTokenNotFound is returned when an athlete token id was never registered
	ErrAthleteTokenNotFound = errors.New("athlete token not found")

	// ErrAthleteTokenDisabled is returned when buying a disabled athlete token
	ErrAthleteTokenDisabled = errors.New("athlete token is disabled")

	// ErrRewardNotFound is returned when a reward id does not exist
	ErrRewardNotFound = errors.New("reward not found")

	// ErrContractNotFound is returned when an address does not resolve to a deployed contract
	ErrContractNotFound = errors.New("contract not found")

	// ErrUnsupportedCall is returned when a resolved contract does not implement the called capability
	ErrUnsupportedCall = errors.New("unsupported call")

	// ErrCallDepthExceeded is returned when nested contract calls go too deep
	ErrCallDepthExceeded = errors.New("call depth exceeded")

	// ErrAmountOverflow is returned when an arithmetic result does not fit in 256 bits
	ErrAmountOverflow = errors.New("amount overflow")
)

// RevertError aborts a transaction. Error returns the revert reason verbatim,
// Unwrap returns the taxonomy kind so callers can match with errors.Is.
type RevertError struct {
	Kind   error
	Reason string
}

func (e *RevertError) Error() string {
	return e.Reason
}

func (e *RevertError) Unwrap() error {
	return e.Kind
}

// Revert builds a RevertError of the given kind
func Revert(kind error, format string, args ...any) error {
	return &RevertError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// RevertReason extracts the revert reason from err, if err is a revert
func RevertReason(err error) (string, bool) {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert.Reason, true
	}
	return "", false
}
