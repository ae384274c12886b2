package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/nextup-labs/nxt-ledger/internal/api/shared/errors"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

func TestFromLedgerError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   apierrors.ErrorCode
		status int
	}{
		{"not owner", domain.Revert(domain.ErrNotOwner, domain.REASON_NOT_OWNER), apierrors.ErrCodeForbidden, http.StatusForbidden},
		{"not authorized", domain.Revert(domain.ErrNotAuthorized, "NextUp: Caller is not authorized"), apierrors.ErrCodeForbidden, http.StatusForbidden},
		{"authority unset", domain.Revert(domain.ErrAuthorityUnset, "NextUp: Admin contract address is null"), apierrors.ErrCodeForbidden, http.StatusForbidden},
		{"athlete token not found", domain.Revert(domain.ErrAthleteTokenNotFound, "not found"), apierrors.ErrCodeNotFound, http.StatusNotFound},
		{"reward not found", domain.Revert(domain.ErrRewardNotFound, "not found"), apierrors.ErrCodeNotFound, http.StatusNotFound},
		{"insufficient payment", domain.Revert(domain.ErrInsufficientPayment, domain.REASON_INSUFFICIENT_PAYMENT), apierrors.ErrCodePaymentRequired, http.StatusPaymentRequired},
		{"insufficient funds", domain.Revert(domain.ErrInsufficientFunds, "insufficient funds"), apierrors.ErrCodePaymentRequired, http.StatusPaymentRequired},
		{"pool exhausted", domain.Revert(domain.ErrInsufficientPoolSupply, domain.REASON_MAX_SUPPLY_REACHED), apierrors.ErrCodeReverted, http.StatusConflict},
		{"wrapped revert", fmt.Errorf("submit: %w", domain.Revert(domain.ErrNotOwner, domain.REASON_NOT_OWNER)), apierrors.ErrCodeForbidden, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr, status, ok := apierrors.FromLedgerError(tt.err)
			require.True(t, ok)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.status, status)

			reason, _ := domain.RevertReason(tt.err)
			assert.Equal(t, reason, apiErr.Message)
		})
	}
}

func TestFromLedgerError_NotARevert(t *testing.T) {
	apiErr, status, ok := apierrors.FromLedgerError(domain.ErrNotOwner)
	assert.False(t, ok)
	assert.Nil(t, apiErr)
	assert.Zero(t, status)
}

func TestAPIError_Error(t *testing.T) {
	err := apierrors.NewValidationError("amount is required", "limit must be positive")
	assert.JSONEq(t, `{"code":"validation_failed","message":"Validation failed","details":"amount is required, limit must be positive"}`, err.Error())
}
