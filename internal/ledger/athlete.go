package ledger

import (
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
)

// AthleteTokenInput carries the registration fields supplied by the owner
type AthleteTokenInput struct {
	Price                           *uint256.Int
	TokenContract                   common.Address
	IsDisabled                      bool
	MaxSupply                       *uint256.Int
	SuppliedAmount                  *uint256.Int
	AvailableForSale                *uint256.Int
	CountMaxSupplyAsAvailableTokens bool
	Drops                           []domain.Drop
}

// RegisterAthleteToken appends a new athlete token record and returns its id.
// Ids start at 1 and are never reused.
func (l *SaleLedger) RegisterAthleteToken(tx *chain.Tx, in AthleteTokenInput) (uint64, error) {
	if err := l.gate.RequireOwner(tx.Caller()); err != nil {
		return 0, err
	}

	id := uint64(len(l.state.AthleteTokens)) + 1
	record := domain.AthleteTokenRecord{
		ID:                              id,
		Price:                           in.Price,
		TokenContract:                   in.TokenContract,
		IsDisabled:                      in.IsDisabled,
		MaxSupply:                       in.MaxSupply,
		SuppliedAmount:                  in.SuppliedAmount,
		AvailableForSale:                in.AvailableForSale,
		CountMaxSupplyAsAvailableTokens: in.CountMaxSupplyAsAvailableTokens,
		Drops:                           in.Drops,
	}
	record = record.Clone()
	record.Normalize()
	l.state.AthleteTokens = append(l.state.AthleteTokens, record)

	idStr := strconv.FormatUint(id, 10)
	tx.Emit(domain.EventTypeAthleteTokenCreated, map[string]string{
		"token_contract": in.TokenContract.Hex(),
		"id":             idStr,
	})
	tx.Return("athlete_token_id", idStr)
	return id, nil
}

// SetAthleteTokenDisabled toggles whether the athlete token can be purchased
func (l *SaleLedger) SetAthleteTokenDisabled(tx *chain.Tx, id uint64, disabled bool) error {
	if err := l.gate.RequireOwner(tx.Caller()); err != nil {
		return err
	}
	record, err := l.record(id)
	if err != nil {
		return err
	}
	record.IsDisabled = disabled
	tx.Emit(domain.EventTypeAthleteTokenStatusChanged, map[string]string{
		"id":          strconv.FormatUint(id, 10),
		"is_disabled": strconv.FormatBool(disabled),
	})
	return nil
}

// PurchaseAthleteToken sells amount units of an enabled athlete token to the caller
func (l *SaleLedger) PurchaseAthleteToken(tx *chain.Tx, id uint64, amount *uint256.Int) error {
	record, err := l.record(id)
	if err != nil {
		return err
	}
	if record.IsDisabled {
		return domain.Revert(domain.ErrAthleteTokenDisabled, domain.REASON_ATHLETE_DISABLED)
	}
	if amount.Gt(record.Available()) {
		return domain.Revert(domain.ErrInsufficientPoolSupply, domain.REASON_NOT_ENOUGH_TOKENS)
	}
	supplied, overflow := new(uint256.Int).AddOverflow(record.SuppliedAmount, amount)
	if overflow {
		return domain.Revert(domain.ErrInsufficientPoolSupply, domain.REASON_NOT_ENOUGH_TOKENS)
	}
	if err := requirePayment(tx.Value(), amount, record.Price); err != nil {
		return err
	}

	record.SuppliedAmount = supplied
	if !record.CountMaxSupplyAsAvailableTokens {
		record.AvailableForSale = new(uint256.Int).Sub(record.AvailableForSale, amount)
	}

	buyer := tx.Caller()
	tx.Emit(domain.EventTypeAthleteTokenPurchased, map[string]string{
		"id":          strconv.FormatUint(id, 10),
		"buyer":       buyer.Hex(),
		"amount":      amount.Dec(),
		"payment_wei": tx.Value().Dec(),
	})

	return mint(tx, record.TokenContract, buyer, amount)
}

// AthleteToken returns a copy of the record with the given id
func (l *SaleLedger) AthleteToken(id uint64) (domain.AthleteTokenRecord, error) {
	record, err := l.record(id)
	if err != nil {
		return domain.AthleteTokenRecord{}, err
	}
	return record.Clone(), nil
}

// AthleteTokens returns copies of every registered record in id order
func (l *SaleLedger) AthleteTokens() []domain.AthleteTokenRecord {
	records := make([]domain.AthleteTokenRecord, 0, len(l.state.AthleteTokens))
	for _, r := range l.state.AthleteTokens {
		records = append(records, r.Clone())
	}
	return records
}

// Drops returns the scheduled releases stored on the record with the given id
func (l *SaleLedger) Drops(id uint64) ([]domain.Drop, error) {
	record, err := l.record(id)
	if err != nil {
		return nil, err
	}
	return record.Clone().Drops, nil
}

func (l *SaleLedger) AthleteTokenCount() uint64 {
	return uint64(len(l.state.AthleteTokens))
}

func (l *SaleLedger) record(id uint64) (*domain.AthleteTokenRecord, error) {
	if id == 0 || id > uint64(len(l.state.AthleteTokens)) {
		return nil, domain.Revert(domain.ErrAthleteTokenNotFound, domain.REASON_ATHLETE_NOT_FOUND)
	}
	return &l.state.AthleteTokens[id-1], nil
}
