package dto

import (
	"encoding/json"
	"time"

	"github.com/holiman/uint256"

	"github.com/nextup-labs/nxt-ledger/internal/chain"
	"github.com/nextup-labs/nxt-ledger/internal/domain"
	"github.com/nextup-labs/nxt-ledger/internal/store/schema"
)

// EventResponse is a contract event
type EventResponse struct {
	Type       domain.EventType  `json:"type"`
	Contract   string            `json:"contract"`
	LogIndex   uint              `json:"log_index"`
	Attributes map[string]string `json:"attributes"`
}

// TransactionResponse is a committed transaction
type TransactionResponse struct {
	ID        string            `json:"id"`
	Sequence  uint64            `json:"sequence"`
	From      string            `json:"from"`
	To        string            `json:"to"`
	Method    string            `json:"method"`
	ValueWei  string            `json:"value_wei"`
	Hash      string            `json:"hash"`
	Timestamp time.Time         `json:"timestamp"`
	Output    map[string]string `json:"output,omitempty"`
	Events    []EventResponse   `json:"events,omitempty"`
}

// DeployResponse is returned for contract deployments
type DeployResponse struct {
	Address     string              `json:"address"`
	Transaction TransactionResponse `json:"transaction"`
}

// SaleResponse describes the utility token sale
type SaleResponse struct {
	Ledger           string `json:"ledger"`
	Owner            string `json:"owner"`
	PricePerTokenWei string `json:"price_per_token_wei"`
	MaxSupply        string `json:"max_supply"`
	SuppliedAmount   string `json:"supplied_amount"`
	Remaining        string `json:"remaining"`
	UtilityToken     string `json:"utility_token"`
	RewardRegistry   string `json:"reward_registry"`
	CustodyWei       string `json:"custody_wei"`
}

// DropResponse is a scheduled supply release
type DropResponse struct {
	ReleaseTimestamp uint64 `json:"release_timestamp"`
	Supply           string `json:"supply"`
	Price            string `json:"price"`
}

// AthleteTokenResponse is an athlete token record
type AthleteTokenResponse struct {
	ID                              uint64         `json:"id"`
	Price                           string         `json:"price"`
	TokenContract                   string         `json:"token_contract"`
	IsDisabled                      bool           `json:"is_disabled"`
	MaxSupply                       string         `json:"max_supply"`
	SuppliedAmount                  string         `json:"supplied_amount"`
	AvailableForSale                string         `json:"available_for_sale"`
	CountMaxSupplyAsAvailableTokens bool           `json:"count_max_supply_as_available_tokens"`
	Available                       string         `json:"available"`
	Drops                           []DropResponse `json:"drops"`
}

// AthleteTokenListResponse lists athlete token records in registration order
type AthleteTokenListResponse struct {
	AthleteTokens []AthleteTokenResponse `json:"athlete_tokens"`
	Total         int                    `json:"total"`
}

// RewardResponse is an issued reward grant
type RewardResponse struct {
	ID             uint64 `json:"id"`
	AthleteTokenID uint64 `json:"athlete_token_id"`
	Recipient      string `json:"recipient"`
	MetadataRef    string `json:"metadata_ref"`
	Amount         string `json:"amount"`
}

// BalanceResponse is a token balance
type BalanceResponse struct {
	Token   string `json:"token"`
	Holder  string `json:"holder"`
	Balance string `json:"balance"`
}

// AccountResponse describes an address known to the ledger
type AccountResponse struct {
	Address    string              `json:"address"`
	BalanceWei string              `json:"balance_wei"`
	IsContract bool                `json:"is_contract"`
	Kind       domain.ContractKind `json:"kind,omitempty"`
}

// StoredEventResponse is a persisted event
type StoredEventResponse struct {
	TransactionID string            `json:"transaction_id"`
	Sequence      uint64            `json:"sequence"`
	LogIndex      uint              `json:"log_index"`
	Type          domain.EventType  `json:"type"`
	Contract      string            `json:"contract"`
	Attributes    map[string]string `json:"attributes"`
	Timestamp     time.Time         `json:"timestamp"`
}

// EventListResponse is a page of persisted events.
// NextAnchor is the sequence to pass as anchor for the next page.
type EventListResponse struct {
	Events     []StoredEventResponse `json:"events"`
	NextAnchor *uint64               `json:"next_anchor,omitempty"`
}

// HealthResponse reports service health
type HealthResponse struct {
	Status   string `json:"status"`
	Sequence uint64 `json:"sequence"`
}

// MapReceiptToDTO maps a receipt to its response
func MapReceiptToDTO(r *chain.Receipt) TransactionResponse {
	events := make([]EventResponse, 0, len(r.Events))
	for _, e := range r.Events {
		events = append(events, EventResponse{
			Type:       e.Type,
			Contract:   e.Contract.Hex(),
			LogIndex:   e.LogIndex,
			Attributes: e.Attributes,
		})
	}
	return TransactionResponse{
		ID:        r.ID,
		Sequence:  r.Sequence,
		From:      r.From.Hex(),
		To:        r.To.Hex(),
		Method:    r.Method,
		ValueWei:  amountString(r.Value),
		Hash:      r.Hash,
		Timestamp: r.Timestamp,
		Output:    r.Output,
		Events:    events,
	}
}

// MapTransactionToDTO maps a stored transaction and its events to a response
func MapTransactionToDTO(tx *schema.LedgerTransaction, events []schema.LedgerEvent) TransactionResponse {
	var output map[string]string
	if len(tx.Output) > 0 {
		_ = json.Unmarshal(tx.Output, &output)
	}
	resp := TransactionResponse{
		ID:        tx.ID,
		Sequence:  tx.Sequence,
		From:      tx.FromAddress,
		To:        tx.ToAddress,
		Method:    tx.Method,
		ValueWei:  tx.ValueWei,
		Hash:      tx.Hash,
		Timestamp: tx.Timestamp,
		Output:    output,
		Events:    make([]EventResponse, 0, len(events)),
	}
	for _, e := range events {
		resp.Events = append(resp.Events, EventResponse{
			Type:       e.EventType,
			Contract:   e.ContractAddress,
			LogIndex:   e.LogIndex,
			Attributes: attributes(e.Attributes),
		})
	}
	return resp
}

// MapStoredEventToDTO maps a persisted event to its response
func MapStoredEventToDTO(e schema.LedgerEvent) StoredEventResponse {
	return StoredEventResponse{
		TransactionID: e.TransactionID,
		Sequence:      e.Sequence,
		LogIndex:      e.LogIndex,
		Type:          e.EventType,
		Contract:      e.ContractAddress,
		Attributes:    attributes(e.Attributes),
		Timestamp:     e.Timestamp,
	}
}

// MapAthleteTokenToDTO maps an athlete token record to its response
func MapAthleteTokenToDTO(r domain.AthleteTokenRecord) AthleteTokenResponse {
	drops := make([]DropResponse, 0, len(r.Drops))
	for _, d := range r.Drops {
		drops = append(drops, DropResponse{
			ReleaseTimestamp: d.ReleaseTimestamp,
			Supply:           amountString(d.Supply),
			Price:            amountString(d.Price),
		})
	}
	return AthleteTokenResponse{
		ID:                              r.ID,
		Price:                           amountString(r.Price),
		TokenContract:                   r.TokenContract.Hex(),
		IsDisabled:                      r.IsDisabled,
		MaxSupply:                       amountString(r.MaxSupply),
		SuppliedAmount:                  amountString(r.SuppliedAmount),
		AvailableForSale:                amountString(r.AvailableForSale),
		CountMaxSupplyAsAvailableTokens: r.CountMaxSupplyAsAvailableTokens,
		Available:                       amountString(r.Available()),
		Drops:                           drops,
	}
}

// MapRewardToDTO maps a reward grant to its response
func MapRewardToDTO(g domain.RewardGrant) RewardResponse {
	return RewardResponse{
		ID:             g.ID,
		AthleteTokenID: g.AthleteTokenID,
		Recipient:      g.Recipient.Hex(),
		MetadataRef:    g.MetadataRef,
		Amount:         amountString(g.Amount),
	}
}

func attributes(raw []byte) map[string]string {
	attrs := map[string]string{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &attrs)
	}
	return attrs
}

func amountString(v *uint256.Int) string {
	if v == nil {
		return "0"
	}
	return v.Dec()
}
