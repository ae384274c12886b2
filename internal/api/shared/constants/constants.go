package constants

const (
	MAX_PAGE_SIZE         = 500
	DEFAULT_EVENTS_LIMIT  = 100
	MAX_DROPS_PER_REQUEST = 100
	MAX_METADATA_REF_SIZE = 2048
	// CALLER_HEADER names the account an API-key relayer submits on behalf of
	CALLER_HEADER = "X-Ledger-Caller"
)
