package domain

const (
	// Revert reasons shared by every gated contract
	REASON_NOT_OWNER = "Ownable: caller is not the owner"

	// Ledger revert reasons
	REASON_MAX_SUPPLY_REACHED   = "Admin: Max supply limit reached"
	REASON_NOT_ENOUGH_TOKENS    = "Admin: Dont have enough tokens"
	REASON_INSUFFICIENT_PAYMENT = "Admin: Insufficient balance"
	REASON_ATHLETE_NOT_FOUND    = "Admin: Athlete token does not exist"
	REASON_ATHLETE_DISABLED     = "Admin: Athlete token is disabled"
	REASON_INSUFFICIENT_CUSTODY = "Admin: Insufficient contract balance"

	// Default contract labels
	LABEL_UTILITY_TOKEN   = "NextUp"
	LABEL_ATHLETE_TOKEN   = "AthleteERC20"
	LABEL_REWARD_REGISTRY = "AthleteERC721"
	LABEL_SALE_LEDGER     = "Admin"

	// Token decimals for fungible tokens
	TOKEN_DECIMALS = 18

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)
