package entities

// TransactionType represents the type of wallet balance change
type TransactionType string

// All transaction types supported by the betting wallet
const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeBetPlaced  TransactionType = "BET_PLACED"
	TransactionTypeBetWon     TransactionType = "BET_WON"
	TransactionTypeBetRefund  TransactionType = "BET_REFUND"
)

// IsValid returns true for a known transaction type
func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypeDeposit, TransactionTypeWithdrawal,
		TransactionTypeBetPlaced, TransactionTypeBetWon, TransactionTypeBetRefund:
		return true
	}
	return false
}

// IsBetRelated returns true if the transaction references a bet
func (tt TransactionType) IsBetRelated() bool {
	return tt == TransactionTypeBetPlaced ||
		tt == TransactionTypeBetWon ||
		tt == TransactionTypeBetRefund
}

// IsCreditType returns true for types that add funds to the wallet
func (tt TransactionType) IsCreditType() bool {
	return tt == TransactionTypeDeposit ||
		tt == TransactionTypeBetWon ||
		tt == TransactionTypeBetRefund
}

// Description returns a human-readable description of the transaction type
func (tt TransactionType) Description() string {
	switch tt {
	case TransactionTypeDeposit:
		return "Funds added"
	case TransactionTypeWithdrawal:
		return "Funds withdrawn"
	case TransactionTypeBetPlaced:
		return "Bet placed"
	case TransactionTypeBetWon:
		return "Bet won"
	case TransactionTypeBetRefund:
		return "Bet refunded (void)"
	default:
		return string(tt)
	}
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
