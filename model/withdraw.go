package model

import "github.com/samber/lo"

type WithdrawStatus string

// exchange-owned review/payment lifecycle of a withdrawal
const (
	WithdrawNotReviewed       WithdrawStatus = "NOT_REVIEWED"
	WithdrawApproved          WithdrawStatus = "APPROVED"
	WithdrawRejected          WithdrawStatus = "REJECTED"
	WithdrawPaymentInProgress WithdrawStatus = "PAYMENT_IN_PROGRESS"
	WithdrawPaymentFailed     WithdrawStatus = "PAYMENT_FAILED"
	WithdrawCompleted         WithdrawStatus = "COMPLETED"
	WithdrawCancelled         WithdrawStatus = "CANCELLED"
)

var terminalFailureStatuses = []WithdrawStatus{
	WithdrawRejected,
	WithdrawPaymentFailed,
	WithdrawCancelled,
}

// IsTerminal reports whether the status can no longer transition.
func (s WithdrawStatus) IsTerminal() bool {
	return s == WithdrawCompleted || s.IsTerminalFailure()
}

func (s WithdrawStatus) IsTerminalFailure() bool {
	return lo.Contains(terminalFailureStatuses, s)
}

type WithdrawalRequest struct {
	CurrencyCode string `json:"currencyCode"`
	Amount       string `json:"amount"`
	Address      string `json:"address"`
	ChainType    string `json:"chainType"`
	Tag          string `json:"tag,omitempty"`
}

type WithdrawalRecord struct {
	WithdrawalId string         `json:"withdrawalId"`
	CurrencyCode string         `json:"currencyCode"`
	Amount       string         `json:"amount"`
	Status       WithdrawStatus `json:"status"`
	OnchainTxId  string         `json:"onchainTxId,omitempty"`
}
