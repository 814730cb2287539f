package swap

import "errors"

// Stage names reported in SwapResult.
const (
	StageValidation     = "Validation"
	StageFeePrefund     = "FeePrefund"
	StageSellLeg        = "SellLeg"
	StageBuyLeg         = "BuyLeg"
	StageWithdraw       = "Withdraw"
	StageWithdrawalWait = "WithdrawalWait"
	StageTransfer       = "Transfer"
)

// ValidationError is a caller mistake: missing wallet address, missing quote
// budget before a buy leg. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// ErrFeePrefundTimeout means the fee buy order stayed unfillable for the
// whole pre-funding window.
var ErrFeePrefundTimeout = errors.New("fee prefund deadline exceeded")

// ErrNoWithdrawalId is a withdrawal response that was accepted but carried no
// identifier to follow up on.
var ErrNoWithdrawalId = errors.New("withdrawal response carried no withdrawal id")
