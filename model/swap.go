package model

// SwapRequest is the caller's order: convert SourceSymbol into DestSymbol and
// land the proceeds in DestWalletAddress. Immutable once accepted.
type SwapRequest struct {
	SourceSymbol       string `json:"sourceSymbol"`
	SourceTokenAddress string `json:"sourceTokenAddress"`
	DestSymbol         string `json:"destSymbol"`
	DestTokenAddress   string `json:"destTokenAddress"`
	InputAmount        string `json:"inputAmount"`
	OutputAmountHint   string `json:"outputAmountHint"`
	SourceChain        string `json:"sourceChain"`
	DestChain          string `json:"destChain"`
	DestWalletAddress  string `json:"destWalletAddress"`
	DestTokenRpcUrl    string `json:"destTokenRpcUrl"`
	DestTokenDecimals  int32  `json:"destTokenDecimals"`

	// optional gas pre-funding of the destination chain
	FeeQuoteAmount  string `json:"feeQuoteAmount,omitempty"`
	FeeNativeSymbol string `json:"feeNativeSymbol,omitempty"`
}

// SwapResult is the only entity handed back to the caller. Stage names which
// pipeline step produced the outcome; artifacts of stages that committed before
// a failure stay populated so the caller can reconcile.
type SwapResult struct {
	SwapResult      bool              `json:"swapResult"`
	Stage           string            `json:"stage,omitempty"`
	Message         string            `json:"message,omitempty"`
	TransferPending bool              `json:"transferPending,omitempty"`
	Orders          []Order           `json:"orders,omitempty"`
	Withdrawal      *WithdrawalRecord `json:"withdrawal,omitempty"`
	Transfer        *TransferResult   `json:"transfer,omitempty"`
}
