package model

// TransferResult is the outcome of the final on-chain leg.
type TransferResult struct {
	TxHash      string `json:"txHash,omitempty"`
	Success     bool   `json:"success"`
	ErrorCode   string `json:"errorCode,omitempty"`
	ErrorReason string `json:"errorReason,omitempty"`
}
