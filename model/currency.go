package model

// CurrencyChain is one chain a currency can move on, as reported by the
// exchange's currency metadata endpoint.
type CurrencyChain struct {
	ChainType       string `json:"chainType"`
	ContractAddress string `json:"contractAddress,omitempty"`
	WithdrawEnabled bool   `json:"withdrawEnabled"`
	MinWithdraw     string `json:"minWithdraw,omitempty"`
	WithdrawFee     string `json:"withdrawFee,omitempty"`
}

type CurrencyMeta struct {
	CurrencyCode string          `json:"currencyCode"`
	Name         string          `json:"name,omitempty"`
	Decimals     int32           `json:"decimals,omitempty"`
	Chains       []CurrencyChain `json:"chains,omitempty"`
}
