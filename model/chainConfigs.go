package model

import "strings"

// ChainConfig describes one supported chain: the exchange's chain-type
// vocabulary plus what the transfer agent needs to build transactions.
type ChainConfig struct {
	Chain             string `json:"chain"`
	ChainType         string `json:"chainType"`
	ChainId           int64  `json:"chainId"`
	Evm               bool   `json:"evm"`
	PriorityFloorGwei int64  `json:"priorityFloorGwei"`
}

var chainConfigs = map[string]ChainConfig{
	"ethereum": {Chain: "ethereum", ChainType: "ERC20", ChainId: 1, Evm: true},
	"bsc":      {Chain: "bsc", ChainType: "BEP20", ChainId: 56, Evm: true},
	// polygon withdrawals pass through by name; validators there ignore
	// anything under ~30 gwei priority fee
	"polygon": {Chain: "polygon", ChainType: "polygon", ChainId: 137, Evm: true, PriorityFloorGwei: 30},
	"tron":    {Chain: "tron", ChainType: "TRC20"},
	"solana":  {Chain: "solana", ChainType: "SOL"},
}

// ChainTypeFor maps a human chain name to the exchange chain-type identifier.
// Unmapped names pass through unchanged; an empty name defaults to ERC20.
func ChainTypeFor(chain string) string {
	if chain == "" {
		return "ERC20"
	}
	if cfg, ok := chainConfigs[strings.ToLower(chain)]; ok {
		return cfg.ChainType
	}
	return chain
}

// ChainConfigFor returns the chain table entry, ok=false for unknown chains.
func ChainConfigFor(chain string) (ChainConfig, bool) {
	cfg, ok := chainConfigs[strings.ToLower(chain)]
	return cfg, ok
}
