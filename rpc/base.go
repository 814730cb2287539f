package rpc

import (
	"context"
	"errors"
	"strings"

	"github.com/hellodex/cexbridge/config"
	"github.com/hellodex/cexbridge/logger"
	"github.com/hellodex/cexbridge/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNotConfirmed is a broadcast transaction that never confirmed inside the
// polling window. Callers may retry the whole transfer.
var ErrNotConfirmed = errors.New("transaction not confirmed in time")

// ConfigError is a non-retryable setup problem: wrong signing key, missing
// RPC URL, unsupported chain. Retrying cannot fix it.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func transferLog() *zerolog.Event {
	return logger.WithTransferCategory(log.Debug())
}

// TransferParams describes one custody-to-wallet movement. Amount is in human
// units; Decimals is only a fallback when the chain cannot report its own.
type TransferParams struct {
	Chain        string
	TokenAddress string
	From         string
	To           string
	Amount       string
	Decimals     int32
	RpcUrl       string
}

// Agent moves withdrawn funds from the custody address to the caller wallet.
type Agent struct {
	evmSigningKey string
	solSigningKey string
}

func NewAgent() *Agent {
	return &Agent{
		evmSigningKey: config.YmlConfig.Custody.SigningKey,
		solSigningKey: config.YmlConfig.Custody.SolSigningKey,
	}
}

// Transfer dispatches to the chain-specific implementation. The returned
// TransferResult is populated on failure too, so the orchestrator can project
// the error code and reason into its report.
func (a *Agent) Transfer(ctx context.Context, p TransferParams) (*model.TransferResult, error) {
	transferLog().Str("chain", p.Chain).Str("to", p.To).Str("amount", p.Amount).Send()

	if strings.EqualFold(p.Chain, "solana") {
		return a.transferSOL(ctx, p)
	}

	cfg, ok := model.ChainConfigFor(p.Chain)
	if !ok || !cfg.Evm {
		err := &ConfigError{Reason: "unsupported transfer chain: " + p.Chain}
		return failResult("UNSUPPORTED_CHAIN", err.Error()), err
	}
	return a.transferEVM(ctx, cfg, p)
}

func (a *Agent) rpcUrlFor(chain string, override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env, ok := config.YmlConfig.Chains[strings.ToLower(chain)]; ok && env.Rpc != "" {
		return env.Rpc, nil
	}
	return "", &ConfigError{Reason: "no RPC URL configured for chain " + chain}
}

func failResult(code, reason string) *model.TransferResult {
	return &model.TransferResult{
		Success:     false,
		ErrorCode:   code,
		ErrorReason: reason,
	}
}
