package rpc

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/hellodex/cexbridge/model"
	"github.com/hellodex/cexbridge/util"
	"github.com/rs/zerolog/log"
)

const erc20ABI = `[{"constant":false,"inputs":[{"name":"_to","type":"address"},{"name":"_value","type":"uint256"}],"name":"transfer","outputs":[{"name":"","type":"bool"}],"type":"function"},{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"}]`

const (
	nativeGasLimit     = uint64(21000)
	tokenGasLimit      = uint64(100000)
	receiptInterval    = 3 * time.Second
	receiptWait        = 3 * time.Minute
	evmDefaultDecimals = int32(18)
)

func (a *Agent) transferEVM(ctx context.Context, cfg model.ChainConfig, p TransferParams) (*model.TransferResult, error) {
	rpcUrl, err := a.rpcUrlFor(p.Chain, p.RpcUrl)
	if err != nil {
		return failResult("NO_RPC", err.Error()), err
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(a.evmSigningKey, "0x"))
	if err != nil {
		err = &ConfigError{Reason: "invalid custody signing key"}
		return failResult("BAD_KEY", err.Error()), err
	}

	// ownership precondition: the signing key must actually control From
	derived := crypto.PubkeyToAddress(privateKey.PublicKey)
	if !strings.EqualFold(derived.Hex(), p.From) {
		err = &ConfigError{Reason: fmt.Sprintf("signing key derives %s, not custody address %s", derived.Hex(), p.From)}
		return failResult("KEY_MISMATCH", err.Error()), err
	}

	client, err := ethclient.DialContext(ctx, rpcUrl)
	if err != nil {
		return failResult("RPC_DIAL", err.Error()), err
	}
	defer client.Close()

	toAddress := common.HexToAddress(p.To)

	parsedABI, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return failResult("ABI", err.Error()), err
	}

	native := util.IsNativeCoin(p.TokenAddress)

	decimals := evmDefaultDecimals
	var tokenAddress common.Address
	if !native {
		tokenAddress = common.HexToAddress(p.TokenAddress)
		decimals = contractDecimals(ctx, client, parsedABI, tokenAddress, p.Decimals)
	}

	rawAmount, err := util.ParseTokenAmountByDecimals(p.Amount, decimals)
	if err != nil {
		return failResult("BAD_AMOUNT", err.Error()), err
	}
	amount, ok := new(big.Int).SetString(rawAmount, 10)
	if !ok {
		err = fmt.Errorf("invalid amount %s", p.Amount)
		return failResult("BAD_AMOUNT", err.Error()), err
	}

	nonce, err := client.PendingNonceAt(ctx, derived)
	if err != nil {
		return failResult("NONCE", err.Error()), err
	}

	var to common.Address
	var value *big.Int
	var data []byte
	gasLimit := nativeGasLimit
	if native {
		to = toAddress
		value = amount
	} else {
		data, err = parsedABI.Pack("transfer", toAddress, amount)
		if err != nil {
			return failResult("ABI_PACK", err.Error()), err
		}
		to = tokenAddress
		value = big.NewInt(0)
		gasLimit = tokenGasLimit
		msg := ethereum.CallMsg{From: derived, To: &tokenAddress, Data: data}
		if estimated, err := client.EstimateGas(ctx, msg); err == nil {
			gasLimit = estimated * 120 / 100
		}
	}

	chainID := big.NewInt(cfg.ChainId)
	tx, err := buildEVMTx(ctx, client, cfg, chainID, nonce, to, value, data, gasLimit)
	if err != nil {
		return failResult("BUILD_TX", err.Error()), err
	}

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), privateKey)
	if err != nil {
		return failResult("SIGN", err.Error()), err
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return failResult("SEND", err.Error()), err
	}

	txHash := signedTx.Hash().Hex()
	transferLog().Str("tx", txHash).Str("chain", p.Chain).Msg("transaction broadcast, waiting for receipt")

	if err := waitMined(ctx, client, signedTx.Hash()); err != nil {
		result := failResult("NOT_CONFIRMED", err.Error())
		if strings.Contains(err.Error(), "reverted") {
			result.ErrorCode = "REVERTED"
		}
		result.TxHash = txHash
		return result, err
	}

	return &model.TransferResult{TxHash: txHash, Success: true}, nil
}

// buildEVMTx prefers a dynamic-fee transaction, applying the chain's priority
// floor; when the node cannot quote a tip or base fee it falls back to legacy
// gas pricing.
func buildEVMTx(ctx context.Context, client *ethclient.Client, cfg model.ChainConfig, chainID *big.Int, nonce uint64, to common.Address, value *big.Int, data []byte, gasLimit uint64) (*types.Transaction, error) {
	tip, tipErr := client.SuggestGasTipCap(ctx)
	head, headErr := client.HeaderByNumber(ctx, nil)

	if tipErr != nil || headErr != nil || head.BaseFee == nil {
		gasPrice, err := client.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas price: %w", err)
		}
		return types.NewTransaction(nonce, to, value, gasLimit, gasPrice, data), nil
	}

	gasFeeCap, gasTipCap := evmFeeCaps(head.BaseFee, tip, cfg.PriorityFloorGwei)
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		To:        &to,
		Value:     value,
		Gas:       gasLimit,
		GasFeeCap: gasFeeCap,
		GasTipCap: gasTipCap,
		Data:      data,
	}), nil
}

// evmFeeCaps raises the suggested tip to the chain's floor and budgets the
// fee cap at twice the current base fee plus the tip.
func evmFeeCaps(baseFee, tip *big.Int, floorGwei int64) (gasFeeCap, gasTipCap *big.Int) {
	gasTipCap = new(big.Int).Set(tip)
	if floorGwei > 0 {
		floor := new(big.Int).Mul(big.NewInt(floorGwei), big.NewInt(1e9))
		if gasTipCap.Cmp(floor) < 0 {
			gasTipCap = floor
		}
	}

	gasFeeCap = new(big.Int).Mul(baseFee, big.NewInt(2))
	gasFeeCap.Add(gasFeeCap, gasTipCap)
	return gasFeeCap, gasTipCap
}

// waitMined polls for the receipt until the transaction is mined. A mined
// transaction with status 0 is a revert, not a confirmation.
func waitMined(ctx context.Context, client *ethclient.Client, hash common.Hash) error {
	deadline := time.Now().Add(receiptWait)

	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			if receipt.Status == types.ReceiptStatusSuccessful {
				log.Info().Str("tx", hash.Hex()).Msg("transaction confirmed")
				return nil
			}
			return fmt.Errorf("transaction %s reverted", hash.Hex())
		}

		if time.Now().After(deadline) {
			return ErrNotConfirmed
		}

		log.Debug().Str("tx", hash.Hex()).Msg("transaction not mined yet, retrying...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(receiptInterval):
		}
	}
}

// contractDecimals asks the token contract, falling back to the caller value
// and finally 18.
func contractDecimals(ctx context.Context, client *ethclient.Client, parsedABI abi.ABI, token common.Address, fallback int32) int32 {
	data, err := parsedABI.Pack("decimals")
	if err == nil {
		out, err := client.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
		if err == nil && len(out) > 0 {
			return int32(new(big.Int).SetBytes(out).Int64())
		}
	}

	if fallback > 0 {
		return fallback
	}
	return evmDefaultDecimals
}
