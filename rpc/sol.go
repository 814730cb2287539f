package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	solrpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/hellodex/cexbridge/model"
	"github.com/hellodex/cexbridge/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	solDefaultDecimals = int32(9)
	solStatusInterval  = 2 * time.Second
	solStatusWait      = 2 * time.Minute
)

func (a *Agent) transferSOL(ctx context.Context, p TransferParams) (*model.TransferResult, error) {
	rpcUrl, err := a.rpcUrlFor(p.Chain, p.RpcUrl)
	if err != nil {
		return failResult("NO_RPC", err.Error()), err
	}

	privateKey, err := solana.PrivateKeyFromBase58(a.solSigningKey)
	if err != nil {
		err = &ConfigError{Reason: "invalid custody solana signing key"}
		return failResult("BAD_KEY", err.Error()), err
	}
	owner := privateKey.PublicKey()

	if owner.String() != p.From {
		err = &ConfigError{Reason: fmt.Sprintf("signing key derives %s, not custody address %s", owner.String(), p.From)}
		return failResult("KEY_MISMATCH", err.Error()), err
	}

	recipient, err := solana.PublicKeyFromBase58(p.To)
	if err != nil {
		return failResult("BAD_ADDRESS", err.Error()), err
	}

	client := solrpc.New(rpcUrl)

	var instructions []solana.Instruction
	if util.IsNativeCoin(p.TokenAddress) {
		lamports, err := baseUnits(p.Amount, solDefaultDecimals)
		if err != nil {
			return failResult("BAD_AMOUNT", err.Error()), err
		}
		instructions = append(instructions, system.NewTransferInstruction(lamports, owner, recipient).Build())
	} else {
		mint, err := solana.PublicKeyFromBase58(p.TokenAddress)
		if err != nil {
			return failResult("BAD_ADDRESS", err.Error()), err
		}

		decimals := mintDecimals(ctx, client, mint, p.Decimals)
		raw, err := baseUnits(p.Amount, decimals)
		if err != nil {
			return failResult("BAD_AMOUNT", err.Error()), err
		}

		source, _, err := solana.FindAssociatedTokenAddress(owner, mint)
		if err != nil {
			return failResult("ATA", err.Error()), err
		}
		dest, _, err := solana.FindAssociatedTokenAddress(recipient, mint)
		if err != nil {
			return failResult("ATA", err.Error()), err
		}

		instructions = append(instructions, token.NewTransferInstruction(raw, source, dest, owner, []solana.PublicKey{}).Build())
	}

	recent, err := client.GetLatestBlockhash(ctx, solrpc.CommitmentFinalized)
	if err != nil {
		return failResult("BLOCKHASH", err.Error()), err
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(owner))
	if err != nil {
		return failResult("BUILD_TX", err.Error()), err
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(owner) {
			return &privateKey
		}
		return nil
	})
	if err != nil {
		return failResult("SIGN", err.Error()), err
	}

	sig, err := client.SendTransactionWithOpts(ctx, tx, solrpc.TransactionOpts{
		PreflightCommitment: solrpc.CommitmentConfirmed,
	})
	if err != nil {
		return failResult("SEND", err.Error()), err
	}

	txHash := sig.String()
	transferLog().Str("tx", txHash).Msg("transaction broadcast, waiting for finalization")

	if err := waitFinalized(ctx, client, sig); err != nil {
		result := failResult("NOT_CONFIRMED", err.Error())
		result.TxHash = txHash
		return result, err
	}

	return &model.TransferResult{TxHash: txHash, Success: true}, nil
}

func baseUnits(amount string, decimals int32) (uint64, error) {
	n, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount: %v", err)
	}
	return n.Shift(decimals).BigInt().Uint64(), nil
}

// mintDecimals reads the decimals byte of the mint account, falling back to
// the caller value and finally 9.
func mintDecimals(ctx context.Context, client *solrpc.Client, mint solana.PublicKey, fallback int32) int32 {
	accountInfo, err := client.GetAccountInfo(ctx, mint)
	if err == nil && accountInfo.Value != nil {
		data := accountInfo.Value.Data.GetBinary()
		// decimals lives at byte offset 44 of the mint layout
		if len(data) > 44 {
			return int32(data[44])
		}
	}

	if fallback > 0 {
		return fallback
	}
	return solDefaultDecimals
}

func waitFinalized(ctx context.Context, client *solrpc.Client, sig solana.Signature) error {
	deadline := time.Now().Add(solStatusWait)

	for {
		out, err := client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(out.Value) > 0 && out.Value[0] != nil {
			status := out.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain", sig.String())
			}
			if status.ConfirmationStatus == solrpc.ConfirmationStatusFinalized ||
				status.ConfirmationStatus == solrpc.ConfirmationStatusConfirmed {
				log.Info().Str("tx", sig.String()).Msg("transaction confirmed")
				return nil
			}
		}

		if time.Now().After(deadline) {
			return ErrNotConfirmed
		}

		log.Debug().Str("tx", sig.String()).Msg("transaction not confirmed yet, retrying...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(solStatusInterval):
		}
	}
}
