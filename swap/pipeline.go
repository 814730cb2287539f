package swap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hellodex/cexbridge/api"
	"github.com/hellodex/cexbridge/config"
	"github.com/hellodex/cexbridge/logger"
	"github.com/hellodex/cexbridge/model"
	"github.com/hellodex/cexbridge/retry"
	"github.com/hellodex/cexbridge/rpc"
	"github.com/hellodex/cexbridge/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Exchange is the trading/withdrawal surface the pipeline needs.
type Exchange interface {
	CreateOrder(p api.CreateOrderParams) (*model.Order, error)
	GetOrderInfo(ordId string) (*model.Order, error)
	Withdraw(req model.WithdrawalRequest) (string, error)
	PollWithdrawalUntilTerminal(ctx context.Context, withdrawalId, currencyCode string, maxWait, pollInterval time.Duration) (*model.WithdrawalRecord, error)
}

// Transferer is the on-chain leg.
type Transferer interface {
	Transfer(ctx context.Context, p rpc.TransferParams) (*model.TransferResult, error)
}

// Orchestrator runs the six swap stages strictly in order and projects
// per-stage failures into the SwapResult. All state is per-request.
type Orchestrator struct {
	exchange       Exchange
	agent          Transferer
	custodyAddress string
	quoteAsset     string

	feePrefundPolicy retry.Policy
	transferPolicy   retry.Policy

	withdrawSettleDelay  time.Duration
	withdrawWait         time.Duration
	withdrawPollInterval time.Duration
}

func NewOrchestrator(exchange Exchange, agent Transferer) *Orchestrator {
	return &Orchestrator{
		exchange:       exchange,
		agent:          agent,
		custodyAddress: config.YmlConfig.Custody.WithdrawAddress,
		quoteAsset:     config.YmlConfig.Env.QuoteAsset,

		feePrefundPolicy: retry.Policy{
			Interval:   15 * time.Second,
			MaxElapsed: 33 * time.Minute,
			Retryable:  api.IsInsufficientLiquidity,
		},
		transferPolicy: retry.Policy{
			Interval:   15 * time.Second,
			MaxElapsed: 3 * time.Hour,
			// only a setup problem is unfixable by waiting
			Retryable: func(err error) bool { return !rpc.IsConfigError(err) },
		},

		withdrawSettleDelay:  10 * time.Second,
		withdrawWait:         3 * time.Minute,
		withdrawPollInterval: 10 * time.Second,
	}
}

func swapLog() *zerolog.Event {
	return logger.WithSwapCategory(log.Info())
}

func (o *Orchestrator) isQuote(symbol string) bool {
	return strings.EqualFold(symbol, o.quoteAsset)
}

func (o *Orchestrator) pairFor(asset string) string {
	return strings.ToUpper(asset) + strings.ToUpper(o.quoteAsset)
}

// Execute runs one swap to completion. It always returns a SwapResult; the
// result, never a panic or bare error, is the contract with callers.
func (o *Orchestrator) Execute(ctx context.Context, req model.SwapRequest) *model.SwapResult {
	result := &model.SwapResult{}

	if req.DestWalletAddress == "" {
		return o.fail(result, StageValidation, &ValidationError{Reason: "destWalletAddress is required"})
	}
	if !util.IsPositiveAmount(req.InputAmount) {
		return o.fail(result, StageValidation, &ValidationError{Reason: "inputAmount must be a positive number"})
	}

	swapLog().Str("source", req.SourceSymbol).Str("dest", req.DestSymbol).
		Str("amount", req.InputAmount).Str("wallet", req.DestWalletAddress).Msg("swap accepted")

	// 1. optional gas pre-funding of the destination chain
	if req.FeeQuoteAmount != "" {
		if err := o.feePrefund(ctx, req, result); err != nil {
			return o.fail(result, StageFeePrefund, err)
		}
	}

	// 2. sell leg: source asset -> quote budget
	quoteBudget := req.InputAmount
	if !o.isQuote(req.SourceSymbol) {
		budget, err := o.sellLeg(req, result)
		if err != nil {
			return o.fail(result, StageSellLeg, err)
		}
		quoteBudget = budget
	}

	// 3. buy leg: quote budget -> destination asset
	withdrawAmount := quoteBudget
	if !o.isQuote(req.DestSymbol) {
		amount, err := o.buyLeg(req, result, quoteBudget)
		if err != nil {
			return o.fail(result, StageBuyLeg, err)
		}
		withdrawAmount = amount
	}

	// 4. withdraw the destination asset to the custody address
	withdrawalId, err := o.exchange.Withdraw(model.WithdrawalRequest{
		CurrencyCode: strings.ToUpper(req.DestSymbol),
		Amount:       withdrawAmount,
		Address:      o.custodyAddress,
		ChainType:    model.ChainTypeFor(req.DestChain),
	})
	if err != nil {
		return o.fail(result, StageWithdraw, err)
	}
	if withdrawalId == "" {
		return o.fail(result, StageWithdraw, ErrNoWithdrawalId)
	}

	result.Withdrawal = &model.WithdrawalRecord{
		WithdrawalId: withdrawalId,
		CurrencyCode: strings.ToUpper(req.DestSymbol),
		Amount:       withdrawAmount,
		Status:       model.WithdrawNotReviewed,
	}

	// 5. bounded wait for the withdrawal; only an explicit terminal failure
	// aborts, a timeout proceeds optimistically
	if err := o.withdrawalWait(ctx, result); err != nil {
		return o.fail(result, StageWithdrawalWait, err)
	}

	// 6. on-chain transfer, custody -> caller wallet
	return o.transfer(ctx, req, result, withdrawAmount)
}

func (o *Orchestrator) feePrefund(ctx context.Context, req model.SwapRequest, result *model.SwapResult) error {
	order, err := retry.Do(ctx, o.feePrefundPolicy, func() (*model.Order, error) {
		return o.exchange.CreateOrder(api.CreateOrderParams{
			Symbol:  o.pairFor(req.FeeNativeSymbol),
			Side:    model.SideBuy,
			OrdType: model.OrdTypeMarket,
			OrdAmt:  req.FeeQuoteAmount,
		})
	})
	if err != nil {
		if retry.IsDeadline(err) {
			return fmt.Errorf("%w: %v", ErrFeePrefundTimeout, err)
		}
		return err
	}

	info, err := o.exchange.GetOrderInfo(order.OrdId)
	if err != nil {
		return err
	}
	result.Orders = append(result.Orders, *info)

	// fire and forget: the fee withdrawal is requested, never awaited
	_, err = o.exchange.Withdraw(model.WithdrawalRequest{
		CurrencyCode: strings.ToUpper(req.FeeNativeSymbol),
		Amount:       info.FilledQuantity,
		Address:      o.custodyAddress,
		ChainType:    model.ChainTypeFor(req.DestChain),
	})
	if err != nil {
		log.Warn().Err(err).Str("symbol", req.FeeNativeSymbol).Msg("fee withdrawal request failed, continuing")
	}

	return nil
}

func (o *Orchestrator) sellLeg(req model.SwapRequest, result *model.SwapResult) (string, error) {
	order, err := o.exchange.CreateOrder(api.CreateOrderParams{
		Symbol:  o.pairFor(req.SourceSymbol),
		Side:    model.SideSell,
		OrdType: model.OrdTypeMarket,
		OrdQty:  req.InputAmount,
	})
	if err != nil {
		return "", err
	}

	info, err := o.exchange.GetOrderInfo(order.OrdId)
	if err != nil {
		return "", err
	}
	result.Orders = append(result.Orders, *info)

	if info.FilledQuoteAmount == "" {
		return "", fmt.Errorf("sell order %s reported no quote fill", order.OrdId)
	}
	return info.FilledQuoteAmount, nil
}

func (o *Orchestrator) buyLeg(req model.SwapRequest, result *model.SwapResult, quoteBudget string) (string, error) {
	if quoteBudget == "" {
		return "", &ValidationError{Reason: "no quote budget available for buy leg"}
	}

	order, err := o.exchange.CreateOrder(api.CreateOrderParams{
		Symbol:  o.pairFor(req.DestSymbol),
		Side:    model.SideBuy,
		OrdType: model.OrdTypeMarket,
		OrdAmt:  quoteBudget,
	})
	if err != nil {
		return "", err
	}

	info, err := o.exchange.GetOrderInfo(order.OrdId)
	if err != nil {
		return "", err
	}
	result.Orders = append(result.Orders, *info)

	if info.FilledQuantity == "" {
		return "", fmt.Errorf("buy order %s reported no fill quantity", order.OrdId)
	}
	return info.FilledQuantity, nil
}

func (o *Orchestrator) withdrawalWait(ctx context.Context, result *model.SwapResult) error {
	select {
	case <-ctx.Done():
	case <-time.After(o.withdrawSettleDelay):
	}

	record, err := o.exchange.PollWithdrawalUntilTerminal(ctx,
		result.Withdrawal.WithdrawalId, result.Withdrawal.CurrencyCode,
		o.withdrawWait, o.withdrawPollInterval)
	if record != nil {
		result.Withdrawal = record
	}
	if err != nil {
		// an id exists, so a timeout or a flaky lookup is not fatal
		log.Warn().Err(err).Str("withdrawalId", result.Withdrawal.WithdrawalId).
			Msg("withdrawal not terminal in time, proceeding optimistically")
		return nil
	}

	if record.Status.IsTerminalFailure() {
		return fmt.Errorf("withdrawal %s ended in status %s", record.WithdrawalId, record.Status)
	}
	return nil
}

func (o *Orchestrator) transfer(ctx context.Context, req model.SwapRequest, result *model.SwapResult, amount string) *model.SwapResult {
	var last *model.TransferResult
	transferResult, err := retry.Do(ctx, o.transferPolicy, func() (*model.TransferResult, error) {
		tr, err := o.agent.Transfer(ctx, rpc.TransferParams{
			Chain:        req.DestChain,
			TokenAddress: req.DestTokenAddress,
			From:         o.custodyAddress,
			To:           req.DestWalletAddress,
			Amount:       amount,
			Decimals:     req.DestTokenDecimals,
			RpcUrl:       req.DestTokenRpcUrl,
		})
		if tr != nil {
			last = tr
		}
		return tr, err
	})
	if err != nil {
		result.Transfer = last
		if retry.IsDeadline(err) {
			// trading and withdrawal already committed; report them intact
			result.SwapResult = false
			result.Stage = StageTransfer
			result.TransferPending = true
			result.Message = fmt.Sprintf("trading and withdrawal succeeded, on-chain transfer still failing after retry window: %v", err)
			return result
		}
		return o.fail(result, StageTransfer, err)
	}

	result.Transfer = transferResult
	result.SwapResult = true
	result.Message = "swap completed"
	if scan := util.GetChainScanUrl(req.DestChain, transferResult.TxHash); scan != "" {
		result.Message = "swap completed: " + scan
	}

	swapLog().Str("tx", transferResult.TxHash).Msg("swap completed")
	return result
}

func (o *Orchestrator) fail(result *model.SwapResult, stage string, err error) *model.SwapResult {
	log.Error().Err(err).Func(logger.WithCategory(logger.CategorySwap)).Str("stage", stage).Send()

	result.SwapResult = false
	result.Stage = stage
	result.Message = fmt.Sprintf("%s failed: %v", stage, err)
	return result
}
