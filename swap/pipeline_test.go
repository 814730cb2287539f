package swap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hellodex/cexbridge/api"
	"github.com/hellodex/cexbridge/config"
	"github.com/hellodex/cexbridge/model"
	"github.com/hellodex/cexbridge/rpc"
	"github.com/stretchr/testify/assert"
)

const custodyAddress = "0x1111111111111111111111111111111111111111"

type fakeExchange struct {
	createOrder func(p api.CreateOrderParams) (*model.Order, error)
	orderInfo   func(ordId string) (*model.Order, error)
	withdraw    func(req model.WithdrawalRequest) (string, error)
	poll        func(withdrawalId string) (*model.WithdrawalRecord, error)

	placed      []api.CreateOrderParams
	withdrawals []model.WithdrawalRequest
}

func (f *fakeExchange) CreateOrder(p api.CreateOrderParams) (*model.Order, error) {
	f.placed = append(f.placed, p)
	if f.createOrder != nil {
		return f.createOrder(p)
	}
	return &model.Order{Symbol: p.Symbol, Side: p.Side, OrdType: p.OrdType, OrdId: "ord-1"}, nil
}

func (f *fakeExchange) GetOrderInfo(ordId string) (*model.Order, error) {
	if f.orderInfo != nil {
		return f.orderInfo(ordId)
	}
	return &model.Order{OrdId: ordId, FilledQuantity: "1", FilledQuoteAmount: "1"}, nil
}

func (f *fakeExchange) Withdraw(req model.WithdrawalRequest) (string, error) {
	f.withdrawals = append(f.withdrawals, req)
	if f.withdraw != nil {
		return f.withdraw(req)
	}
	return "wd-1", nil
}

func (f *fakeExchange) PollWithdrawalUntilTerminal(ctx context.Context, withdrawalId, currencyCode string, maxWait, pollInterval time.Duration) (*model.WithdrawalRecord, error) {
	if f.poll != nil {
		return f.poll(withdrawalId)
	}
	return &model.WithdrawalRecord{WithdrawalId: withdrawalId, CurrencyCode: currencyCode, Status: model.WithdrawCompleted}, nil
}

type fakeAgent struct {
	transfer func(p rpc.TransferParams) (*model.TransferResult, error)
	calls    []rpc.TransferParams
}

func (f *fakeAgent) Transfer(ctx context.Context, p rpc.TransferParams) (*model.TransferResult, error) {
	f.calls = append(f.calls, p)
	if f.transfer != nil {
		return f.transfer(p)
	}
	return &model.TransferResult{TxHash: "0xdeadbeef", Success: true}, nil
}

func newTestOrchestrator(exchange *fakeExchange, agent *fakeAgent) *Orchestrator {
	config.YmlConfig.Custody.WithdrawAddress = custodyAddress
	o := NewOrchestrator(exchange, agent)
	o.withdrawSettleDelay = 0
	o.withdrawWait = 20 * time.Millisecond
	o.withdrawPollInterval = time.Millisecond
	o.feePrefundPolicy.Interval = time.Millisecond
	o.feePrefundPolicy.MaxElapsed = 50 * time.Millisecond
	o.transferPolicy.Interval = time.Millisecond
	o.transferPolicy.MaxElapsed = 50 * time.Millisecond
	return o
}

func TestSwapQuoteSourceSkipsSellLeg(t *testing.T) {
	exchange := &fakeExchange{
		orderInfo: func(ordId string) (*model.Order, error) {
			return &model.Order{OrdId: ordId, FilledQuantity: "0.00154", FilledQuoteAmount: "99.97"}, nil
		},
	}
	agent := &fakeAgent{}
	o := newTestOrchestrator(exchange, agent)

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "USDT",
		DestSymbol:        "BTC",
		InputAmount:       "100",
		DestChain:         "ethereum",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.True(t, result.SwapResult)

	// only the buy leg was placed, spending the full input as quote budget
	assert.Len(t, exchange.placed, 1)
	assert.Equal(t, "BTCUSDT", exchange.placed[0].Symbol)
	assert.Equal(t, model.SideBuy, exchange.placed[0].Side)
	assert.Equal(t, "100", exchange.placed[0].OrdAmt)
	assert.Empty(t, exchange.placed[0].OrdQty)

	// the realized BTC fill is withdrawn to custody, then moved on-chain
	assert.Len(t, exchange.withdrawals, 1)
	assert.Equal(t, "BTC", exchange.withdrawals[0].CurrencyCode)
	assert.Equal(t, "0.00154", exchange.withdrawals[0].Amount)
	assert.Equal(t, custodyAddress, exchange.withdrawals[0].Address)
	assert.Equal(t, "ERC20", exchange.withdrawals[0].ChainType)

	assert.Len(t, agent.calls, 1)
	assert.Equal(t, custodyAddress, agent.calls[0].From)
	assert.Equal(t, "0xAB00000000000000000000000000000000000001", agent.calls[0].To)
	assert.Equal(t, "0.00154", agent.calls[0].Amount)
}

func TestSwapQuoteDestSkipsBuyLeg(t *testing.T) {
	exchange := &fakeExchange{
		orderInfo: func(ordId string) (*model.Order, error) {
			return &model.Order{OrdId: ordId, FilledQuantity: "0.5", FilledQuoteAmount: "1500.12"}, nil
		},
	}
	agent := &fakeAgent{}
	o := newTestOrchestrator(exchange, agent)

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "ETH",
		DestSymbol:        "USDT",
		InputAmount:       "0.5",
		DestChain:         "bsc",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.True(t, result.SwapResult)

	assert.Len(t, exchange.placed, 1)
	assert.Equal(t, "ETHUSDT", exchange.placed[0].Symbol)
	assert.Equal(t, model.SideSell, exchange.placed[0].Side)
	assert.Equal(t, "0.5", exchange.placed[0].OrdQty)

	// withdrawal amount is the realized quote from the sell fill
	assert.Equal(t, "1500.12", exchange.withdrawals[0].Amount)
	assert.Equal(t, "BEP20", exchange.withdrawals[0].ChainType)
}

func TestSwapMissingWalletIsValidation(t *testing.T) {
	exchange := &fakeExchange{}
	o := newTestOrchestrator(exchange, &fakeAgent{})

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol: "USDT",
		DestSymbol:   "BTC",
		InputAmount:  "100",
	})

	assert.False(t, result.SwapResult)
	assert.Equal(t, StageValidation, result.Stage)
	assert.Empty(t, exchange.placed)
}

func TestSwapWithdrawalWithoutIdAborts(t *testing.T) {
	exchange := &fakeExchange{
		withdraw: func(req model.WithdrawalRequest) (string, error) { return "", nil },
	}
	agent := &fakeAgent{}
	o := newTestOrchestrator(exchange, agent)

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "USDT",
		DestSymbol:        "BTC",
		InputAmount:       "100",
		DestChain:         "ethereum",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.False(t, result.SwapResult)
	assert.Equal(t, StageWithdraw, result.Stage)
	assert.Empty(t, agent.calls, "no transfer may be attempted without a withdrawal id")
}

func TestSwapTransferDeadlineIsPartialSuccess(t *testing.T) {
	exchange := &fakeExchange{
		orderInfo: func(ordId string) (*model.Order, error) {
			return &model.Order{OrdId: ordId, FilledQuantity: "0.00154", FilledQuoteAmount: "99.97"}, nil
		},
	}
	agent := &fakeAgent{
		transfer: func(p rpc.TransferParams) (*model.TransferResult, error) {
			return &model.TransferResult{Success: false, ErrorCode: "RPC_DIAL", ErrorReason: "connection refused"},
				errors.New("connection refused")
		},
	}
	o := newTestOrchestrator(exchange, agent)

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "USDT",
		DestSymbol:        "BTC",
		InputAmount:       "100",
		DestChain:         "ethereum",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.False(t, result.SwapResult)
	assert.Equal(t, StageTransfer, result.Stage)
	assert.True(t, result.TransferPending)

	// prior side effects stay visible for reconciliation
	assert.NotEmpty(t, result.Orders)
	assert.NotNil(t, result.Withdrawal)
	assert.NotNil(t, result.Transfer)
	assert.Equal(t, "RPC_DIAL", result.Transfer.ErrorCode)
	assert.Greater(t, len(agent.calls), 1, "transfer must have been retried")
}

func TestSwapTransferConfigErrorIsFatal(t *testing.T) {
	exchange := &fakeExchange{}
	agent := &fakeAgent{
		transfer: func(p rpc.TransferParams) (*model.TransferResult, error) {
			err := &rpc.ConfigError{Reason: "signing key mismatch"}
			return &model.TransferResult{Success: false, ErrorCode: "KEY_MISMATCH", ErrorReason: err.Error()}, err
		},
	}
	o := newTestOrchestrator(exchange, agent)

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "USDT",
		DestSymbol:        "USDT",
		InputAmount:       "100",
		DestChain:         "ethereum",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.False(t, result.SwapResult)
	assert.Equal(t, StageTransfer, result.Stage)
	assert.False(t, result.TransferPending)
	assert.Len(t, agent.calls, 1, "a configuration error must not be retried")
}

func TestSwapTransferRecoversWithinBudget(t *testing.T) {
	failures := 3
	agent := &fakeAgent{
		transfer: func(p rpc.TransferParams) (*model.TransferResult, error) {
			if failures > 0 {
				failures--
				return nil, errors.New("nonce too low")
			}
			return &model.TransferResult{TxHash: "0xfeed", Success: true}, nil
		},
	}
	o := newTestOrchestrator(&fakeExchange{}, agent)

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "USDT",
		DestSymbol:        "USDT",
		InputAmount:       "100",
		DestChain:         "ethereum",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.True(t, result.SwapResult)
	assert.Equal(t, "0xfeed", result.Transfer.TxHash)
	assert.Len(t, agent.calls, 4)
}

func TestFeePrefundRetriesOnlyOnLiquidity(t *testing.T) {
	t.Run("liquidity_retries_then_fills", func(t *testing.T) {
		attempts := 0
		exchange := &fakeExchange{
			createOrder: func(p api.CreateOrderParams) (*model.Order, error) {
				if p.Symbol == "BNBUSDT" {
					attempts++
					if attempts < 3 {
						return nil, &api.ExchangeRejected{Code: api.LiquidityInsufficientCode, Message: "Insufficient quantity available"}
					}
				}
				return &model.Order{Symbol: p.Symbol, Side: p.Side, OrdId: "ord-fee"}, nil
			},
			orderInfo: func(ordId string) (*model.Order, error) {
				return &model.Order{OrdId: ordId, FilledQuantity: "0.02", FilledQuoteAmount: "10"}, nil
			},
		}
		o := newTestOrchestrator(exchange, &fakeAgent{})

		result := o.Execute(context.Background(), model.SwapRequest{
			SourceSymbol:      "USDT",
			DestSymbol:        "USDT",
			InputAmount:       "100",
			DestChain:         "bsc",
			DestWalletAddress: "0xAB00000000000000000000000000000000000001",
			FeeQuoteAmount:    "10",
			FeeNativeSymbol:   "BNB",
		})

		assert.True(t, result.SwapResult)
		assert.Equal(t, 3, attempts)

		// the filled native quantity was withdrawn to custody, fire and forget
		assert.Equal(t, "BNB", exchange.withdrawals[0].CurrencyCode)
		assert.Equal(t, "0.02", exchange.withdrawals[0].Amount)
	})

	t.Run("other_rejection_is_fatal", func(t *testing.T) {
		attempts := 0
		exchange := &fakeExchange{
			createOrder: func(p api.CreateOrderParams) (*model.Order, error) {
				attempts++
				return nil, &api.ExchangeRejected{Code: "1012", Message: "bad symbol"}
			},
		}
		o := newTestOrchestrator(exchange, &fakeAgent{})

		result := o.Execute(context.Background(), model.SwapRequest{
			SourceSymbol:      "USDT",
			DestSymbol:        "USDT",
			InputAmount:       "100",
			DestChain:         "bsc",
			DestWalletAddress: "0xAB00000000000000000000000000000000000001",
			FeeQuoteAmount:    "10",
			FeeNativeSymbol:   "BNB",
		})

		assert.False(t, result.SwapResult)
		assert.Equal(t, StageFeePrefund, result.Stage)
		assert.Equal(t, 1, attempts)
	})

	t.Run("liquidity_forever_is_timeout", func(t *testing.T) {
		exchange := &fakeExchange{
			createOrder: func(p api.CreateOrderParams) (*model.Order, error) {
				return nil, &api.ExchangeRejected{Code: api.LiquidityInsufficientCode, Message: "Insufficient quantity available"}
			},
		}
		o := newTestOrchestrator(exchange, &fakeAgent{})

		result := o.Execute(context.Background(), model.SwapRequest{
			SourceSymbol:      "USDT",
			DestSymbol:        "USDT",
			InputAmount:       "100",
			DestChain:         "bsc",
			DestWalletAddress: "0xAB00000000000000000000000000000000000001",
			FeeQuoteAmount:    "10",
			FeeNativeSymbol:   "BNB",
		})

		assert.False(t, result.SwapResult)
		assert.Equal(t, StageFeePrefund, result.Stage)
		assert.Contains(t, result.Message, ErrFeePrefundTimeout.Error())
	})
}

func TestWithdrawalWaitOutcomes(t *testing.T) {
	t.Run("timeout_proceeds_optimistically", func(t *testing.T) {
		exchange := &fakeExchange{
			poll: func(withdrawalId string) (*model.WithdrawalRecord, error) {
				return nil, api.ErrWithdrawPollTimeout
			},
		}
		agent := &fakeAgent{}
		o := newTestOrchestrator(exchange, agent)

		result := o.Execute(context.Background(), model.SwapRequest{
			SourceSymbol:      "USDT",
			DestSymbol:        "USDT",
			InputAmount:       "100",
			DestChain:         "ethereum",
			DestWalletAddress: "0xAB00000000000000000000000000000000000001",
		})

		assert.True(t, result.SwapResult)
		assert.Len(t, agent.calls, 1)
	})

	t.Run("terminal_failure_aborts", func(t *testing.T) {
		exchange := &fakeExchange{
			poll: func(withdrawalId string) (*model.WithdrawalRecord, error) {
				return &model.WithdrawalRecord{WithdrawalId: withdrawalId, Status: model.WithdrawPaymentFailed}, nil
			},
		}
		agent := &fakeAgent{}
		o := newTestOrchestrator(exchange, agent)

		result := o.Execute(context.Background(), model.SwapRequest{
			SourceSymbol:      "USDT",
			DestSymbol:        "USDT",
			InputAmount:       "100",
			DestChain:         "ethereum",
			DestWalletAddress: "0xAB00000000000000000000000000000000000001",
		})

		assert.False(t, result.SwapResult)
		assert.Equal(t, StageWithdrawalWait, result.Stage)
		assert.Contains(t, result.Message, string(model.WithdrawPaymentFailed))
		assert.Empty(t, agent.calls)
	})
}

func TestSellRejectionReportsStageAndDetail(t *testing.T) {
	exchange := &fakeExchange{
		createOrder: func(p api.CreateOrderParams) (*model.Order, error) {
			return nil, &api.ExchangeRejected{Code: "2001", Message: "market closed"}
		},
	}
	o := newTestOrchestrator(exchange, &fakeAgent{})

	result := o.Execute(context.Background(), model.SwapRequest{
		SourceSymbol:      "ETH",
		DestSymbol:        "BTC",
		InputAmount:       "0.5",
		DestChain:         "ethereum",
		DestWalletAddress: "0xAB00000000000000000000000000000000000001",
	})

	assert.False(t, result.SwapResult)
	assert.Equal(t, StageSellLeg, result.Stage)
	assert.Contains(t, result.Message, "2001")
	assert.Contains(t, result.Message, "market closed")
}
