package queue

import (
	"context"
	"time"

	"github.com/hellodex/cexbridge/model"
	"github.com/hellodex/cexbridge/store"
	"github.com/rs/zerolog/log"
)

var swapQueue = make(chan *SwapPayload, 1024)

// Executor runs one swap; satisfied by the orchestrator.
type Executor interface {
	Execute(ctx context.Context, req model.SwapRequest) *model.SwapResult
}

type SwapPayload struct {
	RequestId string
	Request   model.SwapRequest
	Status    Event
	Result    *model.SwapResult
}

// AddProcessingSwapQueue enqueues a swap, retrying once briefly when the
// queue is full.
func AddProcessingSwapQueue(sp *SwapPayload) error {
	sp.Status = Processing

	select {
	case swapQueue <- sp:
		log.Info().
			Str("requestId", sp.RequestId).
			Msg("Successfully added swap to queue")
		return nil
	default:
		log.Warn().
			Str("requestId", sp.RequestId).
			Msg("Queue is full, retrying...")

		timer := time.NewTimer(100 * time.Millisecond)
		defer timer.Stop()

		select {
		case swapQueue <- sp:
			log.Info().
				Str("requestId", sp.RequestId).
				Msg("Successfully added swap to queue after retry")
			return nil
		case <-timer.C:
			log.Error().
				Str("requestId", sp.RequestId).
				Msg("Failed to add swap to queue after retry")
			return ErrQueueFull
		}
	}
}

func InitSwapConsumers(ctx context.Context, executor Executor) {
	for i := 0; i < workerNum; i++ {
		go func(workerID int) {
			HandleSwapQueue(ctx, workerID, executor)
		}(i)
	}
}

func HandleSwapQueue(ctx context.Context, workerID int, executor Executor) {
	log.Info().Msgf("Swap consumer %d started and watching queue", workerID)

	for {
		select {
		case sp := <-swapQueue:
			processSwap(ctx, executor, sp)

		case <-ctx.Done():
			log.Info().Msgf("Swap consumer %d shutting down due to context cancellation", workerID)
			return
		}
	}
}

func processSwap(ctx context.Context, executor Executor, sp *SwapPayload) {
	if sp == nil {
		return
	}

	result := executor.Execute(ctx, sp.Request)
	sp.Result = result
	if result.SwapResult {
		sp.Status = Success
	} else {
		sp.Status = Failed
	}

	// results stay readable through the status endpoint for a while
	store.SetSwapResult(sp.RequestId, result)

	log.Info().
		Str("requestId", sp.RequestId).
		Bool("success", result.SwapResult).
		Str("stage", result.Stage).
		Msg("async swap finished")
}
