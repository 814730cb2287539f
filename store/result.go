package store

import (
	"time"

	"github.com/hellodex/cexbridge/model"
)

const resultTTL = 24 * time.Hour

func resultKey(requestId string) string {
	return "swap_" + requestId
}

func SetSwapResult(requestId string, result *model.SwapResult) {
	CacheStore.Set(resultKey(requestId), result, resultTTL)
}

func GetSwapResult(requestId string) (*model.SwapResult, bool) {
	v, ok := CacheStore.Get(resultKey(requestId))
	if !ok {
		return nil, false
	}
	result, ok := v.(*model.SwapResult)
	return result, ok
}
