package store

import (
	"strings"
	"sync"
	"time"

	"github.com/hellodex/cexbridge/model"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var CacheStore = cache.New(5*time.Minute, 30*time.Minute)

var currencyGroup singleflight.Group

const (
	currencyTTL = 5 * time.Minute
	// cap on concurrent metadata lookups during batch enrichment
	enrichFanOut = 4
)

// CurrencyFetcher is what the cache needs from the exchange client.
type CurrencyFetcher interface {
	GetCurrency(currencyCode string) (*model.CurrencyMeta, error)
}

func currencyKey(code string) string {
	return "currency_" + strings.ToUpper(code)
}

// GetCurrencyMeta is a read-through lookup: last good value within TTL wins,
// concurrent misses for the same code collapse into one upstream call.
func GetCurrencyMeta(fetcher CurrencyFetcher, code string) (*model.CurrencyMeta, error) {
	key := currencyKey(code)
	if v, ok := CacheStore.Get(key); ok {
		return v.(*model.CurrencyMeta), nil
	}

	v, err, _ := currencyGroup.Do(key, func() (interface{}, error) {
		meta, err := fetcher.GetCurrency(code)
		if err != nil {
			return nil, err
		}
		CacheStore.Set(key, meta, currencyTTL)
		return meta, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.CurrencyMeta), nil
}

// EnrichCurrencies warms the cache for a batch of codes with bounded fan-out.
// Individual lookup failures are logged and skipped, not propagated.
func EnrichCurrencies(fetcher CurrencyFetcher, codes []string) map[string]*model.CurrencyMeta {
	out := make(map[string]*model.CurrencyMeta, len(codes))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(enrichFanOut)
	for _, code := range codes {
		g.Go(func() error {
			meta, err := GetCurrencyMeta(fetcher, code)
			if err != nil {
				log.Warn().Err(err).Str("currency", code).Msg("currency metadata lookup failed")
				return nil
			}
			mu.Lock()
			out[strings.ToUpper(code)] = meta
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}
