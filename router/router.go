package router

import (
	"context"
	"net/http"
	"time"

	"github.com/hellodex/cexbridge/handler"
	"github.com/rs/zerolog/log"
)

func New(h *handler.SwapHandler, c *handler.CurrencyHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/swap", h.ExecuteSwap)
	mux.HandleFunc("POST /api/v1/swap/async", h.ExecuteSwapAsync)
	mux.HandleFunc("GET /api/v1/swap/{id}", h.SwapStatus)
	mux.HandleFunc("GET /api/v1/currency/{code}", c.GetCurrency)
	mux.HandleFunc("GET /api/v1/currencies", c.ListCurrencies)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Serve blocks until ctx is cancelled, then drains in-flight requests.
func Serve(ctx context.Context, addr string, mux *http.ServeMux) {
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Send()
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Send()
	}
}
