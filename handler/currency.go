package handler

import (
	"net/http"
	"strings"

	"github.com/hellodex/cexbridge/store"
)

type CurrencyHandler struct {
	fetcher store.CurrencyFetcher
}

func NewCurrencyHandler(fetcher store.CurrencyFetcher) *CurrencyHandler {
	return &CurrencyHandler{fetcher: fetcher}
}

// GetCurrency serves one currency's chain metadata through the read-through
// cache, so repeated lookups inside the TTL never reach the exchange.
func (h *CurrencyHandler) GetCurrency(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "currency code is required"})
		return
	}

	meta, err := store.GetCurrencyMeta(h.fetcher, code)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// ListCurrencies resolves a comma-separated batch of codes with bounded
// fan-out. Codes the exchange cannot resolve are absent from the response.
func (h *CurrencyHandler) ListCurrencies(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("codes")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "codes query parameter is required"})
		return
	}

	var codes []string
	for _, code := range strings.Split(raw, ",") {
		if code = strings.TrimSpace(code); code != "" {
			codes = append(codes, code)
		}
	}

	writeJSON(w, http.StatusOK, store.EnrichCurrencies(h.fetcher, codes))
}
