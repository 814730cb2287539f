package model

const (
	SideBuy  = "BUY"
	SideSell = "SELL"

	OrdTypeMarket = "MARKET"
)

// Order is one market leg against the quote asset. Quantity carries the base
// amount for SELL and the quote amount for BUY, mirroring the exchange's
// ordQty/ordAmt split. Fill fields are filled in by the orderInfo lookup.
type Order struct {
	Symbol            string `json:"symbol"`
	Side              string `json:"side"`
	OrdType           string `json:"ordType"`
	Quantity          string `json:"quantity"`
	OrdId             string `json:"ordId"`
	FilledQuantity    string `json:"filledQuantity,omitempty"`
	FilledQuoteAmount string `json:"filledQuoteAmount,omitempty"`
}
