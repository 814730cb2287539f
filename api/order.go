package api

import (
	"encoding/json"
	"net/url"

	"github.com/hellodex/cexbridge/model"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// CreateOrderParams carries one market leg. Exactly one of OrdQty (base
// amount, SELL) or OrdAmt (quote amount, BUY) is set.
type CreateOrderParams struct {
	Symbol   string
	Side     string
	OrdType  string
	OrdQty   string
	OrdAmt   string
	OrdPrice string
	ClOrdId  string
}

func (p *CreateOrderParams) quantity() string {
	if p.OrdQty != "" {
		return p.OrdQty
	}
	return p.OrdAmt
}

// CreateOrder places an order and returns it with the exchange order id set.
func (c *Client) CreateOrder(p CreateOrderParams) (*model.Order, error) {
	requestBody := map[string]any{
		"symbol":  p.Symbol,
		"side":    p.Side,
		"ordType": p.OrdType,
	}
	if p.OrdQty != "" {
		requestBody["ordQty"] = p.OrdQty
	}
	if p.OrdAmt != "" {
		requestBody["ordAmt"] = p.OrdAmt
	}
	if p.OrdPrice != "" {
		requestBody["ordPrice"] = p.OrdPrice
	}
	if p.ClOrdId != "" {
		requestBody["clOrdId"] = p.ClOrdId
	}

	// marshal once so the signed bytes are the transmitted bytes
	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		log.Error().Err(err).Send()
		return nil, err
	}

	data, err := c.post("/trade/order/place", bodyBytes)
	if err != nil {
		return nil, err
	}
	if err := checkCode(data); err != nil {
		return nil, err
	}

	ordId := gjson.GetBytes(data, "data.ordId").String()
	return &model.Order{
		Symbol:   p.Symbol,
		Side:     p.Side,
		OrdType:  p.OrdType,
		Quantity: p.quantity(),
		OrdId:    ordId,
	}, nil
}

// GetOrderInfo fetches an order enriched with its realized fills: execQty in
// the base asset, cumAmt in the quote asset.
func (c *Client) GetOrderInfo(ordId string) (*model.Order, error) {
	query := "ordId=" + url.QueryEscape(ordId)
	data, err := c.get("/trade/order/orderInfo", query)
	if err != nil {
		return nil, err
	}
	if err := checkCode(data); err != nil {
		return nil, err
	}

	info := gjson.GetBytes(data, "data")
	return &model.Order{
		Symbol:            info.Get("symbol").String(),
		Side:              info.Get("side").String(),
		OrdType:           info.Get("ordType").String(),
		Quantity:          info.Get("ordQty").String(),
		OrdId:             ordId,
		FilledQuantity:    info.Get("execQty").String(),
		FilledQuoteAmount: info.Get("cumAmt").String(),
	}, nil
}
