package api

import (
	"net/url"

	"github.com/hellodex/cexbridge/model"
	"github.com/tidwall/gjson"
)

// GetCurrency fetches the exchange's chain metadata for one currency code.
func (c *Client) GetCurrency(currencyCode string) (*model.CurrencyMeta, error) {
	query := "currencyCode=" + url.QueryEscape(currencyCode)
	data, err := c.get("/fi/v1/common/currency", query)
	if err != nil {
		return nil, err
	}
	if err := checkCode(data); err != nil {
		return nil, err
	}

	info := gjson.GetBytes(data, "data")
	meta := &model.CurrencyMeta{
		CurrencyCode: info.Get("currencyCode").String(),
		Name:         info.Get("name").String(),
		Decimals:     int32(info.Get("decimals").Int()),
	}
	if meta.CurrencyCode == "" {
		meta.CurrencyCode = currencyCode
	}

	for _, chain := range info.Get("chains").Array() {
		meta.Chains = append(meta.Chains, model.CurrencyChain{
			ChainType:       chain.Get("chainType").String(),
			ContractAddress: chain.Get("contractAddress").String(),
			WithdrawEnabled: chain.Get("withdrawEnabled").Bool(),
			MinWithdraw:     chain.Get("minWithdraw").String(),
			WithdrawFee:     chain.Get("withdrawFee").String(),
		})
	}

	return meta, nil
}
