package api

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hellodex/cexbridge/model"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// ErrWithdrawPollTimeout means the withdrawal never reached a terminal status
// inside the polling window. The caller decides whether that is fatal.
var ErrWithdrawPollTimeout = errors.New("withdrawal still pending after poll window")

// Withdraw requests an asset withdrawal and returns the exchange withdrawal
// id. It does not retry; callers own the retry policy.
func (c *Client) Withdraw(req model.WithdrawalRequest) (string, error) {
	requestBody := map[string]any{
		"currencyCode": req.CurrencyCode,
		"amount":       req.Amount,
		"address":      req.Address,
		"chainType":    req.ChainType,
	}
	if req.Tag != "" {
		requestBody["tag"] = req.Tag
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		log.Error().Err(err).Send()
		return "", err
	}

	data, err := c.post("/fi/v3/asset/doWithdraw", bodyBytes)
	if err != nil {
		return "", err
	}
	if err := checkCode(data); err != nil {
		return "", err
	}

	return gjson.GetBytes(data, "data.withdrawId").String(), nil
}

// WithdrawalHistoryFilter narrows the record-list lookup. Zero values are
// sent as empty so the exchange applies its defaults.
type WithdrawalHistoryFilter struct {
	CurrencyCode string
	StartDate    string
	EndDate      string
	FromId       string
	Limit        int
	ExternalId   string
	Label        string
}

func (c *Client) GetWithdrawalHistory(filter WithdrawalHistoryFilter) ([]model.WithdrawalRecord, error) {
	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	requestBody := map[string]any{
		"currencyCode": filter.CurrencyCode,
		"startDate":    filter.StartDate,
		"endDate":      filter.EndDate,
		"fromId":       filter.FromId,
		"limit":        limit,
		"externalId":   filter.ExternalId,
		"label":        filter.Label,
	}

	bodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		log.Error().Err(err).Send()
		return nil, err
	}

	data, err := c.post("/fi/v3/asset/withdraw/record/list", bodyBytes)
	if err != nil {
		return nil, err
	}
	if err := checkCode(data); err != nil {
		return nil, err
	}

	var records []model.WithdrawalRecord
	for _, item := range gjson.GetBytes(data, "data").Array() {
		records = append(records, model.WithdrawalRecord{
			WithdrawalId: item.Get("withdrawId").String(),
			CurrencyCode: item.Get("currencyCode").String(),
			Amount:       item.Get("amount").String(),
			Status:       model.WithdrawStatus(strings.ToUpper(item.Get("status").String())),
			OnchainTxId:  item.Get("txId").String(),
		})
	}

	return records, nil
}

// PollWithdrawalUntilTerminal polls the withdrawal record list until the
// withdrawal reaches a terminal status or maxWait passes. Transient lookup
// failures keep the poll alive; they never abort it.
func (c *Client) PollWithdrawalUntilTerminal(ctx context.Context, withdrawalId, currencyCode string, maxWait, pollInterval time.Duration) (*model.WithdrawalRecord, error) {
	deadline := time.Now().Add(maxWait)
	var last *model.WithdrawalRecord

	for {
		records, err := c.GetWithdrawalHistory(WithdrawalHistoryFilter{CurrencyCode: currencyCode})
		if err != nil {
			log.Warn().Err(err).Str("withdrawalId", withdrawalId).Msg("withdrawal history lookup failed, retrying...")
		} else {
			for i := range records {
				if records[i].WithdrawalId == withdrawalId {
					last = &records[i]
					break
				}
			}
			if last != nil && last.Status.IsTerminal() {
				return last, nil
			}
		}

		if time.Now().After(deadline) {
			return last, ErrWithdrawPollTimeout
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
