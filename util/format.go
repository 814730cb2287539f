package util

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

func ShiftLeft(num decimal.Decimal, decimals int32) decimal.Decimal {
	return num.Shift(-decimals)
}

func ShiftLeftStr(num string, decimals string) string {
	n, _ := decimal.NewFromString(num)
	d := cast.ToInt32(decimals)
	return n.Shift(-d).String()
}

func ShiftRightStr(num string, decimals string) string {
	n, _ := decimal.NewFromString(num)
	d := cast.ToInt32(decimals)
	return n.Shift(d).String()
}

func ShiftRight(num decimal.Decimal, decimals int32) decimal.Decimal {
	return num.Shift(decimals)
}

// ParseTokenAmountByDecimals converts a human-unit amount into the integer
// base-unit string the chain expects.
func ParseTokenAmountByDecimals(amount string, decimals int32) (string, error) {
	amountDecimal, err := decimal.NewFromString(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %v", err)
	}

	exp := decimal.New(1, decimals)
	result := amountDecimal.Mul(exp)

	return result.BigInt().String(), nil
}

// IsPositiveAmount reports whether s parses as a strictly positive decimal.
func IsPositiveAmount(s string) bool {
	n, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return n.IsPositive()
}
