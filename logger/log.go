package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const (
	CategoryField = "category"
)

const (
	CategoryExchange = "exchange"
	CategorySwap     = "swap"
	CategoryWithdraw = "withdraw"
	CategoryTransfer = "transfer"
	CategoryNetwork  = "network"
)

func WithCategory(category string) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Str(CategoryField, category)
	}
}

func WithSwapCategory(e *zerolog.Event) *zerolog.Event {
	return e.Str(CategoryField, CategorySwap)
}

func WithTransferCategory(e *zerolog.Event) *zerolog.Event {
	return e.Str(CategoryField, CategoryTransfer)
}

func StdLogger() *zerolog.Logger {
	outPut := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    false,
		TimeFormat: time.DateTime,
		FormatFieldName: func(i interface{}) string {
			return fmt.Sprintf("%s: ", i)
		},
		FieldsOrder: []string{"endpoint", "request", "response"},
	}
	log := zerolog.New(outPut).With().Timestamp().Logger()

	return &log
}

// NewStdLog audit-logs one exchange round trip, request and response verbatim.
func NewStdLog(endpoint string, req []byte, result []byte) {
	log := StdLogger()
	log.Info().Str("endpoint", endpoint).RawJSON("request", req).RawJSON("response", result).Send()
}
