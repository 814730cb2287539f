package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/hellodex/cexbridge/api"
	"github.com/hellodex/cexbridge/config"
	"github.com/hellodex/cexbridge/handler"
	"github.com/hellodex/cexbridge/queue"
	"github.com/hellodex/cexbridge/router"
	"github.com/hellodex/cexbridge/rpc"
	"github.com/hellodex/cexbridge/swap"
	"github.com/hellodex/cexbridge/util"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ = func() any {
	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return nil
}()

func main() {
	if util.IsDebug() {
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
		log.Debug().Msg("debug logging enabled")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	exchange := api.NewClient()
	agent := rpc.NewAgent()
	orchestrator := swap.NewOrchestrator(exchange, agent)

	go queue.InitSwapConsumers(ctx, orchestrator)

	h := handler.NewSwapHandler(orchestrator)
	c := handler.NewCurrencyHandler(exchange)
	listen := config.YmlConfig.Env.Listen
	if listen == "" {
		listen = ":8080"
	}

	log.Info().Str("listen", listen).Msg("swap service started, Ctrl+C to stop")
	go router.Serve(ctx, listen, router.New(h, c))

	<-ctx.Done()
	log.Info().Msg("swap service stopped")
}
