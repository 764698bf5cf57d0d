package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-insights/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	decimal.MarshalJSONWithoutQuotes = true

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
