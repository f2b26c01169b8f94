package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"valutatrade/internal/app"
	"valutatrade/internal/infra"
)

func main() {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		// The logger may not be set up yet; the user gets stderr either way.
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Interactive command loop
	if err := bootstrap.CLI.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		slog.Error("command loop failed", slog.Any("error", err))
		os.Exit(1)
	}

	snapshot := infra.GlobalMetrics.GetSnapshot()
	slog.Info("session finished",
		slog.Uint64("commands", snapshot.CommandsExecuted),
		slog.Uint64("trades", snapshot.TradesSettled),
		slog.Uint64("errors", snapshot.ErrorsTotal),
		slog.Uint64("provider_failures", snapshot.ProviderFailures),
		slog.Duration("avg_fetch_latency", snapshot.AvgFetchLatency),
	)
}
