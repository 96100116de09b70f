package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Elegora/internal/cli/commands"
	"Elegora/internal/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion(cfg)
		return
	}

	// Ctrl+C во время ожидания подтверждения отменяет только ожидание: транзакция уже отправлена
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if code := commands.Dispatch(ctx, cfg, flag.Args()); code != 0 {
		cancel()
		os.Exit(code)
	}
}

func printVersion(cfg *config.Config) {
	fmt.Printf("Elegora CLI\nVersion: %s\nBuild date: %s\nLedger: %s\n", version, buildDate, cfg.Ledger)
}
