package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"Elegora/internal/amount"
	"Elegora/internal/config"
	"Elegora/internal/handlers"
	"Elegora/internal/middleware"
	"Elegora/internal/repo"
	"Elegora/internal/service"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Debugw("Failed to sync logger", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fee, err := amount.ToBaseUnits(cfg.ListingFee)
	if err != nil {
		sugar.Fatalw("invalid listing fee", "value", cfg.ListingFee, "error", err)
	}
	initialBalance, err := amount.ToBaseUnits(cfg.InitialBalance)
	if err != nil {
		sugar.Fatalw("invalid initial balance", "value", cfg.InitialBalance, "error", err)
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userService := service.NewUserService(repo.NewUserRepository(gormDB), initialBalance)
	ledgerService := service.NewLedgerService(repo.NewLedgerRepository(gormDB), fee, 0, sugar)
	if err := ledgerService.Recover(ctx); err != nil {
		sugar.Fatalw("failed to restore ledger state", "error", err)
	}
	go ledgerService.Run(ctx, cfg.BlockInterval)

	h := handlers.NewHandler(userService, ledgerService, sugar, cfg)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"ListingFee", cfg.ListingFee,
		"BlockInterval", cfg.BlockInterval,
	)

	srv := &http.Server{
		Addr:              cfg.BaseURL,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Server shutdown failed", "error", err)
		}
	}()

	sugar.Infow("Starting server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}
