package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/webwaka/pesaflow/internal/adapter"
	"github.com/webwaka/pesaflow/internal/adapter/mpesa"
	"github.com/webwaka/pesaflow/internal/adapter/paystack"
	"github.com/webwaka/pesaflow/internal/analytics"
	analyticsStore "github.com/webwaka/pesaflow/internal/analytics/store"
	"github.com/webwaka/pesaflow/internal/config"
	"github.com/webwaka/pesaflow/internal/database"
	pesaflowHttp "github.com/webwaka/pesaflow/internal/http"
	analyticsHandler "github.com/webwaka/pesaflow/internal/http/analytics"
	callbackHandler "github.com/webwaka/pesaflow/internal/http/callback"
	discrepancyHandler "github.com/webwaka/pesaflow/internal/http/discrepancy"
	paymentHandler "github.com/webwaka/pesaflow/internal/http/payment"
	"github.com/webwaka/pesaflow/internal/orchestrator"
	"github.com/webwaka/pesaflow/internal/reconcile"
	"github.com/webwaka/pesaflow/internal/transaction"
	txStore "github.com/webwaka/pesaflow/internal/transaction/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	registry := adapter.NewRegistry()

	for _, ad := range []adapter.Adapter{
		mpesa.New(cfg.Adapters.MpesaCallbackSecret),
		paystack.New(cfg.Adapters.PaystackWebhookSecret),
	} {
		if err := registry.Register(ad); err != nil {
			slog.Error("failed to register adapter", "adapter", ad.ID(), "error", err)
			os.Exit(1)
		}
	}

	var (
		transactionService = transaction.NewService(txStore.New(db))
		analyticsService   = analytics.NewService(analyticsStore.New(db))
	)

	orch := orchestrator.New(registry, transactionService, orchestrator.Config{
		InitiateTimeout: cfg.Orchestrator.InitiateTimeout,
		MaxAttempts:     cfg.Orchestrator.MaxAttempts,
		InitialBackoff:  cfg.Orchestrator.InitialBackoff,
		TimeoutPolicy:   orchestrator.TimeoutPolicy(cfg.Orchestrator.TimeoutPolicy),
	})

	if cfg.Reconcile.Enabled {
		reconciler := reconcile.New(registry, transactionService, reconcile.Config{
			Interval:       cfg.Reconcile.Interval,
			Grace:          cfg.Reconcile.Grace,
			PendingTimeout: cfg.Reconcile.PendingTimeout,
		})

		go reconciler.Run(ctx)
	}

	var (
		paymentH     = paymentHandler.NewHandler(orch, transactionService)
		callbackH    = callbackHandler.NewHandler(orch)
		analyticsH   = analyticsHandler.NewHandler(analyticsService)
		discrepancyH = discrepancyHandler.NewHandler(transactionService)
	)

	router := pesaflowHttp.New(paymentH, callbackH, analyticsH, discrepancyH, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		slog.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown", "error", err)
		}
	}()

	slog.Info("starting server", "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
