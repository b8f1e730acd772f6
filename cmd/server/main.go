package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopledger/internal/config"
	"github.com/mamadbah2/shopledger/internal/repository/mongodb"
	"github.com/mamadbah2/shopledger/internal/repository/sheets"
	"github.com/mamadbah2/shopledger/internal/scheduler"
	"github.com/mamadbah2/shopledger/internal/server/handlers"
	"github.com/mamadbah2/shopledger/internal/server/router"
	authsvc "github.com/mamadbah2/shopledger/internal/service/auth"
	inventorysvc "github.com/mamadbah2/shopledger/internal/service/inventory"
	ledgersvc "github.com/mamadbah2/shopledger/internal/service/ledger"
	reportingsvc "github.com/mamadbah2/shopledger/internal/service/reporting"
	"github.com/mamadbah2/shopledger/pkg/clients/webhook"
	"github.com/mamadbah2/shopledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.New(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := repo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to create indexes", zap.Error(err))
	}

	tokens := authsvc.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHrs)*time.Hour)

	var alerter ledgersvc.Alerter
	if cfg.Alerts.WebhookURL != "" {
		alerter = webhook.NewClient(cfg.Alerts.WebhookURL)
		baseLogger.Info("low stock alerts enabled")
	} else {
		baseLogger.Warn("low stock webhook url missing, alerts disabled")
	}

	authService := authsvc.NewService(repo, tokens, baseLogger.Named("svc.auth"))
	inventoryService := inventorysvc.NewService(repo, baseLogger.Named("svc.inventory"))
	ledgerService := ledgersvc.NewService(repo, repo, alerter, cfg.Alerts.LowStockThreshold, baseLogger.Named("svc.ledger"))

	var exporter reportingsvc.Exporter
	if cfg.SheetsExportEnabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = sheetsRepo
		baseLogger.Info("sheets report export enabled")
	}

	reportingService := reportingsvc.NewService(repo, repo, exporter, baseLogger.Named("svc.reporting"))

	authHandler := handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth"))
	productHandler := handlers.NewProductHandler(inventoryService, baseLogger.Named("handlers.products"))
	customerHandler := handlers.NewCustomerHandler(ledgerService, baseLogger.Named("handlers.customers"))
	engine := router.New(authHandler, productHandler, customerHandler, tokens, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting, reportingService, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
