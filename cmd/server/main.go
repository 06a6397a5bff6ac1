package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/kisanpay/milkledger/internal/config"
	"github.com/kisanpay/milkledger/internal/repository/mongodb"
	sheetsrepo "github.com/kisanpay/milkledger/internal/repository/sheets"
	"github.com/kisanpay/milkledger/internal/scheduler"
	"github.com/kisanpay/milkledger/internal/server/handlers"
	"github.com/kisanpay/milkledger/internal/server/router"
	authsvc "github.com/kisanpay/milkledger/internal/service/auth"
	ledgersvc "github.com/kisanpay/milkledger/internal/service/ledger"
	reportingsvc "github.com/kisanpay/milkledger/internal/service/reporting"
	smsclient "github.com/kisanpay/milkledger/pkg/clients/sms"
	"github.com/kisanpay/milkledger/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := store.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	entryRepo := mongodb.NewEntryRepository(store)
	paymentRepo := mongodb.NewPaymentRepository(store)
	customerRepo := mongodb.NewCustomerRepository(store)
	digestRepo := mongodb.NewDigestRepository(store)

	ledgerSvc := ledgersvc.NewService(entryRepo, paymentRepo, customerRepo, baseLogger.Named("svc.ledger"))
	reportingSvc := reportingsvc.NewService(entryRepo, paymentRepo, customerRepo, baseLogger.Named("svc.reporting"))
	authSvc := authsvc.NewService(customerRepo, cfg.Auth, baseLogger.Named("svc.auth"))

	var exporter sheetsrepo.Exporter
	if cfg.SheetsEnabled() {
		sheetExporter, err := sheetsrepo.NewGoogleSheetExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheetExporter
		baseLogger.Info("google sheets digest export enabled")
	} else {
		baseLogger.Warn("google sheets settings missing, digest export disabled")
	}

	var sms smsclient.Client
	if cfg.SMSEnabled() {
		sms = smsclient.NewClient(cfg.SMS)
		baseLogger.Info("sms digest notification enabled")
	} else {
		baseLogger.Warn("sms gateway settings missing, digest notification disabled")
	}

	authHandler := handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth"))
	adminHandler := handlers.NewAdminHandler(ledgerSvc, reportingSvc, baseLogger.Named("handlers.admin"))
	customerHandler := handlers.NewCustomerHandler(ledgerSvc, reportingSvc, baseLogger.Named("handlers.customer"))
	engine := router.New(authHandler, adminHandler, customerHandler, authSvc, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingSvc, digestRepo, exporter, sms, baseLogger.Named("scheduler"))
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
