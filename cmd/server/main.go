package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/hanbit-systems/netstock/internal/config"
	"github.com/hanbit-systems/netstock/internal/repository/mongodb"
	"github.com/hanbit-systems/netstock/internal/repository/sheets"
	"github.com/hanbit-systems/netstock/internal/scheduler"
	"github.com/hanbit-systems/netstock/internal/server/handlers"
	"github.com/hanbit-systems/netstock/internal/server/router"
	cablestocksvc "github.com/hanbit-systems/netstock/internal/service/cablestock"
	inventorysvc "github.com/hanbit-systems/netstock/internal/service/inventory"
	networksvc "github.com/hanbit-systems/netstock/internal/service/network"
	"github.com/hanbit-systems/netstock/pkg/clients/notify"
	"github.com/hanbit-systems/netstock/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
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
		baseLogger.Fatal("failed to ensure indexes", zap.Error(err))
	}

	unitStore := mongodb.NewUnitRepository(repo)
	inventoryStore := mongodb.NewInventoryRepository(repo)
	snapshotStore := mongodb.NewSnapshotRepository(repo)

	// Optional collaborators: absent config leaves them nil and the
	// dependent features disabled.
	var notifier notify.Client
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewClient(cfg.Notify)
		baseLogger.Info("webhook notifications enabled")
	} else {
		baseLogger.Warn("NOTIFY_WEBHOOK_URL missing, notifications disabled")
	}

	var mirror sheets.Mirror
	if cfg.Sheets.SpreadsheetID != "" {
		mirror, err = sheets.NewGoogleSheetMirror(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheet mirror", zap.Error(err))
		}
		baseLogger.Info("cable stock sheet mirror enabled")
	}

	networkSvc := networksvc.NewService(unitStore, cfg.Network, cfg.Schema, baseLogger.Named("svc.network"))
	inventorySvc := inventorysvc.NewService(inventoryStore, notifier, baseLogger.Named("svc.inventory"))
	cableSvc := cablestocksvc.NewService(snapshotStore, mirror, cfg.CableStock, baseLogger.Named("svc.cablestock"))

	engine := router.New(
		handlers.NewUnitHandler(networkSvc, baseLogger.Named("handlers.units")),
		handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory")),
		handlers.NewCableStockHandler(cableSvc, baseLogger.Named("handlers.cablestock")),
		baseLogger.Named("router"),
	)

	sched := scheduler.NewScheduler(cfg.Jobs, inventorySvc, cableSvc, notifier, baseLogger.Named("scheduler"))
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
