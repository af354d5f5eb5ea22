// Command server runs the document-entry HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"rebanho/internal/domain/breeding"
	"rebanho/internal/domain/fiscal"
	"rebanho/internal/domain/herd"
	"rebanho/internal/domain/ledger"
	"rebanho/internal/domain/semen"
	"rebanho/internal/infrastructure/config"
	v1 "rebanho/internal/infrastructure/http/v1"
	"rebanho/internal/infrastructure/report"
	"rebanho/internal/infrastructure/storage/postgres"
	"rebanho/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal(context.Background(), "load config", "error", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		logger.Fatal(context.Background(), "init logger", "error", err)
	}
	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:      cfg.Database.DSN,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal(ctx, "connect database", "error", err)
	}
	defer pool.Close()

	services, err := buildServices(cfg, pool)
	if err != nil {
		logger.Fatal(ctx, "wire services", "error", err)
	}

	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool,
		Logger:    log,
		JWTSecret: cfg.Auth.JWTSecret,
		Fiscal:    services.fiscal,
		Herd:      services.herd,
		Semen:     services.semen,
		Breeding:  services.breeding,
		Ledger:    services.ledger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info(ctx, "server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(ctx, "server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "shutdown failed", "error", err)
	}
	logger.Info(ctx, "server stopped")
}

type services struct {
	fiscal   *fiscal.Service
	herd     *herd.Service
	semen    *semen.Service
	breeding *breeding.Service
	ledger   *ledger.Service
}

func buildServices(cfg *config.Config, pool *postgres.Pool) (*services, error) {
	txManager := postgres.NewTxManager(pool)

	auditSink, err := postgres.NewAuditSink(txManager)
	if err != nil {
		return nil, err
	}

	herdSvc := herd.NewService(postgres.NewHerdRepo(txManager))
	semenSvc := semen.NewService(postgres.NewSemenRepo(txManager), txManager, auditSink)
	ledgerSvc := ledger.NewService(postgres.NewLedgerRepo(txManager))

	worklists := report.NewPDFWorklist(cfg.Reports.OutputDir)
	breedingSvc := breeding.NewService(
		postgres.NewBreedingRepo(txManager),
		herdSvc,
		worklists,
		breeding.Config{
			DGOffsetDays:  cfg.Breeding.DGOffsetDays,
			DefaultSeries: cfg.Herd.DefaultSeries,
		},
	)

	classifier, err := buildClassifier(cfg.Ledger)
	if err != nil {
		return nil, err
	}

	fiscalSvc := fiscal.NewService(
		postgres.NewFiscalRepo(txManager),
		txManager,
		herdSvc,
		semenSvc,
		breedingSvc,
		classifier,
		ledgerSvc,
		auditSink,
		fiscal.Config{DefaultSeries: cfg.Herd.DefaultSeries},
	)

	return &services{
		fiscal:   fiscalSvc,
		herd:     herdSvc,
		semen:    semenSvc,
		breeding: breedingSvc,
		ledger:   ledgerSvc,
	}, nil
}

func buildClassifier(cfg config.LedgerConfig) (ledger.Classifier, error) {
	reference := ledger.NewReferenceClassifier(ledger.ReferenceClassifierConfig{
		ReferenceTaxIDs: cfg.ReferenceTaxIDs,
		ReferenceNames:  cfg.ReferenceNames,
		TagAllowlist:    cfg.TagAllowlist,
		InferredTag:     cfg.InferredTag,
	})
	if cfg.CELRule == "" {
		return reference, nil
	}
	return ledger.NewCELClassifier(cfg.CELRule, reference)
}
