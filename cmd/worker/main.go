// Command worker runs the scheduled sweeps: each morning it lists the
// pregnancy diagnoses that are due and logs them for the field team.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"rebanho/internal/domain/audit"
	"rebanho/internal/domain/breeding"
	"rebanho/internal/domain/herd"
	"rebanho/internal/infrastructure/config"
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
		MaxConns: 5,
		MinConns: 1,
	})
	if err != nil {
		logger.Fatal(ctx, "connect database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	auditSink, err := postgres.NewAuditSink(txManager)
	if err != nil {
		logger.Fatal(ctx, "init audit sink", "error", err)
	}
	herdSvc := herd.NewService(postgres.NewHerdRepo(txManager))
	breedingSvc := breeding.NewService(
		postgres.NewBreedingRepo(txManager),
		herdSvc,
		report.NewPDFWorklist(cfg.Reports.OutputDir),
		breeding.Config{
			DGOffsetDays:  cfg.Breeding.DGOffsetDays,
			DefaultSeries: cfg.Herd.DefaultSeries,
		},
	)

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Worker.DiagnosisCron, func() {
		sweep(ctx, breedingSvc, auditSink)
	})
	if err != nil {
		logger.Fatal(ctx, "schedule diagnosis sweep", "cron", cfg.Worker.DiagnosisCron, "error", err)
	}

	scheduler.Start()
	logger.Info(ctx, "worker started", "diagnosis_cron", cfg.Worker.DiagnosisCron)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info(ctx, "worker stopped")
}

func sweep(ctx context.Context, svc *breeding.Service, sink audit.Sink) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	due, err := svc.DueSchedules(ctx, time.Now())
	if err != nil {
		logger.Error(ctx, "diagnosis sweep failed", "error", err)
		return
	}
	if len(due) == 0 {
		logger.Info(ctx, "no diagnoses due")
		return
	}
	schedules := make([]map[string]any, 0, len(due))
	for _, s := range due {
		logger.Info(ctx, "diagnosis due",
			"schedule_id", s.ID,
			"animal_id", s.AnimalID,
			"scheduled_for", s.ScheduledFor.Format("2006-01-02"),
			"document_number", s.DocumentNumber)
		schedules = append(schedules, map[string]any{
			"schedule_id":     s.ID.String(),
			"animal_id":       s.AnimalID,
			"scheduled_for":   s.ScheduledFor.Format("2006-01-02"),
			"document_number": s.DocumentNumber,
		})
	}
	if err := sink.Record(ctx, audit.Entry{
		Operation:   audit.OpDiagnosisDue,
		Description: "diagnosis sweep",
		Actor:       "worker",
		Details:     map[string]any{"count": len(due), "schedules": schedules},
	}); err != nil {
		logger.Error(ctx, "record sweep audit entry", "error", err)
	}
	logger.Info(ctx, "diagnosis sweep complete", "due", len(due))
}
