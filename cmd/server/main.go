package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dealflow/backend/internal/bootstrap"
	"github.com/dealflow/backend/internal/infrastructure/config"
	"github.com/dealflow/backend/internal/infrastructure/logger"
	"github.com/dealflow/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting dealflow backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	)

	var gormOpts []logger.GormOption
	if cfg.App.Env == "production" {
		gormOpts = append(gormOpts, logger.HideParams())
	}
	gormLog := logger.NewGormLogger(log, logger.GormLevel(cfg.Log.Level), gormOpts...)
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Boot(ctx, bootstrap.Options{
		Config:   cfg,
		Logger:   log,
		Database: db,
	})
	if err != nil {
		_ = db.Close()
		log.Fatal("Boot failed", zap.Error(err))
	}

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown incomplete", zap.Error(err))
		_ = logger.Sync(log)
		os.Exit(1)
	}
	log.Info("Server exited gracefully")
}
