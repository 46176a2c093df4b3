package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/arslant84/syntra.production-sub009/internal/config"
	httpapi "github.com/arslant84/syntra.production-sub009/internal/interfaces/http"
	"github.com/arslant84/syntra.production-sub009/internal/notification"
	"github.com/arslant84/syntra.production-sub009/internal/permission"
	"github.com/arslant84/syntra.production-sub009/internal/report"
	"github.com/arslant84/syntra.production-sub009/internal/repository"
	"github.com/arslant84/syntra.production-sub009/internal/workflow"
	"github.com/arslant84/syntra.production-sub009/migrations"
	"github.com/arslant84/syntra.production-sub009/pkg/database"
	"github.com/arslant84/syntra.production-sub009/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting travel approval workflow service",
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(migrations.Files); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and the entity store
	requestRepo := repository.NewRequestRepository(db.DB, logger)
	stepRepo := repository.NewStepRepository(db.DB, logger)
	executionRepo := repository.NewExecutionRepository(db.DB, logger)
	store := repository.NewStore(db, requestRepo, stepRepo, logger)

	// Permission oracle
	oracle := permission.NewSQLOracle(db.DB, logger)

	// Notification dispatcher
	var sender notification.Sender = notification.NopSender{}
	if cfg.Notification.Enabled {
		sender = notification.NewLarkSender(notification.LarkConfig{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
	}
	dispatcher := notification.NewDispatcher(sender, cfg.Notification.QueueSize, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Workflow engine
	tracker := workflow.NewExecutionTracker(executionRepo, logger)
	engine := workflow.NewEngine(store, oracle, dispatcher, tracker, logger)

	exporter := report.NewRegisterExporter(store, logger)

	server := httpapi.NewServer(httpapi.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, engine, store, exporter, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("Server error", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
}
