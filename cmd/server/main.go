package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hima852/expenseflow/internal/application/service"
	"github.com/hima852/expenseflow/internal/config"
	"github.com/hima852/expenseflow/internal/infrastructure/identity"
	"github.com/hima852/expenseflow/internal/infrastructure/persistence/repository"
	"github.com/hima852/expenseflow/internal/infrastructure/persistence/sqlite"
	"github.com/hima852/expenseflow/internal/infrastructure/storage"
	httpadapter "github.com/hima852/expenseflow/internal/interfaces/http"
	"github.com/hima852/expenseflow/pkg/database"
	"github.com/hima852/expenseflow/pkg/utils"
)

func main() {
	// Local overrides for development; absence is not an error.
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

	logger.Info("Starting expense reimbursement service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Database and migrations
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
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories and the transaction manager
	txManager := sqlite.NewDB(db.DB, logger)
	claimRepo := repository.NewClaimRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	lookupRepo := repository.NewLookupRepository(db.DB, logger)

	// Receipt storage
	receiptStore, err := storage.NewReceiptStore(cfg.Storage.ReceiptDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize receipt storage", zap.Error(err))
	}

	// Identity
	identityService := identity.NewJWTIdentity(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, userRepo, logger)

	// Application services
	serviceLogger := utils.NewKVAdapter(logger)
	reviewService := service.NewReviewService(claimRepo, historyRepo, userRepo, lookupRepo, txManager, serviceLogger)
	historyService := service.NewHistoryService()
	exportService := service.NewExportService(claimRepo, lookupRepo, serviceLogger)

	// HTTP server
	server := httpadapter.NewServer(
		httpadapter.ServerConfig{
			Host:          cfg.Server.Host,
			Port:          cfg.Server.Port,
			ReadTimeout:   cfg.Server.ReadTimeout,
			WriteTimeout:  cfg.Server.WriteTimeout,
			MaxUploadSize: cfg.Storage.MaxUploadSize,
		},
		reviewService,
		historyService,
		exportService,
		identityService,
		receiptStore,
		serviceLogger,
	)

	// Run until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
