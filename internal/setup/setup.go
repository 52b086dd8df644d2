package setup

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robalyx/modreport/internal/database"
	"github.com/robalyx/modreport/internal/redis"
	"github.com/robalyx/modreport/internal/setup/config"
	"github.com/robalyx/modreport/internal/setup/telemetry"
	"go.uber.org/zap"
)

// ErrPendingMigrations is returned when the database schema is behind the binary.
var ErrPendingMigrations = errors.New("database migrations are pending, run the migrate command first")

// App bundles all core dependencies and services needed by the application.
// Each field represents a major subsystem that needs initialization and cleanup.
type App struct {
	Config       *config.Config                 // Application configuration
	ConfigDir    string                         // Directory the config was loaded from
	Logger       *zap.Logger                    // Main application logger
	DBLogger     *zap.Logger                    // Database-specific logger
	DB           database.Client                // Database connection pool, nil when PostgreSQL is disabled
	RedisManager *redis.Manager                 // Redis connection manager
	LogManager   *telemetry.Manager             // Log management system
	debugServer  *debugServer                   // Debug HTTP server for pprof and metrics
	stopTracing  func(ctx context.Context) error // Flushes pending spans
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available. When
// checkMigrations is set, startup fails if the schema has unapplied migrations.
func InitializeApp(ctx context.Context, component, logDir string, checkMigrations bool) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logManager := telemetry.NewManager(component, logDir, &cfg.Common.Debug, cfg.Common.Telemetry.Enabled)

	logger, dbLogger, err := logManager.GetLoggers()
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("dir", configDir))

	stopTracing := telemetry.StartTracing(&cfg.Common.Telemetry, component)

	// Redis manager provides connection pools for the registry and classifier cache
	redisManager := redis.NewManager(&cfg.Common.Redis, logger)

	// The audit log database is optional
	var db database.Client
	if cfg.Common.PostgreSQL.Enabled {
		db, err = connectDatabase(ctx, &cfg.Common.PostgreSQL, dbLogger, checkMigrations)
		if err != nil {
			redisManager.Close()
			return nil, err
		}
	} else {
		logger.Warn("PostgreSQL is disabled, reports will not be recorded")
	}

	// Start debug server if enabled
	var debugSrv *debugServer

	if cfg.Common.Debug.EnableDebugServer {
		srv, err := startDebugServer(cfg.Common.Debug.DebugPort, logger)
		if err != nil {
			logger.Error("Failed to start debug server", zap.Error(err))
		} else {
			debugSrv = srv

			logger.Warn("Debug server enabled - this should not be used in production!")
		}
	}

	// Bundle all initialized components
	return &App{
		Config:       cfg,
		ConfigDir:    configDir,
		Logger:       logger,
		DBLogger:     dbLogger.Named("database"),
		DB:           db,
		RedisManager: redisManager,
		LogManager:   logManager,
		debugServer:  debugSrv,
		stopTracing:  stopTracing,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse initialization order.
// Logs but does not fail on cleanup errors to ensure all components get cleanup attempts.
func (s *App) Cleanup(ctx context.Context) {
	// Shutdown debug server if running
	if s.debugServer != nil {
		if err := s.debugServer.srv.Shutdown(ctx); err != nil {
			s.Logger.Error("Failed to shutdown debug server", zap.Error(err))
		}
	}

	// Flush pending spans
	if err := s.stopTracing(ctx); err != nil {
		s.Logger.Error("Failed to shutdown tracing", zap.Error(err))
	}

	// Close database connections
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			log.Printf("Failed to close database connection: %v", err)
		}
	}

	// Close Redis connections last as other components might need it during cleanup
	s.RedisManager.Close()

	// Sync buffered logs before shutdown
	if err := s.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}

	if err := s.DBLogger.Sync(); err != nil {
		log.Printf("Failed to sync DB logger: %v", err)
	}
}

// connectDatabase opens the database and optionally refuses a stale schema.
func connectDatabase(
	ctx context.Context, cfg *config.PostgreSQL, dbLogger *zap.Logger, checkMigrations bool,
) (database.Client, error) {
	db, err := database.NewConnection(ctx, cfg, dbLogger, false)
	if err != nil {
		return nil, err
	}

	if !checkMigrations {
		return db, nil
	}

	migrator := database.NewMigrator(db.DB())
	if err := migrator.Init(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check migration status: %w", err)
	}

	if unapplied := ms.Unapplied(); len(unapplied) > 0 {
		db.Close()
		return nil, fmt.Errorf("%w (%d unapplied)", ErrPendingMigrations, len(unapplied))
	}

	return db, nil
}
