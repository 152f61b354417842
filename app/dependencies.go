package app

import (
	"context"
	"fmt"
	"time"

	"github.com/upb/conference-portal/auth"
	"github.com/upb/conference-portal/config"
	"github.com/upb/conference-portal/middleware"
	"github.com/upb/conference-portal/repositories"
	"github.com/upb/conference-portal/repositories/postgres"
	"github.com/upb/conference-portal/services/account"
	"github.com/upb/conference-portal/services/audit"
	"github.com/upb/conference-portal/services/conference"
	"github.com/upb/conference-portal/services/review"
	"go.uber.org/zap"
)

const auditStopTimeout = 5 * time.Second

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	Audit       *audit.AuditService
	Accounts    *account.Service
	Conferences *conference.Service
	Reviews     *review.Service

	// Auth
	Tokens         *auth.TokenManager
	AuthHandler    *auth.Handler
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies opens the database and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, factory, logger)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires dependencies around an existing repository factory
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, factory *postgres.RepositoryFactory, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	deps.initAuth(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase applies pending migrations when AUTO_MIGRATE is set
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.AutoMigrate {
		if err := d.DB.RunMigrations(ctx); err != nil {
			return err
		}
	}

	d.Logger.Info("database connection established",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices starts the audit trail and builds the domain services
func (d *Dependencies) initServices(cfg *config.Config) error {
	sink := audit.MultiSink{
		audit.NewLoggerSink(d.Logger),
		audit.NewRepositorySink(d.Repos.Audit),
	}
	d.Audit = audit.NewAuditService(sink, d.Logger, audit.DefaultConfig())
	if err := d.Audit.Start(); err != nil {
		return fmt.Errorf("failed to start audit service: %w", err)
	}

	d.Accounts = account.NewService(d.Repos.Users, d.TxManager, d.Audit, d.Logger, cfg.Auth.BcryptCost)
	d.Conferences = conference.NewService(d.Repos.Conferences, d.Repos.Registrations, d.Audit, d.Logger)
	d.Reviews = review.NewService(d.Repos, d.TxManager, d.Audit, d.Logger)
	return nil
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	d.Tokens = auth.NewTokenManager(cfg.Auth)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, cfg.Auth.CookieName, d.Logger)
	d.AuthHandler = auth.NewHandler(d.Accounts, d.Tokens, cfg.Auth, d.Logger)
	d.Logger.Info("auth initialized",
		zap.String("issuer", cfg.Auth.Issuer),
		zap.Duration("token_ttl", cfg.Auth.TokenTTL))
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Audit != nil {
		if err := d.Audit.Stop(auditStopTimeout); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop audit service: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
