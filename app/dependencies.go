package app

import (
	"context"
	"fmt"

	"github.com/salesdesk/crm-backend/auth"
	"github.com/salesdesk/crm-backend/config"
	"github.com/salesdesk/crm-backend/handlers"
	"github.com/salesdesk/crm-backend/middleware"
	"github.com/salesdesk/crm-backend/repositories"
	"github.com/salesdesk/crm-backend/repositories/postgres"
	"github.com/salesdesk/crm-backend/services"
	"github.com/salesdesk/crm-backend/services/audit"
	"github.com/salesdesk/crm-backend/services/notify"
	"go.uber.org/zap"
)

// Dependencies holds all initialized application components
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Data layer
	Factory *postgres.RepositoryFactory
	Repos   *repositories.Repositories

	// Services
	Recorder      *audit.Recorder
	Notifier      notify.Notifier
	UserService   *services.UserService
	ClientService *services.ClientService
	LeadService   *services.LeadService
	AuthService   *services.AuthService

	// HTTP layer
	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	ClientHandler  *handlers.ClientHandler
	LeadHandler    *handlers.LeadHandler
	AuditHandler   *handlers.AuditHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies wires the full application: database, repositories,
// services, auth and handlers
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := factory.GetDB().InitSchema(ctx); err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	repos := factory.NewRepositories()

	recorder := audit.NewRecorder(repos.Audit, logger)
	notifier := notify.NewMailer(cfg.Mail, logger)

	userService := services.NewUserService(repos.Users, recorder, repos.TxMgr, logger)
	clientService := services.NewClientService(repos.Clients, recorder, repos.TxMgr, notifier, logger)
	leadService := services.NewLeadService(repos.Leads, repos.Clients, repos.Users, recorder, repos.TxMgr, notifier, logger)

	tokenManager := auth.NewTokenManager(cfg.Auth, logger)
	authService := services.NewAuthService(userService, tokenManager, logger)
	authMiddleware := middleware.NewAuthMiddleware(tokenManager, logger)

	deps := &Dependencies{
		Config:         cfg,
		Logger:         logger,
		Factory:        factory,
		Repos:          repos,
		Recorder:       recorder,
		Notifier:       notifier,
		UserService:    userService,
		ClientService:  clientService,
		LeadService:    leadService,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		AuthHandler:    handlers.NewAuthHandler(authService, logger),
		UserHandler:    handlers.NewUserHandler(userService, logger),
		ClientHandler:  handlers.NewClientHandler(clientService, logger),
		LeadHandler:    handlers.NewLeadHandler(leadService, logger),
		AuditHandler:   handlers.NewAuditHandler(recorder, logger),
		HealthHandler:  handlers.NewHealthHandler(factory.GetDB(), logger),
	}

	logger.Info("application dependencies initialized")

	return deps, nil
}

// Close releases held resources
func (d *Dependencies) Close() error {
	return d.Factory.Close()
}
