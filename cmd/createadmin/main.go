// Command createadmin bootstraps the first admin account. It runs with
// no acting user in context, so the mutation is not audited.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/salesdesk/crm-backend/config"
	"github.com/salesdesk/crm-backend/internal/observability"
	"github.com/salesdesk/crm-backend/models"
	"github.com/salesdesk/crm-backend/repositories/postgres"
	"github.com/salesdesk/crm-backend/services"
	"github.com/salesdesk/crm-backend/services/audit"
	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	email := flag.String("email", "", "admin email (optional)")
	flag.Parse()

	if *password == "" {
		os.Stderr.WriteString("usage: createadmin -username NAME -password SECRET [-email ADDR]\n")
		os.Exit(2)
	}

	cfg, err := config.New()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		os.Stderr.WriteString("logger error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = factory.Close() }()

	if err := factory.GetDB().InitSchema(ctx); err != nil {
		logger.Fatal("failed to initialize schema", zap.Error(err))
	}

	repos := factory.NewRepositories()
	recorder := audit.NewRecorder(repos.Audit, logger)
	users := services.NewUserService(repos.Users, recorder, repos.TxMgr, logger)

	var emailPtr *string
	if *email != "" {
		emailPtr = email
	}

	user, err := users.Create(ctx, services.CreateUserInput{
		Username: *username,
		Password: *password,
		Email:    emailPtr,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		logger.Fatal("failed to create admin user", zap.Error(err))
	}

	logger.Info("admin user created",
		zap.Int64("id", user.ID),
		zap.String("username", user.Username),
	)
}
