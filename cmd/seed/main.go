package main

import (
	"context"
	"strings"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/config"
	"realty-crm/internal/database"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/features/user"
	"realty-crm/internal/logger"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Seed creates the first Administrator, or promotes the account when the
// email is already registered.
func Seed(
	lc fx.Lifecycle,
	cfg *config.Config,
	userRepo user.UserRepository,
	userService user.UserService,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				if err := seedAdmin(context.Background(), cfg, userRepo, userService, logger); err != nil {
					logger.Error("Seeding failed", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

func seedAdmin(ctx context.Context, cfg *config.Config, userRepo user.UserRepository, userService user.UserService, logger *zap.Logger) error {
	addr := strings.ToLower(strings.TrimSpace(cfg.SeedAdminEmail))
	role := permission.AdministratorName

	existing, err := userRepo.FindByEmail(ctx, addr)
	switch {
	case err == nil:
		if _, err := userService.UpdateUser(ctx, existing.ID.Hex(), user.UpdateUserInput{Role: &role}); err != nil {
			return err
		}
		logger.Info("Promoted existing user to Administrator", zap.String("email", addr))
		return nil
	case !apperr.Is(err, apperr.KindNotFound):
		return err
	}

	if cfg.SeedAdminPassword == "" {
		return apperr.Validation("SEED_ADMIN_PASSWORD is required to create the admin user")
	}

	created, err := userService.CreateUser(ctx, user.CreateUserInput{
		Name:     "Administrator",
		Email:    addr,
		Password: cfg.SeedAdminPassword,
		Role:     role,
	})
	if err != nil {
		return err
	}

	logger.Info("Created Administrator", zap.String("email", created.Email), zap.String("id", created.ID.Hex()))
	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			audit.NewAuditRepository,
			audit.NewAuditService,
			user.NewUserRepository,
			user.NewUserService,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
