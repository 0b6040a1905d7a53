package main

import (
	"context"
	"fmt"
	"time"

	common_api "realty-crm/internal/common/api"
	"realty-crm/internal/common/apperr"
	"realty-crm/internal/config"
	"realty-crm/internal/database"
	"realty-crm/internal/features/audit"
	"realty-crm/internal/features/auth"
	"realty-crm/internal/features/email"
	"realty-crm/internal/features/event"
	"realty-crm/internal/features/favorite"
	"realty-crm/internal/features/inventory"
	"realty-crm/internal/features/lead"
	"realty-crm/internal/features/reminder"
	"realty-crm/internal/features/showing"
	"realty-crm/internal/features/system"
	"realty-crm/internal/features/user"
	"realty-crm/internal/logger"
	"realty-crm/internal/middleware"
	"realty-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer(cfg *config.Config, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             10 * 1024 * 1024, // lead sheets
		ErrorHandler:          apperr.Handler(logger),
	})

	app.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	return app
}

// AsRoute tags the constructor so Fx adds it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// AsAccountCleaner adds a repository to the "account_cleaners" group
func AsAccountCleaner[T auth.AccountCleaner]() any {
	return fx.Annotate(
		func(r T) auth.AccountCleaner { return r },
		fx.ResultTags(`group:"account_cleaners"`),
	)
}

// RegisterAllRoutes calls Setup() on every route in the group.
func RegisterAllRoutes(app *fiber.App, logger *zap.Logger, routes []common_api.Route) {
	logger.Info("Registering routes", zap.Int("count", len(routes)))
	for _, route := range routes {
		logger.Debug("Setting up route", zap.String("api", fmt.Sprintf("%T", route)))
		route.Setup(app)
	}
}

var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, ``, `group:"routes"`),
)

// StartServer starts Fiber in a goroutine and shuts it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				logger.Info("Server listening", zap.String("port", cfg.Port))
				if err := app.Listen(port); err != nil {
					logger.Fatal("Server failed to start", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

// InitializeIndexes ensures that necessary database indexes are created
func InitializeIndexes(
	lc fx.Lifecycle,
	logger *zap.Logger,
	users user.UserRepository,
	leads lead.LeadRepository,
	events event.EventRepository,
	favorites favorite.FavoriteRepository,
	reminders reminder.ReminderRepository,
	tokens auth.TokenRepository,
) {
	repos := []any{users, leads, events, favorites, reminders, tokens}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				for _, repo := range repos {
					ensurer, ok := repo.(database.IndexEnsurer)
					if !ok {
						continue
					}
					if err := ensurer.EnsureIndexes(ctx); err != nil {
						logger.Error("Failed to ensure indexes", zap.String("repository", fmt.Sprintf("%T", repo)), zap.Error(err))
					}
				}
			}()
			return nil
		},
	})
}

func ConfigureTokens(cfg *config.Config) {
	utils.SetSecret(cfg.JWTSecret)
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			database.NewDatabase,
			logger.NewLogger,
			NewFiberServer,

			// Repositories
			audit.NewAuditRepository,
			user.NewUserRepository,
			auth.NewTokenRepository,
			email.NewEmailRepository,
			lead.NewLeadRepository,
			event.NewEventRepository,
			inventory.NewInventoryRepository,
			favorite.NewFavoriteRepository,
			reminder.NewReminderRepository,

			// Outbound channels
			email.NewSender,
			email.NewInbox,
			reminder.NewSender,

			// Calendar fan-out and showing projection
			system.NewCalendarHub,
			showing.NewProjector,

			// Services
			audit.NewAuditService,
			user.NewUserService,
			email.NewEmailService,
			fx.Annotate(
				auth.NewAuthService,
				fx.ParamTags(``, ``, ``, ``, ``, ``, ``, `group:"account_cleaners"`),
			),
			lead.NewLeadService,
			showing.NewShowingService,
			event.NewEventService,
			inventory.NewInventoryService,
			favorite.NewFavoriteService,
			reminder.NewReminderService,
			reminder.NewDispatcher,

			// Interface adapters to break package cycles
			func(s user.UserService) middleware.PermissionChecker { return s },
			func(p *showing.Projector) lead.ShowingSyncer { return p },
			func(p *showing.Projector) system.SyncMonitor { return p },
			func(h *system.CalendarHub) event.Publisher { return h },
			func(db *database.MongodbDB) system.Pinger { return db },

			AsAccountCleaner[auth.TokenRepository](),
			AsAccountCleaner[favorite.FavoriteRepository](),
			AsAccountCleaner[reminder.ReminderRepository](),

			// Controllers
			audit.NewAuditController,
			user.NewUserController,
			auth.NewAuthController,
			email.NewEmailController,
			lead.NewLeadController,
			showing.NewShowingController,
			event.NewEventController,
			inventory.NewInventoryController,
			favorite.NewFavoriteController,
			reminder.NewReminderController,
			system.NewHealthController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(email.NewEmailApi),
			AsRoute(lead.NewLeadApi),
			AsRoute(showing.NewShowingApi),
			AsRoute(event.NewEventApi),
			AsRoute(inventory.NewInventoryApi),
			AsRoute(favorite.NewFavoriteApi),
			AsRoute(reminder.NewReminderApi),
			AsRoute(system.NewHealthApi),
			AsRoute(system.NewWebSocketApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			ConfigureTokens,
			database.LogConnected,
			RegisterAllRoutesWithAnnotation,
			InitializeIndexes,
			reminder.RegisterDispatcher,
			StartServer,
		),
	)

	app.Run()
}
