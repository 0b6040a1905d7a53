package audit

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewAuditApi(controller *AuditController, cfg *config.Config, checker middleware.PermissionChecker) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     cfg,
		checker:    checker,
	}
}

// Setup registers audit routes
func (h *AuditApi) Setup(app *fiber.App) {
	app.Get("/api/audit-logs",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, permission.Settings),
		h.controller.ListLogs)
}
