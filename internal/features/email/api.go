package email

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EmailApi struct {
	controller *EmailController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewEmailApi(controller *EmailController, cfg *config.Config, checker middleware.PermissionChecker) *EmailApi {
	return &EmailApi{
		controller: controller,
		config:     cfg,
		checker:    checker,
	}
}

func (h *EmailApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)
	perm := middleware.RequirePermission(h.checker, permission.Email)

	app.Post("/api/email/send", auth, perm, h.controller.SendEmail)
	app.Get("/api/email/inbox", auth, perm, h.controller.Inbox)
	app.Get("/api/emails", auth, perm, h.controller.ListSent)
}
