package showing

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ShowingApi struct {
	controller *ShowingController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewShowingApi(controller *ShowingController, config *config.Config, checker middleware.PermissionChecker) *ShowingApi {
	return &ShowingApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *ShowingApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth)

	perLead := app.Group("/api/leads/:leadId/showings", auth, middleware.RequirePermission(h.checker, permission.Leads))
	perLead.Get("/", h.controller.ListLeadShowings)
	perLead.Put("/", h.controller.ReplaceLeadShowings)
	perLead.Post("/", h.controller.AddLeadShowing)

	app.Get("/api/showings", auth, middleware.RequirePermission(h.checker, permission.Calendar), h.controller.ListAllShowings)
}
