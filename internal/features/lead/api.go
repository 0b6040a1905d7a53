package lead

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type LeadApi struct {
	controller *LeadController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewLeadApi(controller *LeadController, config *config.Config, checker middleware.PermissionChecker) *LeadApi {
	return &LeadApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

// Setup registers lead routes. Per-lead showings live in the showing feature.
func (h *LeadApi) Setup(app *fiber.App) {
	leads := app.Group("/api/leads",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, permission.Leads),
	)

	leads.Get("/", h.controller.ListLeads)
	leads.Post("/", h.controller.CreateLead)
	leads.Post("/import", h.controller.ImportLeads)

	leads.Get("/:leadId", h.controller.GetLead)
	leads.Put("/:leadId", h.controller.UpdateLead)
	leads.Delete("/:leadId", h.controller.DeleteLead)
}
