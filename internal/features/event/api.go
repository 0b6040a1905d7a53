package event

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type EventApi struct {
	controller *EventController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewEventApi(controller *EventController, config *config.Config, checker middleware.PermissionChecker) *EventApi {
	return &EventApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *EventApi) Setup(app *fiber.App) {
	events := app.Group("/api/events",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, permission.Calendar),
	)

	events.Get("/", h.controller.ListEvents)
	events.Post("/", h.controller.CreateEvent)
	events.Put("/", h.controller.UpdateEventByBody)

	events.Get("/:id", h.controller.GetEvent)
	events.Put("/:id", h.controller.UpdateEvent)
	events.Delete("/:id", h.controller.DeleteEvent)
}
