package reminder

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReminderApi struct {
	controller *ReminderController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewReminderApi(controller *ReminderController, config *config.Config, checker middleware.PermissionChecker) *ReminderApi {
	return &ReminderApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *ReminderApi) Setup(app *fiber.App) {
	reminders := app.Group("/api/reminder",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, permission.Calendar),
	)

	reminders.Get("/", h.controller.ListReminders)
	reminders.Post("/", h.controller.CreateReminder)

	reminders.Get("/:id", h.controller.GetReminder)
	reminders.Put("/:id", h.controller.UpdateReminder)
	reminders.Delete("/:id", h.controller.DeleteReminder)
}
