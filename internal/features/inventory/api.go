package inventory

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InventoryApi struct {
	controller *InventoryController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewInventoryApi(controller *InventoryController, config *config.Config, checker middleware.PermissionChecker) *InventoryApi {
	return &InventoryApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *InventoryApi) Setup(app *fiber.App) {
	inventory := app.Group("/api/inventory",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, permission.Inventory),
	)

	inventory.Get("/", h.controller.ListItems)
	inventory.Post("/", h.controller.CreateItem)
	inventory.Put("/", h.controller.UpdateItem)

	inventory.Get("/:id", h.controller.GetItem)
	inventory.Post("/:id/favorite", h.controller.ToggleFavorite)
}
