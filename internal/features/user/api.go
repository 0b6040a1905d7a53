package user

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewUserApi(controller *UserController, config *config.Config, checker middleware.PermissionChecker) *UserApi {
	return &UserApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

// Setup registers all user-related routes
func (h *UserApi) Setup(app *fiber.App) {
	users := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	// Self-service, registered before /:id
	users.Get("/profile", h.controller.GetProfile)
	users.Put("/profile", h.controller.UpdateProfile)
	users.Put("/avatar", h.controller.UpdateAvatar)

	admin := middleware.RequirePermission(h.checker, permission.Settings)

	users.Get("/", admin, h.controller.ListUsers)
	users.Post("/", admin, h.controller.CreateUser)
	users.Put("/", admin, h.controller.UpdateUserByBody)

	users.Get("/:id", admin, h.controller.GetUser)
	users.Put("/:id", admin, h.controller.UpdateUser)
	users.Patch("/:id", admin, h.controller.PatchUser)
	users.Delete("/:id", admin, h.controller.DeleteUser)
	users.Post("/:id/permissions", admin, h.controller.SetPermissions)
}
