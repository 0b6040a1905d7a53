package favorite

import (
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FavoriteApi struct {
	controller *FavoriteController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewFavoriteApi(controller *FavoriteController, config *config.Config, checker middleware.PermissionChecker) *FavoriteApi {
	return &FavoriteApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *FavoriteApi) Setup(app *fiber.App) {
	favorites := app.Group("/api/favorites",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, permission.Favorites),
	)

	favorites.Get("/", h.controller.ListFavorites)
	favorites.Post("/", h.controller.ToggleFavorite)
}
