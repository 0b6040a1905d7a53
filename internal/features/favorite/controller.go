package favorite

import (
	"realty-crm/internal/common/apperr"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FavoriteController struct {
	FavoriteService FavoriteService
}

func NewFavoriteController(favoriteService FavoriteService) *FavoriteController {
	return &FavoriteController{
		FavoriteService: favoriteService,
	}
}

// ListFavorites handles GET /api/favorites
func (ctrl *FavoriteController) ListFavorites(c *fiber.Ctx) error {
	favorites, err := ctrl.FavoriteService.List(c.UserContext(), c.Query("userId"))
	if err != nil {
		return err
	}
	return c.JSON(favorites)
}

// ToggleFavorite handles POST /api/favorites
// Matches on property.ListingKey; userId defaults to the caller
func (ctrl *FavoriteController) ToggleFavorite(c *fiber.Ctx) error {
	var in ToggleInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if in.UserID == "" {
		if claims, err := middleware.Claims(c); err == nil {
			in.UserID = claims.UserID
		}
	}

	action, err := ctrl.FavoriteService.Toggle(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "action": action})
}
