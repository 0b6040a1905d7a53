package inventory

import (
	"strconv"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type InventoryController struct {
	InventoryService InventoryService
}

func NewInventoryController(inventoryService InventoryService) *InventoryController {
	return &InventoryController{
		InventoryService: inventoryService,
	}
}

type UpdateByBodyRequest struct {
	ID string `json:"id"`
	UpdateItemInput
}

type FavoriteRequest struct {
	UserID string `json:"userId"`
}

// ListItems handles GET /api/inventory
func (ctrl *InventoryController) ListItems(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

	q := Query{
		Search: c.Query("search"),
		Sort:   c.Query("sort", "createdAt"),
		Desc:   c.Query("order", "desc") == "desc",
	}

	items, p, err := ctrl.InventoryService.ListItems(c.UserContext(), q, common_models.NewPage(page, limit))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"items":      items,
		"total":      p.Total,
		"page":       p.Page,
		"totalPages": p.TotalPages,
	})
}

func (ctrl *InventoryController) CreateItem(c *fiber.Ctx) error {
	var in CreateItemInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	item, err := ctrl.InventoryService.CreateItem(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": item.ID})
}

// UpdateItem handles PUT /api/inventory
// The body carries the item id. Returns 400 when nothing differs from the stored item.
func (ctrl *InventoryController) UpdateItem(c *fiber.Ctx) error {
	var req UpdateByBodyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if err := ctrl.InventoryService.UpdateItem(c.UserContext(), req.ID, req.UpdateItemInput); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Item updated successfully"})
}

func (ctrl *InventoryController) GetItem(c *fiber.Ctx) error {
	item, err := ctrl.InventoryService.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

// ToggleFavorite handles POST /api/inventory/{id}/favorite
// Adds or removes the item in a user's favorites. userId defaults to the caller.
func (ctrl *InventoryController) ToggleFavorite(c *fiber.Ctx) error {
	var req FavoriteRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("Invalid request body")
		}
	}
	if req.UserID == "" {
		claims, err := middleware.Claims(c)
		if err != nil {
			return err
		}
		req.UserID = claims.UserID
	}

	isFavorite, err := ctrl.InventoryService.ToggleFavorite(c.UserContext(), c.Params("id"), req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "isFavorite": isFavorite})
}
