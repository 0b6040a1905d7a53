package user

import (
	"strconv"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	UserService UserService
}

func NewUserController(userService UserService) *UserController {
	return &UserController{
		UserService: userService,
	}
}

type UpdateByBodyRequest struct {
	ID string `json:"id"`
	UpdateUserInput
}

type SetPermissionsRequest struct {
	Permissions permission.Patch `json:"permissions"`
}

// ListUsers handles GET /api/users
// Paginated user list, searchable by name or email
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

	users, p, err := ctrl.UserService.ListUsers(c.UserContext(), c.Query("search"), common_models.NewPage(page, limit))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"users":      users,
		"total":      p.Total,
		"page":       p.Page,
		"totalPages": p.TotalPages,
	})
}

// GetUser handles GET /api/users/{id}
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	u, err := ctrl.UserService.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

// CreateUser handles POST /api/users
func (ctrl *UserController) CreateUser(c *fiber.Ctx) error {
	var req CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	u, err := ctrl.UserService.CreateUser(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	})
}

// UpdateUserByBody handles PUT /api/users
func (ctrl *UserController) UpdateUserByBody(c *fiber.Ctx) error {
	var req UpdateByBodyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.ID == "" {
		return apperr.Validation("User ID is required")
	}

	u, err := ctrl.UserService.UpdateUser(c.UserContext(), req.ID, req.UpdateUserInput)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "user": u})
}

// UpdateUser handles PUT /api/users/{id}
func (ctrl *UserController) UpdateUser(c *fiber.Ctx) error {
	var req UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if _, err := ctrl.UserService.UpdateUser(c.UserContext(), c.Params("id"), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// PatchUser handles PATCH /api/users/{id}
// Role "admin" in any case grants every permission
func (ctrl *UserController) PatchUser(c *fiber.Ctx) error {
	var req UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if _, err := ctrl.UserService.UpdateUser(c.UserContext(), c.Params("id"), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User updated successfully"})
}

// SetPermissions handles POST /api/users/{id}/permissions
func (ctrl *UserController) SetPermissions(c *fiber.Ctx) error {
	var req SetPermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if _, err := ctrl.UserService.SetPermissions(c.UserContext(), c.Params("id"), req.Permissions); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// DeleteUser handles DELETE /api/users/{id}
func (ctrl *UserController) DeleteUser(c *fiber.Ctx) error {
	if err := ctrl.UserService.DeleteUser(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// GetProfile returns the caller's own record
func (ctrl *UserController) GetProfile(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	u, err := ctrl.UserService.GetUser(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

type avatarRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

// UpdateAvatar sets the caller's avatar URL
func (ctrl *UserController) UpdateAvatar(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}

	var req avatarRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	u, err := ctrl.UserService.UpdateAvatar(c.UserContext(), claims.UserID, req.AvatarURL)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Avatar updated successfully",
		"avatar":  u.Avatar,
	})
}

// UpdateProfile updates name, username and phone of the caller
func (ctrl *UserController) UpdateProfile(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}

	var req ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if _, err := ctrl.UserService.UpdateProfile(c.UserContext(), claims.UserID, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully",
	})
}
