package auth

import (
	"realty-crm/internal/common/apperr"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{
		AuthService: authService,
	}
}

type emailRequest struct {
	Email string `json:"email"`
}

type tokenRequest struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

// Register handles POST /api/auth/register
// Creates a user with the default role and returns an access token
func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	u, token, err := ctrl.AuthService.Register(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  u,
		"token": token,
	})
}

// Login handles POST /api/auth/login
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	session, err := ctrl.AuthService.Login(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

// Logout is stateless; clients drop their tokens
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "message": "Logged out successfully"})
}

// Refresh handles POST /api/auth/refresh
func (ctrl *AuthController) Refresh(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	session, err := ctrl.AuthService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(session)
}

func (ctrl *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.ResetPassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password reset successfully"})
}

func (ctrl *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var req tokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.VerifyEmail(c.UserContext(), req.Token); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// CheckToken handles POST /api/auth/check-token
func (ctrl *AuthController) CheckToken(c *fiber.Ctx) error {
	var req CheckTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.CheckToken(c.UserContext(), req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"valid": true})
}

func (ctrl *AuthController) ResendVerification(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.ResendVerification(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// CheckEmail never reveals whether the address is registered
func (ctrl *AuthController) CheckEmail(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.Email == "" {
		return apperr.Validation("Email is required")
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *AuthController) CheckPassword(c *fiber.Ctx) error {
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.Password == "" {
		return apperr.Validation("Password is required")
	}
	return c.JSON(CheckPasswordStrength(req.Password))
}

func (ctrl *AuthController) CheckSession(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	u, err := ctrl.AuthService.CurrentUser(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": u, "role": claims.Role})
}

func (ctrl *AuthController) CheckRole(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	u, err := ctrl.AuthService.CurrentUser(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"role":    u.Role,
		"isAdmin": permission.ParseRole(u.Role).IsAdministrator(),
	})
}

func (ctrl *AuthController) CheckPermissions(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	flags, role, err := ctrl.AuthService.Permissions(c.UserContext(), claims.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"permissions": flags, "role": role})
}

// UpdateProfile handles PUT /api/auth/update-profile
// Role, password, verification state and timestamps cannot be changed here
func (ctrl *AuthController) UpdateProfile(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	var req ProfileUpdate
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.UpdateProfile(c.UserContext(), claims.UserID, req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *AuthController) DeleteAccount(c *fiber.Ctx) error {
	claims, err := middleware.Claims(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if err := ctrl.AuthService.DeleteAccount(c.UserContext(), claims.UserID, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
