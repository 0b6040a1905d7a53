package auth

import (
	"realty-crm/internal/config"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	auth := app.Group("/api/auth")

	// Public routes
	auth.Post("/register", h.controller.Register)
	auth.Post("/login", h.controller.Login)
	auth.Post("/logout", h.controller.Logout)
	auth.Post("/refresh", h.controller.Refresh)
	auth.Post("/forgot-password", h.controller.ForgotPassword)
	auth.Post("/reset-password", h.controller.ResetPassword)
	auth.Post("/verify-email", h.controller.VerifyEmail)
	auth.Post("/resend-verification", h.controller.ResendVerification)
	auth.Post("/check-token", h.controller.CheckToken)
	auth.Post("/check-email", h.controller.CheckEmail)
	auth.Post("/check-password", h.controller.CheckPassword)

	// Bearer token required
	protected := middleware.AuthMiddleware(h.config.SkipAuth)
	auth.Get("/check-session", protected, h.controller.CheckSession)
	auth.Get("/check-role", protected, h.controller.CheckRole)
	auth.Get("/check-permissions", protected, h.controller.CheckPermissions)
	auth.Put("/update-profile", protected, h.controller.UpdateProfile)
	auth.Delete("/delete-account", protected, h.controller.DeleteAccount)
}
