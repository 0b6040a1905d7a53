package middleware

import (
	"context"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/features/permission"

	"github.com/gofiber/fiber/v2"
)

// PermissionChecker resolves a user's effective permission flags
type PermissionChecker interface {
	EffectivePermissions(ctx context.Context, userID string) (permission.Flags, error)
}

// RequirePermission rejects the request unless the caller holds flag.
// Must run after AuthMiddleware.
func RequirePermission(checker PermissionChecker, flag permission.Flag) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := Claims(c)
		if err != nil {
			return err
		}
		if claims.UserID == DevUserID {
			return c.Next()
		}

		flags, err := checker.EffectivePermissions(c.UserContext(), claims.UserID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.Auth("User not found")
			}
			return err
		}
		if !flags.Get(flag) {
			return apperr.Forbidden("Access denied: missing " + string(flag) + " permission")
		}
		return c.Next()
	}
}
