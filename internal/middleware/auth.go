package middleware

import (
	"strings"

	"realty-crm/internal/common/apperr"
	"realty-crm/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// DevUserID is injected when SKIP_AUTH is set
const DevUserID = "dev-admin-id"

// AuthMiddleware validates bearer access tokens and stores the claims on the
// request's user context.
func AuthMiddleware(skipAuth bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth {
			dummyClaims := &utils.UserClaims{
				UserID: DevUserID,
				Role:   "Administrator",
				Type:   utils.TokenAccess,
			}
			c.Locals(utils.UserClaimsKey, dummyClaims)
			c.SetUserContext(utils.WithClaims(c.UserContext(), dummyClaims))
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Auth("Authorization header required")
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			return apperr.Auth("Invalid authorization header format")
		}

		claims, err := utils.ValidateToken(token, utils.TokenAccess)
		if err != nil {
			return apperr.Auth("Invalid token")
		}

		c.Locals(utils.UserClaimsKey, claims)
		c.SetUserContext(utils.WithClaims(c.UserContext(), claims))
		return c.Next()
	}
}

// Claims returns the claims set by AuthMiddleware
func Claims(c *fiber.Ctx) (*utils.UserClaims, error) {
	claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok || claims == nil {
		return nil, apperr.Auth("Unauthorized")
	}
	return claims, nil
}
