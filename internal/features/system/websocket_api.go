package system

import (
	"realty-crm/internal/common/apperr"
	"realty-crm/internal/config"
	"realty-crm/internal/features/permission"
	"realty-crm/internal/middleware"
	"realty-crm/pkg/utils"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type WebSocketApi struct {
	hub     *CalendarHub
	config  *config.Config
	checker middleware.PermissionChecker
}

func NewWebSocketApi(hub *CalendarHub, cfg *config.Config, checker middleware.PermissionChecker) *WebSocketApi {
	return &WebSocketApi{
		hub:     hub,
		config:  cfg,
		checker: checker,
	}
}

func (h *WebSocketApi) Setup(app *fiber.App) {
	app.Get("/api/ws/calendar",
		h.upgrade,
		middleware.RequirePermission(h.checker, permission.Calendar),
		websocket.New(h.hub.Serve),
	)
}

// upgrade accepts only websocket handshakes. Browsers cannot set headers on
// the handshake, so the access token may come as ?token=.
func (h *WebSocketApi) upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	if token := c.Query("token"); token != "" && !h.config.SkipAuth {
		claims, err := utils.ValidateToken(token, utils.TokenAccess)
		if err != nil {
			return apperr.Auth("Invalid token")
		}
		c.Locals(utils.UserClaimsKey, claims)
		c.SetUserContext(utils.WithClaims(c.UserContext(), claims))
		return c.Next()
	}
	return middleware.AuthMiddleware(h.config.SkipAuth)(c)
}
