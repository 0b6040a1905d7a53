package system

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// SyncMonitor reports failed showing projections
type SyncMonitor interface {
	SyncFailures() int64
}

type HealthController struct {
	db      Pinger
	sync    SyncMonitor
	hub     *CalendarHub
	started time.Time
}

func NewHealthController(db Pinger, sync SyncMonitor, hub *CalendarHub) *HealthController {
	return &HealthController{
		db:      db,
		sync:    sync,
		hub:     hub,
		started: time.Now(),
	}
}

// Health handles GET /api/health
// Database reachability and the showing sync failure count
func (h *HealthController) Health(c *fiber.Ctx) error {
	status, database, code := "ok", "up", fiber.StatusOK
	if err := h.db.Ping(c.UserContext()); err != nil {
		status, database, code = "degraded", "down", fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       status,
		"database":     database,
		"syncFailures": h.sync.SyncFailures(),
		"subscribers":  h.hub.Subscribers(),
		"uptime":       time.Since(h.started).Round(time.Second).String(),
	})
}

type HealthApi struct {
	controller *HealthController
}

func NewHealthApi(controller *HealthController) *HealthApi {
	return &HealthApi{controller: controller}
}

func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", h.controller.Health)
}
