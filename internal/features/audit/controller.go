package audit

import (
	"strconv"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type AuditController struct {
	Service AuditService
}

func NewAuditController(service AuditService) *AuditController {
	return &AuditController{Service: service}
}

// ListLogs returns audit entries, newest first
func (ctrl *AuditController) ListLogs(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)

	filter := Filter{
		Module:   c.Query("module"),
		RecordID: c.Query("recordId"),
		ActorID:  c.Query("actorId"),
	}

	logs, p, err := ctrl.Service.ListLogs(c.UserContext(), filter, common_models.NewPage(page, limit))
	if err != nil {
		return apperr.Unexpected("Failed to fetch audit logs", err)
	}

	return c.JSON(fiber.Map{
		"logs":       logs,
		"total":      p.Total,
		"page":       p.Page,
		"totalPages": p.TotalPages,
	})
}
