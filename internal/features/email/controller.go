package email

import (
	"strconv"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type EmailController struct {
	Service EmailService
}

func NewEmailController(service EmailService) *EmailController {
	return &EmailController{Service: service}
}

// SendEmail handles POST /api/email/send
func (ctrl *EmailController) SendEmail(c *fiber.Ctx) error {
	var req SendInput
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	record, err := ctrl.Service.Send(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "id": record.ID})
}

// ListSent returns the sent-mail log
func (ctrl *EmailController) ListSent(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "50"), 10, 64)

	emails, p, err := ctrl.Service.ListSent(c.UserContext(), common_models.NewPage(page, limit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"emails":     emails,
		"total":      p.Total,
		"page":       p.Page,
		"totalPages": p.TotalPages,
	})
}

// Inbox returns the newest received messages
func (ctrl *EmailController) Inbox(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	msgs, err := ctrl.Service.Inbox(c.UserContext(), limit)
	if err != nil {
		return err
	}
	return c.JSON(msgs)
}
