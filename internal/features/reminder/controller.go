package reminder

import (
	"realty-crm/internal/common/apperr"
	"realty-crm/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReminderController struct {
	ReminderService ReminderService
}

func NewReminderController(reminderService ReminderService) *ReminderController {
	return &ReminderController{
		ReminderService: reminderService,
	}
}

// ListReminders handles GET /api/reminder
func (ctrl *ReminderController) ListReminders(c *fiber.Ctx) error {
	userID := c.Query("userId")
	if userID == "" {
		if claims, err := middleware.Claims(c); err == nil && claims.UserID != middleware.DevUserID {
			userID = claims.UserID
		}
	}

	reminders, err := ctrl.ReminderService.ListReminders(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(reminders)
}

// CreateReminder handles POST /api/reminder
func (ctrl *ReminderController) CreateReminder(c *fiber.Ctx) error {
	var in CreateReminderInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Missing required fields")
	}

	rem, err := ctrl.ReminderService.CreateReminder(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"id": rem.ID})
}

func (ctrl *ReminderController) GetReminder(c *fiber.Ctx) error {
	rem, err := ctrl.ReminderService.GetReminder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rem)
}

func (ctrl *ReminderController) UpdateReminder(c *fiber.Ctx) error {
	var in UpdateReminderInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if err := ctrl.ReminderService.UpdateReminder(c.UserContext(), c.Params("id"), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *ReminderController) DeleteReminder(c *fiber.Ctx) error {
	if err := ctrl.ReminderService.DeleteReminder(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
