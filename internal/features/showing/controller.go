package showing

import (
	"realty-crm/internal/common/apperr"
	"realty-crm/internal/features/lead"

	"github.com/gofiber/fiber/v2"
)

type ShowingController struct {
	ShowingService ShowingService
}

func NewShowingController(showingService ShowingService) *ShowingController {
	return &ShowingController{
		ShowingService: showingService,
	}
}

// ListLeadShowings handles GET /api/leads/{leadId}/showings
func (ctrl *ShowingController) ListLeadShowings(c *fiber.Ctx) error {
	showings, err := ctrl.ShowingService.ListForLead(c.UserContext(), c.Params("leadId"))
	if err != nil {
		return err
	}
	return c.JSON(showings)
}

// ReplaceLeadShowings handles PUT /api/leads/{leadId}/showings
// Stores the array as given (ids filled in) and mirrors every showing to the calendar
func (ctrl *ShowingController) ReplaceLeadShowings(c *fiber.Ctx) error {
	var in ReplaceShowingsInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	showings, err := ctrl.ShowingService.ReplaceForLead(c.UserContext(), c.Params("leadId"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "showings": showings})
}

// AddLeadShowing handles POST /api/leads/{leadId}/showings
func (ctrl *ShowingController) AddLeadShowing(c *fiber.Ctx) error {
	var in lead.Showing
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	showing, err := ctrl.ShowingService.AddForLead(c.UserContext(), c.Params("leadId"), in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "showing": showing})
}

// ListAllShowings handles GET /api/showings
// Every lead's showings for the calendar; each is re-synced to events
func (ctrl *ShowingController) ListAllShowings(c *fiber.Ctx) error {
	showings, err := ctrl.ShowingService.ListAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(showings)
}
