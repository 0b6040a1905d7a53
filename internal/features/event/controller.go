package event

import (
	"realty-crm/internal/common/apperr"

	"github.com/gofiber/fiber/v2"
)

type EventController struct {
	EventService EventService
}

func NewEventController(eventService EventService) *EventController {
	return &EventController{
		EventService: eventService,
	}
}

type UpdateByBodyRequest struct {
	ID string `json:"_id"`
	UpdateEventInput
}

// ListEvents handles GET /api/events
// Ad-hoc events and mirrored showings, ordered by date and time
func (ctrl *EventController) ListEvents(c *fiber.Ctx) error {
	events, err := ctrl.EventService.ListEvents(c.UserContext(), ListFilter{
		From:   c.Query("from"),
		To:     c.Query("to"),
		LeadID: c.Query("leadId"),
		Type:   c.Query("type"),
	})
	if err != nil {
		return err
	}
	return c.JSON(events)
}

// CreateEvent handles POST /api/events
func (ctrl *EventController) CreateEvent(c *fiber.Ctx) error {
	var in CreateEventInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	e, err := ctrl.EventService.CreateEvent(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// UpdateEventByBody handles PUT /api/events
// The body carries the event's _id. Changes are not pushed back to the lead.
func (ctrl *EventController) UpdateEventByBody(c *fiber.Ctx) error {
	var req UpdateByBodyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}
	if req.ID == "" {
		return apperr.Validation("Event ID is required")
	}

	e, err := ctrl.EventService.UpdateEvent(c.UserContext(), req.ID, req.UpdateEventInput)
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (ctrl *EventController) GetEvent(c *fiber.Ctx) error {
	e, err := ctrl.EventService.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (ctrl *EventController) UpdateEvent(c *fiber.Ctx) error {
	var in UpdateEventInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	if _, err := ctrl.EventService.UpdateEvent(c.UserContext(), c.Params("id"), in); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (ctrl *EventController) DeleteEvent(c *fiber.Ctx) error {
	if err := ctrl.EventService.DeleteEvent(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}
