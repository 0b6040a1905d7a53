package lead

import (
	"strconv"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

type LeadController struct {
	LeadService LeadService
}

func NewLeadController(leadService LeadService) *LeadController {
	return &LeadController{
		LeadService: leadService,
	}
}

// ListLeads handles GET /api/leads
// Newest first, searchable by name, email, phone or property
func (ctrl *LeadController) ListLeads(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)

	filter := ListFilter{
		Search:     c.Query("search"),
		LeadStatus: c.Query("leadStatus"),
		AssignedTo: c.Query("assignedTo"),
	}

	leads, p, err := ctrl.LeadService.ListLeads(c.UserContext(), filter, common_models.NewPage(page, limit))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"leads":      leads,
		"total":      p.Total,
		"page":       p.Page,
		"totalPages": p.TotalPages,
	})
}

// CreateLead handles POST /api/leads
func (ctrl *LeadController) CreateLead(c *fiber.Ctx) error {
	var in CreateLeadInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	l, err := ctrl.LeadService.CreateLead(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(l)
}

// ImportLeads handles POST /api/leads/import
// Upload a .csv or .xlsx file whose first row names the lead fields
func (ctrl *LeadController) ImportLeads(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperr.Validation("file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return apperr.Unexpected("Failed to open file", err)
	}
	defer file.Close()

	rows, err := ParseSheet(file, fileHeader.Filename)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	res, err := ctrl.LeadService.ImportLeads(c.UserContext(), rows)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// GetLead handles GET /api/leads/{leadId}
func (ctrl *LeadController) GetLead(c *fiber.Ctx) error {
	l, err := ctrl.LeadService.GetLead(c.UserContext(), c.Params("leadId"))
	if err != nil {
		return err
	}
	return c.JSON(l)
}

// UpdateLead handles PUT /api/leads/{leadId}
// Partial update. Notes are appended to the history. showings may be an array (replace) or one object (append).
func (ctrl *LeadController) UpdateLead(c *fiber.Ctx) error {
	var in UpdateLeadInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("Invalid request body")
	}

	l, err := ctrl.LeadService.UpdateLead(c.UserContext(), c.Params("leadId"), in)
	if err != nil {
		return err
	}
	return c.JSON(l)
}

func (ctrl *LeadController) DeleteLead(c *fiber.Ctx) error {
	if err := ctrl.LeadService.DeleteLead(c.UserContext(), c.Params("leadId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Lead deleted successfully"})
}
