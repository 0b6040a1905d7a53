package showing

import "realty-crm/internal/features/lead"

// LeadShowing is a showing returned with its lead's identity
type LeadShowing struct {
	lead.Showing
	LeadID   string `json:"leadId"`
	LeadName string `json:"leadName"`
}

// CalendarShowing is the aggregate listing shape, with the fields the
// calendar renders filled in.
type CalendarShowing struct {
	LeadShowing
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type ReplaceShowingsInput struct {
	Showings []lead.Showing `json:"showings" validate:"required,dive"`
}
