package event

import (
	"time"

	common_models "realty-crm/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const StatusScheduled = "scheduled"

// Event is a calendar entry. Events that mirror a lead showing carry
// LeadID, LeadName, ShowingID and LastSynced.
type Event struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty" json:"_id"`
	Title       string                `bson:"title" json:"title"`
	Date        common_models.ISODate `bson:"date" json:"date"`
	Time        string                `bson:"time,omitempty" json:"time,omitempty"`
	Type        string                `bson:"type,omitempty" json:"type,omitempty"`
	Description string                `bson:"description,omitempty" json:"description,omitempty"`
	Location    string                `bson:"location,omitempty" json:"location,omitempty"`
	Status      string                `bson:"status" json:"status"`
	LeadID      string                `bson:"leadId,omitempty" json:"leadId,omitempty"`
	LeadName    string                `bson:"leadName,omitempty" json:"leadName,omitempty"`
	ShowingID   string                `bson:"showingId,omitempty" json:"showingId,omitempty"`
	LastSynced  *time.Time            `bson:"lastSynced,omitempty" json:"lastSynced,omitempty"`
	CreatedAt   time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time             `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// IsShowing reports whether the event mirrors a lead showing
func (e *Event) IsShowing() bool {
	return e.ShowingID != ""
}

type CreateEventInput struct {
	Title       string `json:"title" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time,omitempty"`
	Type        string `json:"type,omitempty" validate:"omitempty,oneof=viewing meeting open-house follow-up call"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
	LeadID      string `json:"leadId,omitempty"`
	LeadName    string `json:"leadName,omitempty"`
}

// UpdateEventInput is a partial update. Showing linkage fields are not
// accepted; they belong to the projector.
type UpdateEventInput struct {
	Title       *string `json:"title,omitempty"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	Type        *string `json:"type,omitempty" validate:"omitempty,oneof=viewing meeting open-house follow-up call"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=scheduled completed cancelled"`
}

// ListFilter narrows a listing. From and To compare against the ISO date string.
type ListFilter struct {
	From   string
	To     string
	LeadID string
	Type   string
}

type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeSynced  ChangeKind = "synced"
)

// Change is what calendar subscribers receive
type Change struct {
	Kind    ChangeKind `json:"kind"`
	EventID string     `json:"eventId,omitempty"`
	Event   *Event     `json:"event,omitempty"`
	LeadID  string     `json:"leadId,omitempty"`
}
