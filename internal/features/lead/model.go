package lead

import (
	"bytes"
	"encoding/json"
	"time"

	common_models "realty-crm/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Showing struct {
	ID        string                `bson:"id" json:"id"`
	Date      common_models.ISODate `bson:"date" json:"date"`
	Time      string                `bson:"time,omitempty" json:"time,omitempty"`
	Property  string                `bson:"property,omitempty" json:"property,omitempty"`
	Notes     string                `bson:"notes,omitempty" json:"notes,omitempty"`
	Status    string                `bson:"status" json:"status" validate:"omitempty,oneof=scheduled completed cancelled"`
	CreatedAt string                `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

type Task struct {
	ID          string `bson:"id" json:"id"`
	Title       string `bson:"title" json:"title"`
	Date        string `bson:"date,omitempty" json:"date,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Status      string `bson:"status,omitempty" json:"status,omitempty" validate:"omitempty,oneof=pending completed cancelled"`
	Priority    string `bson:"priority,omitempty" json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// NoteEntry is one appended note. Timestamps strictly increase per lead.
type NoteEntry struct {
	ID        string    `bson:"id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Content   string    `bson:"content" json:"content"`
	LeadName  string    `bson:"leadName" json:"leadName"`
}

type CallRecord struct {
	Date      common_models.ISODate `bson:"date" json:"date"`
	Duration  int                   `bson:"duration" json:"duration"`
	Recording string                `bson:"recording,omitempty" json:"recording,omitempty"`
}

type Budget struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

type PropertyPreferences struct {
	Budget       Budget   `bson:"budget" json:"budget"`
	PropertyType []string `bson:"propertyType,omitempty" json:"propertyType,omitempty"`
	Bedrooms     int      `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms    int      `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Locations    []string `bson:"locations,omitempty" json:"locations,omitempty"`
	Features     []string `bson:"features,omitempty" json:"features,omitempty"`
}

// Lead ids are ObjectIDs for leads created here; older documents may carry
// plain string ids, so ID holds whichever the document has.
type Lead struct {
	ID                  interface{}          `bson:"_id,omitempty" json:"_id"`
	Name                string               `bson:"name" json:"name"`
	Email               string               `bson:"email,omitempty" json:"email,omitempty"`
	Phone               string               `bson:"phone,omitempty" json:"phone,omitempty"`
	Date                string               `bson:"date,omitempty" json:"date,omitempty"`
	Status              string               `bson:"status,omitempty" json:"status,omitempty"`
	Property            string               `bson:"property,omitempty" json:"property,omitempty"`
	Location            string               `bson:"location,omitempty" json:"location,omitempty"`
	Notes               string               `bson:"notes,omitempty" json:"notes,omitempty"`
	NotesHistory        []NoteEntry          `bson:"notesHistory,omitempty" json:"notesHistory,omitempty"`
	Showings            []Showing            `bson:"showings,omitempty" json:"showings,omitempty"`
	Tasks               []Task               `bson:"tasks,omitempty" json:"tasks,omitempty"`
	CallHistory         []CallRecord         `bson:"callHistory,omitempty" json:"callHistory,omitempty"`
	AssignedTo          string               `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	LeadStatus          string               `bson:"leadStatus,omitempty" json:"leadStatus,omitempty"`
	LeadType            string               `bson:"leadType,omitempty" json:"leadType,omitempty"`
	LeadSource          string               `bson:"leadSource,omitempty" json:"leadSource,omitempty"`
	LeadResponse        string               `bson:"leadResponse,omitempty" json:"leadResponse,omitempty"`
	ClientType          string               `bson:"clientType,omitempty" json:"clientType,omitempty"`
	LeadConversion      string               `bson:"leadConversion,omitempty" json:"leadConversion,omitempty"`
	Language            string               `bson:"language,omitempty" json:"language,omitempty"`
	PropertyPreferences *PropertyPreferences `bson:"propertyPreferences,omitempty" json:"propertyPreferences,omitempty"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IDString renders the id the way clients address the lead
func (l *Lead) IDString() string {
	switch id := l.ID.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		b, _ := json.Marshal(id)
		return string(bytes.Trim(b, `"`))
	}
}

type CreateLeadInput struct {
	Name                string               `json:"name" validate:"required"`
	Email               string               `json:"email,omitempty" validate:"omitempty,email"`
	Phone               string               `json:"phone,omitempty"`
	Date                string               `json:"date,omitempty"`
	Status              string               `json:"status,omitempty"`
	Property            string               `json:"property,omitempty"`
	Location            string               `json:"location,omitempty"`
	Notes               string               `json:"notes,omitempty"`
	AssignedTo          string               `json:"assignedTo,omitempty"`
	LeadStatus          string               `json:"leadStatus,omitempty" validate:"omitempty,oneof=hot warm cold mild"`
	LeadType            string               `json:"leadType,omitempty" validate:"omitempty,oneof=pre-construction resale seller buyer"`
	LeadSource          string               `json:"leadSource,omitempty" validate:"omitempty,oneof=google-ads meta referral linkedin youtube"`
	LeadResponse        string               `json:"leadResponse,omitempty"`
	ClientType          string               `json:"clientType,omitempty"`
	LeadConversion      string               `json:"leadConversion,omitempty"`
	Language            string               `json:"language,omitempty"`
	PropertyPreferences *PropertyPreferences `json:"propertyPreferences,omitempty"`
	Showings            []Showing            `json:"showings,omitempty" validate:"dive"`
	Tasks               []Task               `json:"tasks,omitempty" validate:"dive"`
}

// UpdateLeadInput lists the fields a lead update may touch; nil means unchanged.
type UpdateLeadInput struct {
	Name                *string              `json:"name,omitempty"`
	Email               *string              `json:"email,omitempty" validate:"omitempty,email"`
	Phone               *string              `json:"phone,omitempty"`
	Date                *string              `json:"date,omitempty"`
	Status              *string              `json:"status,omitempty"`
	Property            *string              `json:"property,omitempty"`
	Location            *string              `json:"location,omitempty"`
	Notes               *string              `json:"notes,omitempty"`
	AssignedTo          *string              `json:"assignedTo,omitempty"`
	LeadStatus          *string              `json:"leadStatus,omitempty" validate:"omitempty,oneof=hot warm cold mild"`
	LeadType            *string              `json:"leadType,omitempty" validate:"omitempty,oneof=pre-construction resale seller buyer"`
	LeadSource          *string              `json:"leadSource,omitempty" validate:"omitempty,oneof=google-ads meta referral linkedin youtube"`
	LeadResponse        *string              `json:"leadResponse,omitempty"`
	ClientType          *string              `json:"clientType,omitempty"`
	LeadConversion      *string              `json:"leadConversion,omitempty"`
	Language            *string              `json:"language,omitempty"`
	PropertyPreferences *PropertyPreferences `json:"propertyPreferences,omitempty"`
	CallHistory         *[]CallRecord        `json:"callHistory,omitempty"`
	Tasks               *[]Task              `json:"tasks,omitempty" validate:"omitempty,dive"`
	Showings            *ShowingsPatch       `json:"showings,omitempty"`
}

// ShowingsPatch is either a full replacement array or a single showing to
// append, depending on the JSON shape.
type ShowingsPatch struct {
	Replace []Showing `validate:"dive"`
	Add     *Showing
}

func (p *ShowingsPatch) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		p.Add = nil
		p.Replace = []Showing{}
		return json.Unmarshal(data, &p.Replace)
	}
	var s Showing
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	p.Replace = nil
	p.Add = &s
	return nil
}

// IsReplace reports whether the patch carries a whole array
func (p *ShowingsPatch) IsReplace() bool {
	return p.Add == nil
}
