package event

import (
	"context"
	"time"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const auditModule = "events"

// Publisher fans calendar changes out to live subscribers
type Publisher interface {
	Publish(change Change)
}

type EventService interface {
	ListEvents(ctx context.Context, filter ListFilter) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type EventServiceImpl struct {
	Repo      EventRepository
	Publisher Publisher
	Audit     audit.AuditService
	Logger    *zap.Logger
}

func NewEventService(repo EventRepository, publisher Publisher, auditService audit.AuditService, logger *zap.Logger) EventService {
	return &EventServiceImpl{
		Repo:      repo,
		Publisher: publisher,
		Audit:     auditService,
		Logger:    logger,
	}
}

// ParseID turns a path or body id into an ObjectID
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid event ID")
	}
	return oid, nil
}

func (s *EventServiceImpl) ListEvents(ctx context.Context, filter ListFilter) ([]Event, error) {
	events, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Unexpected("Failed to fetch events", err)
	}
	return events, nil
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id string) (*Event, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	e := &Event{
		Title:       in.Title,
		Date:        common_models.ISODate(in.Date),
		Time:        in.Time,
		Type:        in.Type,
		Description: in.Description,
		Location:    in.Location,
		Status:      in.Status,
		LeadID:      in.LeadID,
		LeadName:    in.LeadName,
		CreatedAt:   time.Now(),
	}
	if e.Status == "" {
		e.Status = StatusScheduled
	}

	if err := s.Repo.Create(ctx, e); err != nil {
		return nil, apperr.Unexpected("Failed to create event", err)
	}

	s.Publisher.Publish(Change{Kind: ChangeCreated, EventID: e.ID.Hex(), Event: e})
	s.Audit.LogChange(ctx, common_models.AuditActionCreate, auditModule, e.ID.Hex(), nil)
	return e, nil
}

// UpdateEvent changes the event only. A mirrored showing keeps its own
// state; the next sync from the lead overwrites these fields.
func (s *EventServiceImpl) UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (*Event, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("title", in.Title)
	put("date", in.Date)
	put("time", in.Time)
	put("type", in.Type)
	put("description", in.Description)
	put("location", in.Location)
	put("status", in.Status)

	e, err := s.Repo.Update(ctx, oid, set)
	if err != nil {
		return nil, err
	}

	if e.IsShowing() {
		s.Logger.Debug("Edited a mirrored showing event; lead is unchanged",
			zap.String("eventId", id),
			zap.String("showingId", e.ShowingID))
	}

	s.Publisher.Publish(Change{Kind: ChangeUpdated, EventID: id, Event: e})
	s.Audit.LogChange(ctx, common_models.AuditActionUpdate, auditModule, id, nil)
	return e, nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	oid, err := ParseID(id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, oid); err != nil {
		return err
	}

	s.Publisher.Publish(Change{Kind: ChangeDeleted, EventID: id})
	s.Audit.LogChange(ctx, common_models.AuditActionDelete, auditModule, id, nil)
	return nil
}
