package reminder

import (
	"context"
	"time"

	"realty-crm/internal/common/apperr"
	"realty-crm/internal/common/validate"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ReminderService interface {
	ListReminders(ctx context.Context, userID string) ([]Reminder, error)
	GetReminder(ctx context.Context, id string) (*Reminder, error)
	CreateReminder(ctx context.Context, in CreateReminderInput) (*Reminder, error)
	UpdateReminder(ctx context.Context, id string, in UpdateReminderInput) error
	DeleteReminder(ctx context.Context, id string) error
}

type ReminderServiceImpl struct {
	Repo   ReminderRepository
	Logger *zap.Logger
}

func NewReminderService(repo ReminderRepository, logger *zap.Logger) ReminderService {
	return &ReminderServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func parseID(id, msg string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(msg)
	}
	return oid, nil
}

func (s *ReminderServiceImpl) ListReminders(ctx context.Context, userID string) ([]Reminder, error) {
	if userID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	uid, err := parseID(userID, "Invalid user ID")
	if err != nil {
		return nil, err
	}

	reminders, err := s.Repo.ListByUser(ctx, uid)
	if err != nil {
		return nil, apperr.Unexpected("Failed to fetch reminders", err)
	}
	return reminders, nil
}

func (s *ReminderServiceImpl) GetReminder(ctx context.Context, id string) (*Reminder, error) {
	oid, err := parseID(id, "Invalid reminder ID")
	if err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, oid)
}

// CreateReminder stores a pending reminder; the dispatcher sends it once due
func (s *ReminderServiceImpl) CreateReminder(ctx context.Context, in CreateReminderInput) (*Reminder, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	uid, err := parseID(in.UserID, "Invalid user ID")
	if err != nil {
		return nil, err
	}

	now := time.Now()
	rem := &Reminder{
		UserID:        uid,
		PhoneNumber:   in.PhoneNumber,
		Message:       in.Message,
		ScheduledTime: in.ScheduledTime.UTC(),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Repo.Create(ctx, rem); err != nil {
		return nil, apperr.Unexpected("Failed to create reminder", err)
	}

	s.Logger.Info("Reminder scheduled",
		zap.String("reminderId", rem.ID.Hex()),
		zap.Time("scheduledTime", rem.ScheduledTime))
	return rem, nil
}

// UpdateReminder edits the reminder and puts it back in the queue, so a
// sent or failed reminder goes out again at its (new) time.
func (s *ReminderServiceImpl) UpdateReminder(ctx context.Context, id string, in UpdateReminderInput) error {
	oid, err := parseID(id, "Invalid reminder ID")
	if err != nil {
		return err
	}
	if err := validate.Struct(in); err != nil {
		return err
	}

	set := bson.M{
		"status":    StatusPending,
		"lastError": "",
		"updatedAt": time.Now(),
	}
	if in.PhoneNumber != nil {
		set["phoneNumber"] = *in.PhoneNumber
	}
	if in.Message != nil {
		set["message"] = *in.Message
	}
	if in.ScheduledTime != nil {
		set["scheduledTime"] = in.ScheduledTime.UTC()
	}

	return s.Repo.Update(ctx, oid, set)
}

func (s *ReminderServiceImpl) DeleteReminder(ctx context.Context, id string) error {
	oid, err := parseID(id, "Invalid reminder ID")
	if err != nil {
		return err
	}
	return s.Repo.Delete(ctx, oid)
}
