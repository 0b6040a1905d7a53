package reminder

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"realty-crm/internal/common/apperr"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type MockReminderRepo struct {
	reminders map[primitive.ObjectID]*Reminder
}

func newMockReminderRepo() *MockReminderRepo {
	return &MockReminderRepo{reminders: map[primitive.ObjectID]*Reminder{}}
}

func (m *MockReminderRepo) Create(ctx context.Context, r *Reminder) error {
	r.ID = primitive.NewObjectID()
	cp := *r
	m.reminders[r.ID] = &cp
	return nil
}

func (m *MockReminderRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*Reminder, error) {
	r, ok := m.reminders[id]
	if !ok {
		return nil, apperr.NotFound("Reminder not found")
	}
	cp := *r
	return &cp, nil
}

func (m *MockReminderRepo) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]Reminder, error) {
	out := []Reminder{}
	for _, r := range m.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MockReminderRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	r, ok := m.reminders[id]
	if !ok {
		return apperr.NotFound("Reminder not found")
	}
	for k, v := range set {
		switch k {
		case "status":
			r.Status = v.(Status)
		case "lastError":
			r.LastError = v.(string)
		case "messageId":
			r.MessageID = v.(string)
		case "message":
			r.Message = v.(string)
		case "scheduledTime":
			r.ScheduledTime = v.(time.Time)
		case "sentAt":
			t := v.(time.Time)
			r.SentAt = &t
		}
	}
	return nil
}

func (m *MockReminderRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.reminders[id]; !ok {
		return apperr.NotFound("Reminder not found")
	}
	delete(m.reminders, id)
	return nil
}

func (m *MockReminderRepo) ClaimDue(ctx context.Context, now time.Time) (*Reminder, error) {
	var due []*Reminder
	for _, r := range m.reminders {
		pending := r.Status == StatusPending && !r.ScheduledTime.After(now)
		stale := r.Status == StatusSending && r.UpdatedAt.Before(now.Add(-claimLease))
		if pending || stale {
			due = append(due, r)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledTime.Before(due[j].ScheduledTime) })
	due[0].Status = StatusSending
	due[0].UpdatedAt = now
	cp := *due[0]
	return &cp, nil
}

func (m *MockReminderRepo) DeleteByUser(ctx context.Context, userID string) error {
	return nil
}

type fakeSender struct {
	sent []string
	fail map[string]bool
}

func (f *fakeSender) Send(ctx context.Context, phoneNumber, message string) (string, error) {
	if f.fail[phoneNumber] {
		return "", errors.New("invalid parameter")
	}
	f.sent = append(f.sent, message)
	return "msg-" + message, nil
}

func TestCreateReminder_Validation(t *testing.T) {
	svc := NewReminderService(newMockReminderRepo(), zap.NewNop())
	uid := primitive.NewObjectID().Hex()
	when := time.Now().Add(time.Hour)

	tests := []struct {
		name string
		in   CreateReminderInput
	}{
		{"missing user", CreateReminderInput{PhoneNumber: "+14165550100", Message: "hi", ScheduledTime: when}},
		{"bad phone", CreateReminderInput{UserID: uid, PhoneNumber: "555-0100", Message: "hi", ScheduledTime: when}},
		{"missing message", CreateReminderInput{UserID: uid, PhoneNumber: "+14165550100", ScheduledTime: when}},
		{"missing time", CreateReminderInput{UserID: uid, PhoneNumber: "+14165550100", Message: "hi"}},
		{"bad user id", CreateReminderInput{UserID: "u1", PhoneNumber: "+14165550100", Message: "hi", ScheduledTime: when}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateReminder(context.Background(), tt.in); !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestDispatch_SendsDueOnly(t *testing.T) {
	repo := newMockReminderRepo()
	sender := &fakeSender{fail: map[string]bool{"+14165550199": true}}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	uid := primitive.NewObjectID()
	due := &Reminder{UserID: uid, PhoneNumber: "+14165550100", Message: "due", ScheduledTime: now.Add(-time.Minute), Status: StatusPending}
	broken := &Reminder{UserID: uid, PhoneNumber: "+14165550199", Message: "broken", ScheduledTime: now.Add(-time.Minute), Status: StatusPending}
	later := &Reminder{UserID: uid, PhoneNumber: "+14165550100", Message: "later", ScheduledTime: now.Add(time.Hour), Status: StatusPending}
	for _, r := range []*Reminder{due, broken, later} {
		repo.Create(context.Background(), r)
	}

	d := &Dispatcher{repo: repo, sender: sender, logger: zap.NewNop(), now: func() time.Time { return now }}
	sent, failed := d.Dispatch(context.Background())

	if sent != 1 || failed != 1 {
		t.Fatalf("Expected 1 sent and 1 failed, got %d and %d", sent, failed)
	}
	if got := repo.reminders[due.ID]; got.Status != StatusSent || got.MessageID != "msg-due" || got.SentAt == nil {
		t.Errorf("Unexpected due reminder: %+v", got)
	}
	if got := repo.reminders[broken.ID]; got.Status != StatusFailed || got.LastError == "" {
		t.Errorf("Unexpected failed reminder: %+v", got)
	}
	if got := repo.reminders[later.ID]; got.Status != StatusPending {
		t.Errorf("Future reminder should stay pending, got %s", got.Status)
	}
}

func TestDispatch_ReclaimsStaleSending(t *testing.T) {
	repo := newMockReminderRepo()
	sender := &fakeSender{}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	uid := primitive.NewObjectID()
	// claimed by a dispatcher that died before recording the outcome
	stuck := &Reminder{UserID: uid, PhoneNumber: "+14165550100", Message: "stuck", ScheduledTime: now.Add(-time.Hour),
		Status: StatusSending, UpdatedAt: now.Add(-claimLease - time.Minute)}
	// claimed moments ago by a dispatcher still running
	inFlight := &Reminder{UserID: uid, PhoneNumber: "+14165550100", Message: "in-flight", ScheduledTime: now.Add(-time.Hour),
		Status: StatusSending, UpdatedAt: now.Add(-time.Minute)}
	for _, r := range []*Reminder{stuck, inFlight} {
		repo.Create(context.Background(), r)
	}

	d := &Dispatcher{repo: repo, sender: sender, logger: zap.NewNop(), now: func() time.Time { return now }}
	sent, failed := d.Dispatch(context.Background())

	if sent != 1 || failed != 0 {
		t.Fatalf("Expected 1 sent, got %d sent and %d failed", sent, failed)
	}
	if got := repo.reminders[stuck.ID]; got.Status != StatusSent || got.MessageID != "msg-stuck" {
		t.Errorf("Stale claim should be sent, got %+v", got)
	}
	if got := repo.reminders[inFlight.ID]; got.Status != StatusSending {
		t.Errorf("Fresh claim should be left alone, got %s", got.Status)
	}
}

func TestUpdateReminder_RequeuesFailed(t *testing.T) {
	repo := newMockReminderRepo()
	svc := NewReminderService(repo, zap.NewNop())
	rem := &Reminder{UserID: primitive.NewObjectID(), Status: StatusFailed, LastError: "boom"}
	repo.Create(context.Background(), rem)

	when := time.Now().Add(time.Hour)
	if err := svc.UpdateReminder(context.Background(), rem.ID.Hex(), UpdateReminderInput{ScheduledTime: &when}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	got := repo.reminders[rem.ID]
	if got.Status != StatusPending || got.LastError != "" || !got.ScheduledTime.Equal(when) {
		t.Errorf("Expected reminder back in queue, got %+v", got)
	}
}

func TestReminder_NotFound(t *testing.T) {
	svc := NewReminderService(newMockReminderRepo(), zap.NewNop())
	id := primitive.NewObjectID().Hex()

	if _, err := svc.GetReminder(context.Background(), id); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if err := svc.DeleteReminder(context.Background(), id); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Expected not found, got %v", err)
	}
	if _, err := svc.ListReminders(context.Background(), ""); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

type fakeSNS struct {
	input *sns.PublishInput
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	return &sns.PublishOutput{MessageId: aws.String("abc-123")}, nil
}

func TestSNSSender_Attributes(t *testing.T) {
	client := &fakeSNS{}
	s := NewSNSSender(client, "REALTY", zap.NewNop())

	id, err := s.Send(context.Background(), "+14165550100", "Showing at 2pm")
	if err != nil || id != "abc-123" {
		t.Fatalf("Unexpected result: %q, %v", id, err)
	}

	in := client.input
	if aws.ToString(in.PhoneNumber) != "+14165550100" || aws.ToString(in.Message) != "Showing at 2pm" {
		t.Errorf("Unexpected input: %+v", in)
	}
	if aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SMSType"].StringValue) != "Transactional" {
		t.Error("Expected transactional SMS type")
	}
	if aws.ToString(in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue) != "REALTY" {
		t.Error("Expected sender id attribute")
	}
}
