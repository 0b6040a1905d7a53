package reminder

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusPending Status = "pending"
	// StatusSending marks a reminder claimed by a dispatcher run
	StatusSending Status = "sending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

type Reminder struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	UserID        primitive.ObjectID `bson:"userId" json:"userId"`
	PhoneNumber   string             `bson:"phoneNumber" json:"phoneNumber"`
	Message       string             `bson:"message" json:"message"`
	ScheduledTime time.Time          `bson:"scheduledTime" json:"scheduledTime"`
	Status        Status             `bson:"status" json:"status"`
	MessageID     string             `bson:"messageId,omitempty" json:"messageId,omitempty"`
	LastError     string             `bson:"lastError,omitempty" json:"lastError,omitempty"`
	SentAt        *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type CreateReminderInput struct {
	UserID        string    `json:"userId" validate:"required"`
	PhoneNumber   string    `json:"phoneNumber" validate:"required,e164"`
	Message       string    `json:"message" validate:"required,max=1600"`
	ScheduledTime time.Time `json:"scheduledTime" validate:"required"`
}

type UpdateReminderInput struct {
	PhoneNumber   *string    `json:"phoneNumber,omitempty" validate:"omitempty,e164"`
	Message       *string    `json:"message,omitempty" validate:"omitempty,max=1600"`
	ScheduledTime *time.Time `json:"scheduledTime,omitempty"`
}
