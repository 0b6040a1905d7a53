package email

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EmailStatus string

const (
	EmailQueued EmailStatus = "queued"
	EmailSent   EmailStatus = "sent"
	EmailFailed EmailStatus = "failed"
)

// Email is one outgoing message as recorded in the "emails" collection
type Email struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	From      string             `bson:"from" json:"from"`
	To        []string           `bson:"to" json:"to"`
	Cc        []string           `bson:"cc,omitempty" json:"cc,omitempty"`
	Bcc       []string           `bson:"bcc,omitempty" json:"bcc,omitempty"`
	Subject   string             `bson:"subject" json:"subject"`
	HtmlBody  string             `bson:"htmlBody,omitempty" json:"htmlBody,omitempty"`
	TextBody  string             `bson:"textBody,omitempty" json:"textBody,omitempty"`
	Status    EmailStatus        `bson:"status" json:"status"`
	SentBy    string             `bson:"sentBy,omitempty" json:"sentBy,omitempty"`
	ErrorMsg  string             `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	SentAt    *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
}

// Recipients accepts either a single address or a list in JSON
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*r = nil
		} else {
			*r = Recipients{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*r = many
	return nil
}

type SendInput struct {
	To      Recipients `json:"to" validate:"required,min=1"`
	Cc      Recipients `json:"cc,omitempty"`
	Bcc     Recipients `json:"bcc,omitempty"`
	Subject string     `json:"subject" validate:"required"`
	Text    string     `json:"text" validate:"required"`
	HTML    string     `json:"html,omitempty"`
}

// InboxMessage is the envelope of a received message
type InboxMessage struct {
	SeqNum    uint32    `json:"seqNum"`
	MessageID string    `json:"messageId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Date      time.Time `json:"date"`
	Seen      bool      `json:"seen"`
}
