package email

import (
	"context"

	"realty-crm/internal/common/apperr"
	common_models "realty-crm/internal/common/models"
	"realty-crm/internal/common/validate"
	"realty-crm/pkg/utils"

	"go.uber.org/zap"
)

type EmailService interface {
	Send(ctx context.Context, in SendInput) (*Email, error)
	ListSent(ctx context.Context, page common_models.Page) ([]Email, common_models.Page, error)
	Inbox(ctx context.Context, limit int) ([]InboxMessage, error)
}

type EmailServiceImpl struct {
	Sender  Sender
	Repo    EmailRepository
	Mailbox Inbox
	Logger  *zap.Logger
}

func NewEmailService(sender Sender, repo EmailRepository, inbox Inbox, logger *zap.Logger) EmailService {
	return &EmailServiceImpl{
		Sender:  sender,
		Repo:    repo,
		Mailbox: inbox,
		Logger:  logger,
	}
}

// Send records the message as queued, delivers it and stores the outcome.
// A failed record write does not stop delivery.
func (s *EmailServiceImpl) Send(ctx context.Context, in SendInput) (*Email, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}

	record := &Email{
		To:       in.To,
		Cc:       in.Cc,
		Bcc:      in.Bcc,
		Subject:  in.Subject,
		TextBody: in.Text,
		HtmlBody: in.HTML,
		Status:   EmailQueued,
	}
	if claims, ok := utils.ClaimsFromContext(ctx); ok {
		record.SentBy = claims.UserID
	}

	stored := true
	if err := s.Repo.Create(ctx, record); err != nil {
		stored = false
		s.Logger.Warn("Failed to record outgoing email", zap.Error(err))
	}

	sendErr := s.Sender.Send(ctx, record)

	status, errMsg := EmailSent, ""
	if sendErr != nil {
		status, errMsg = EmailFailed, sendErr.Error()
	}
	record.Status = status
	record.ErrorMsg = errMsg

	if stored {
		if err := s.Repo.UpdateStatus(ctx, record.ID, status, errMsg); err != nil {
			s.Logger.Warn("Failed to update email status", zap.String("emailId", record.ID.Hex()), zap.Error(err))
		}
	}

	if sendErr != nil {
		return nil, apperr.Unexpected("Failed to send email", sendErr)
	}
	return record, nil
}

func (s *EmailServiceImpl) ListSent(ctx context.Context, page common_models.Page) ([]Email, common_models.Page, error) {
	emails, total, err := s.Repo.List(ctx, page.Limit, page.Offset())
	if err != nil {
		return nil, page, apperr.Unexpected("Failed to fetch emails", err)
	}
	return emails, page.WithTotal(total), nil
}

func (s *EmailServiceImpl) Inbox(ctx context.Context, limit int) ([]InboxMessage, error) {
	msgs, err := s.Mailbox.Latest(ctx, limit)
	if err != nil {
		return nil, apperr.Unexpected("Failed to fetch emails", err)
	}
	return msgs, nil
}
