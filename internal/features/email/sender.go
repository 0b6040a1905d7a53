package email

import (
	"context"

	"realty-crm/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender delivers a prepared message
type Sender interface {
	Send(ctx context.Context, msg *Email) error
}

// NewSender returns an SMTP sender, or a sender that only logs when no SMTP
// host is configured.
func NewSender(cfg *config.Config, logger *zap.Logger) Sender {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, outgoing email will only be logged")
		return &LogSender{logger: logger}
	}
	from := cfg.SMTP.From
	if from == "" {
		from = cfg.SMTP.Username
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		from:   from,
	}
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func (s *SMTPSender) Send(ctx context.Context, msg *Email) error {
	if msg.From == "" {
		msg.From = s.from
	}

	m := gomail.NewMessage()
	m.SetHeader("From", msg.From)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	if len(msg.Bcc) > 0 {
		m.SetHeader("Bcc", msg.Bcc...)
	}
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.HtmlBody != "" && msg.TextBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HtmlBody)
	case msg.HtmlBody != "":
		m.SetBody("text/html", msg.HtmlBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	return s.dialer.DialAndSend(m)
}

type LogSender struct {
	logger *zap.Logger
}

func (s *LogSender) Send(ctx context.Context, msg *Email) error {
	s.logger.Info("Email not delivered (no SMTP configured)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
