package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"realty-crm/internal/config"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// Inbox lists received mail
type Inbox interface {
	Latest(ctx context.Context, limit int) ([]InboxMessage, error)
}

type IMAPInbox struct {
	cfg config.IMAPConfig
}

func NewInbox(cfg *config.Config) Inbox {
	return &IMAPInbox{cfg: cfg.IMAP}
}

// Latest returns envelopes of the newest messages, newest first. An
// unconfigured inbox is empty.
func (i *IMAPInbox) Latest(ctx context.Context, limit int) ([]InboxMessage, error) {
	if i.cfg.Host == "" {
		return []InboxMessage{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	c, err := i.dial()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if deadline, ok := ctx.Deadline(); ok {
		c.Timeout = time.Until(deadline)
	} else {
		c.Timeout = 30 * time.Second
	}

	if err := c.Login(i.cfg.Username, i.cfg.Password); err != nil {
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	mailbox := i.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	mbox, err := c.Select(mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("failed to select mailbox: %w", err)
	}
	if mbox.Messages == 0 {
		return []InboxMessage{}, nil
	}

	from := uint32(1)
	if mbox.Messages > uint32(limit) {
		from = mbox.Messages - uint32(limit) + 1
	}
	seqset := new(imap.SeqSet)
	seqset.AddRange(from, mbox.Messages)

	messages := make(chan *imap.Message, limit)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags}, messages)
	}()

	out := make([]InboxMessage, 0, limit)
	for msg := range messages {
		if msg.Envelope == nil {
			continue
		}
		out = append(out, InboxMessage{
			SeqNum:    msg.SeqNum,
			MessageID: msg.Envelope.MessageId,
			From:      formatAddress(msg.Envelope.From),
			To:        formatAddress(msg.Envelope.To),
			Subject:   msg.Envelope.Subject,
			Date:      msg.Envelope.Date,
			Seen:      hasFlag(msg.Flags, imap.SeenFlag),
		})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("error during fetch: %w", err)
	}

	// newest first
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out, nil
}

func (i *IMAPInbox) dial() (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", i.cfg.Host, i.cfg.Port)
	if i.cfg.Port == 143 {
		c, err := client.Dial(addr)
		if err != nil {
			return nil, err
		}
		if err := c.StartTLS(&tls.Config{ServerName: i.cfg.Host}); err != nil {
			c.Logout()
			return nil, err
		}
		return c, nil
	}
	return client.DialTLS(addr, &tls.Config{ServerName: i.cfg.Host})
}

func formatAddress(addrs []*imap.Address) string {
	var result []string
	for _, addr := range addrs {
		if addr.PersonalName != "" {
			result = append(result, fmt.Sprintf("%s <%s>", addr.PersonalName, addr.Address()))
		} else {
			result = append(result, addr.Address())
		}
	}
	return strings.Join(result, ", ")
}

func hasFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
