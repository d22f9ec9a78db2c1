package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/mamadbah2/wa-relay/internal/config"
)

// ErrNoRecipients is returned when a message has nobody to go to.
var ErrNoRecipients = errors.New("mailer: no recipients")

// Sender delivers plain-text e-mails.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through an SMTP relay. smtp.SendMail upgrades the
// connection with STARTTLS whenever the server advertises it.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	send sendFunc
	now  func() time.Time
}

// New builds a mailer for the configured relay and fixed recipient list.
func New(cfg config.SMTPConfig) *SMTPMailer {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		auth: auth,
		from: from,
		to:   cfg.To,
		send: smtp.SendMail,
		now:  time.Now,
	}
}

// Send delivers one message to every configured recipient.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	if len(m.to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := BuildMessage(m.from, m.to, subject, body, m.now())
	if err := m.send(m.addr, m.auth, m.from, m.to, msg); err != nil {
		return fmt.Errorf("send mail via %s: %w", m.addr, err)
	}
	return nil
}

// BuildMessage renders RFC 5322 headers followed by a plain-text body.
func BuildMessage(from string, to []string, subject, body string, date time.Time) []byte {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s\r\n", from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", date.Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return []byte(msg.String())
}
