// Package mail delivers outbound email through an SMTP relay.
package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"msvblog/internal/config"

	gomail "github.com/wneessen/go-mail"
)

// Message is a single outbound email with a plain-text part and an optional
// HTML alternative.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

var ErrNoRecipients = errors.New("mail: message has no recipients")

// SMTPMailer sends through a single relay, dialing per message.
type SMTPMailer struct {
	host     string
	port     int
	useSSL   bool
	username string
	password string
	timeout  time.Duration
}

// NewSMTPMailer builds a mailer from the MAIL_* settings.
func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.MailServer,
		port:     cfg.MailPort,
		useSSL:   cfg.MailUseSSL,
		username: cfg.MailUsername,
		password: cfg.MailPassword,
		timeout:  15 * time.Second,
	}
}

func (s *SMTPMailer) client() (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTimeout(s.timeout),
	}
	if s.useSSL {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}
	return gomail.NewClient(s.host, opts...)
}

// Send delivers msg. Errors never include the relay credentials.
func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	m, err := BuildMsg(msg)
	if err != nil {
		return err
	}

	c, err := s.client()
	if err != nil {
		return fmt.Errorf("mail: configure client for %s:%d: %w", s.host, s.port, err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("mail: deliver via %s:%d: %w", s.host, s.port, err)
	}
	return nil
}

// BuildMsg converts msg into a MIME message.
func BuildMsg(msg *Message) (*gomail.Msg, error) {
	if len(msg.To) == 0 {
		return nil, ErrNoRecipients
	}

	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("mail: invalid sender: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient: %w", err)
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return nil, fmt.Errorf("mail: invalid reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return m, nil
}
