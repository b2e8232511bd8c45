package service

import (
	"context"

	"msvblog/internal/mail"
	"msvblog/internal/models"
	"msvblog/internal/validation"
)

const (
	ContactSubject = "User from Blog Post project contacting..."
	ContactIntro   = "An user is trying to reach out.. check the below data for info\n"

	MsgMailSent   = "Email sent.."
	MsgMailFailed = "Error occurred, the email wasn't sent"

	// EmailTemplate is the view holding the HTML body.
	EmailTemplate = "email"
)

// EmailRenderer renders a named view without a layout.
type EmailRenderer interface {
	RenderString(name string, data interface{}) (string, error)
}

type ContactService struct {
	mailer     mail.Mailer
	renderer   EmailRenderer
	appName    string
	sender     string
	adminEmail string
}

type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

func NewContactService(mailer mail.Mailer, renderer EmailRenderer, appName, sender, adminEmail string) *ContactService {
	if sender == "" {
		sender = adminEmail
	}
	return &ContactService{
		mailer:     mailer,
		renderer:   renderer,
		appName:    appName,
		sender:     sender,
		adminEmail: adminEmail,
	}
}

// SendContactMessage mails the visitor's message to the admin with the
// visitor as Reply-To. Delivery failures are TRANSPORT_ERRORs.
func (s *ContactService) SendContactMessage(ctx context.Context, in ContactInput) error {
	form := validation.ContactForm{Name: in.Name, Email: in.Email, Phone: in.Phone, Message: in.Message}
	if err := validation.Validate(&form); err != nil {
		return err
	}

	msg, err := s.build(form, s.sender, form.Email)
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

// SendDebugMessage mails the same content from the admin to the admin. The
// form is not validated.
func (s *ContactService) SendDebugMessage(ctx context.Context, in ContactInput) error {
	form := validation.ContactForm{Name: in.Name, Email: in.Email, Phone: in.Phone, Message: in.Message}
	validation.Normalize(&form)

	msg, err := s.build(form, s.adminEmail, "")
	if err != nil {
		return err
	}
	return s.send(ctx, msg)
}

func (s *ContactService) build(form validation.ContactForm, from, replyTo string) (*mail.Message, error) {
	if s.adminEmail == "" {
		return nil, models.NewTransportError(MsgMailFailed, mail.ErrNoRecipients)
	}

	html, err := s.renderer.RenderString(EmailTemplate, map[string]interface{}{
		"AppName":     s.appName,
		"UserName":    form.Name,
		"UserEmail":   form.Email,
		"UserPhone":   form.Phone,
		"UserMessage": form.Message,
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &mail.Message{
		From:    from,
		To:      []string{s.adminEmail},
		ReplyTo: replyTo,
		Subject: ContactSubject,
		Text:    ContactIntro,
		HTML:    html,
	}, nil
}

func (s *ContactService) send(ctx context.Context, msg *mail.Message) error {
	if err := s.mailer.Send(ctx, msg); err != nil {
		return models.NewTransportError(MsgMailFailed, err)
	}
	return nil
}
