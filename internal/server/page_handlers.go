package server

import (
	"log/slog"

	"msvblog/internal/middleware"
	"msvblog/internal/models"
	"msvblog/internal/service"
	"msvblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// About handles GET /about
func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, "about", "About", nil)
}

// ContactPage handles GET /contact
func (s *Server) ContactPage(c *fiber.Ctx) error {
	return s.render(c, "contact", "Contact", fiber.Map{"Form": validation.ContactForm{}})
}

// Contact handles POST /contact. Delivery failures are reported with a flash
// and never fail the request.
func (s *Server) Contact(c *fiber.Ctx) error {
	var form validation.ContactForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	err := s.contactService.SendContactMessage(c.UserContext(), contactInput(form))
	switch {
	case err == nil:
		middleware.MailDeliveries.WithLabelValues("sent").Inc()
		return s.redirectWithFlash(c, "/contact", service.MsgMailSent)
	case models.HasCode(err, models.CodeValidation):
		return s.rerenderInvalid(c, err, "contact", "Contact", fiber.Map{"Form": form})
	case models.HasCode(err, models.CodeTransport):
		middleware.MailDeliveries.WithLabelValues("failed").Inc()
		middleware.Logger.ErrorContext(c.UserContext(), "contact mail failed",
			slog.String("error", err.Error()))
		return s.redirectWithFlash(c, "/contact", service.MsgMailFailed)
	default:
		return err
	}
}

// SendMailRedirect handles GET /sendmail
func (s *Server) SendMailRedirect(c *fiber.Ctx) error {
	return c.Redirect("/contact", fiber.StatusFound)
}

// SendMail handles POST /sendmail, a mail relay smoke test that sends the
// submitted form from the admin address to itself. The response is plain
// text and never includes relay settings.
func (s *Server) SendMail(c *fiber.Ctx) error {
	var form validation.ContactForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	if err := s.contactService.SendDebugMessage(c.UserContext(), contactInput(form)); err != nil {
		if !models.HasCode(err, models.CodeTransport) {
			return err
		}
		middleware.MailDeliveries.WithLabelValues("failed").Inc()
		middleware.Logger.ErrorContext(c.UserContext(), "debug mail failed",
			slog.String("error", err.Error()))
		return c.Status(fiber.StatusBadGateway).SendString(service.MsgMailFailed)
	}

	middleware.MailDeliveries.WithLabelValues("sent").Inc()
	return c.SendString(service.MsgMailSent)
}

func contactInput(form validation.ContactForm) service.ContactInput {
	return service.ContactInput{
		Name:    form.Name,
		Email:   form.Email,
		Phone:   form.Phone,
		Message: form.Message,
	}
}
