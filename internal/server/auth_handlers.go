package server

import (
	"errors"
	"log/slog"

	"msvblog/internal/middleware"
	"msvblog/internal/models"
	"msvblog/internal/service"
	"msvblog/internal/session"
	"msvblog/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RegisterPage handles GET /register
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return s.render(c, "register", "Register", fiber.Map{"Form": validation.RegisterForm{}})
}

// Register handles POST /register
func (s *Server) Register(c *fiber.Ctx) error {
	var form validation.RegisterForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	user, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			middleware.AuthEvents.WithLabelValues("register", "duplicate").Inc()
			return s.redirectWithFlash(c, "/login", service.MsgAlreadyRegistered)
		case models.HasCode(err, models.CodeValidation):
			middleware.AuthEvents.WithLabelValues("register", "invalid").Inc()
			form.Password = ""
			return s.rerenderInvalid(c, err, "register", "Register", fiber.Map{"Form": form})
		default:
			return err
		}
	}

	if err := s.startSession(c, user.ID); err != nil {
		return err
	}
	middleware.AuthEvents.WithLabelValues("register", "success").Inc()
	middleware.Logger.InfoContext(c.UserContext(), "user registered", slog.Uint64("user_id", uint64(user.ID)))
	return c.Redirect("/", fiber.StatusFound)
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "login", "Log In", fiber.Map{"Form": validation.LoginForm{}})
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var form validation.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return models.NewValidationError("Invalid form submission")
	}

	user, err := s.authService.Login(c.UserContext(), service.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		switch models.ErrorCode(err) {
		case models.CodeUnauthorized:
			middleware.AuthEvents.WithLabelValues("login", "rejected").Inc()
			return s.redirectWithFlash(c, "/login", models.PublicMessage(err))
		case models.CodeValidation:
			middleware.AuthEvents.WithLabelValues("login", "invalid").Inc()
			form.Password = ""
			return s.rerenderInvalid(c, err, "login", "Log In", fiber.Map{"Form": form})
		default:
			return err
		}
	}

	if err := s.startSession(c, user.ID); err != nil {
		return err
	}
	middleware.AuthEvents.WithLabelValues("login", "success").Inc()
	return c.Redirect("/", fiber.StatusFound)
}

// Logout handles GET /logout
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Revoke(c.UserContext(), c.Cookies(session.CookieName)); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to revoke session",
			slog.String("error", err.Error()))
	}
	s.sessions.ClearCookie(c)
	middleware.AuthEvents.WithLabelValues("logout", "success").Inc()
	return c.Redirect("/", fiber.StatusFound)
}

// startSession replaces any current session with a fresh one for userID.
func (s *Server) startSession(c *fiber.Ctx, userID uint) error {
	if old := c.Cookies(session.CookieName); old != "" {
		_ = s.sessions.Revoke(c.UserContext(), old)
	}

	token, sess, err := s.sessions.Create(c.UserContext(), userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.sessions.SetCookie(c, token, sess)
	c.Locals("userID", userID)
	return nil
}
