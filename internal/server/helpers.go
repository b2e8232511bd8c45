package server

import (
	"errors"
	"log/slog"
	"net/http"

	"msvblog/internal/middleware"
	"msvblog/internal/models"
	"msvblog/internal/service"
	"msvblog/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	csrfField      = "csrf_token"
	csrfCookieName = "csrf_"
	csrfContextKey = "csrf"
)

// currentUserID is the signed-in user's ID, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// parseID extracts a route parameter as a positive uint. Anything else is
// reported as a missing resource.
func parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewNotFoundError(resource, c.Params(param))
	}
	return uint(id), nil
}

// SessionMiddleware resolves the session cookie into c.Locals("userID").
// Invalid or revoked cookies are cleared and the request continues
// anonymously.
func (s *Server) SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(session.CookieName)
		if token == "" {
			return c.Next()
		}

		sess, err := s.sessions.Resolve(c.UserContext(), token)
		switch {
		case err == nil:
			c.Locals("userID", sess.UserID)
			c.SetUserContext(middleware.WithUserID(c.UserContext(), sess.UserID))
		case errors.Is(err, session.ErrInvalidToken), errors.Is(err, session.ErrSessionEnded), errors.Is(err, session.ErrNoSession):
			s.sessions.ClearCookie(c)
		default:
			middleware.Logger.WarnContext(c.UserContext(), "session lookup failed",
				slog.String("error", err.Error()))
		}
		return c.Next()
	}
}

// AuthRequired redirects anonymous visitors to /login.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUserID(c) == 0 {
			return s.redirectWithFlash(c, "/login", service.MsgLoginRequired)
		}
		return c.Next()
	}
}

// AdminRequired rejects everyone but the administrator with 403, signed in
// or not.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := service.AuthorizeAdmin(currentUserID(c)); err != nil {
			return err
		}
		return c.Next()
	}
}

// flash queues msg for the next page. A store failure only loses the message.
func (s *Server) flash(c *fiber.Ctx, msg string) {
	if err := s.flashes.Add(c, msg); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to store flash message",
			slog.String("error", err.Error()))
	}
}

func (s *Server) redirectWithFlash(c *fiber.Ctx, to, msg string) error {
	s.flash(c, msg)
	return c.Redirect(to, fiber.StatusFound)
}

// viewData returns the values every page needs, merged with page data.
// Pending flashes are consumed.
func (s *Server) viewData(c *fiber.Ctx, title string, page fiber.Map) fiber.Map {
	var user *models.User
	if id := currentUserID(c); id != 0 {
		u, err := s.authService.CurrentUser(c.UserContext(), id)
		if err != nil && !models.HasCode(err, models.CodeNotFound) {
			middleware.Logger.WarnContext(c.UserContext(), "failed to load current user",
				slog.String("error", err.Error()))
		}
		user = u
	}

	flashes, err := s.flashes.Pop(c)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to load flash messages",
			slog.String("error", err.Error()))
	}

	data := fiber.Map{
		"AppName":     s.config.AppName,
		"Title":       title,
		"CurrentUser": user,
		"LoggedIn":    user != nil,
		"IsAdmin":     user.IsAdmin(),
		"Flashes":     flashes,
		"CSRFToken":   c.Locals(csrfContextKey),
	}
	for k, v := range page {
		data[k] = v
	}
	return data
}

func (s *Server) render(c *fiber.Ctx, view, title string, page fiber.Map) error {
	return c.Render(view, s.viewData(c, title, page))
}

func (s *Server) renderStatus(c *fiber.Ctx, status int, view, title string, page fiber.Map) error {
	c.Status(status)
	return s.render(c, view, title, page)
}

// rerenderInvalid flashes the validation message and shows the form again
// with 422.
func (s *Server) rerenderInvalid(c *fiber.Ctx, err error, view, title string, page fiber.Map) error {
	s.flash(c, models.PublicMessage(err))
	return s.renderStatus(c, fiber.StatusUnprocessableEntity, view, title, page)
}

// ErrorHandler renders the error page. Forbidden, not found and internal
// errors never show their detail.
func (s *Server) ErrorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusCode(err)

	message := models.PublicMessage(err)
	switch status {
	case fiber.StatusForbidden:
		message = "You don't have permission to access this page."
	case fiber.StatusNotFound:
		message = "The page you requested could not be found."
	}
	if status >= fiber.StatusInternalServerError {
		message = "Something went wrong on our end."
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}

	c.Status(status)
	renderErr := c.Render("error", s.viewData(c, http.StatusText(status), fiber.Map{
		"Status":  status,
		"Message": message,
	}))
	if renderErr != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to render error page",
			slog.String("error", renderErr.Error()))
		return c.Status(status).SendString(message)
	}
	return nil
}
