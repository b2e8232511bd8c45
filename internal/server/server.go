// Package server wires the HTTP routes, middleware and handlers of the blog.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"msvblog/internal/config"
	"msvblog/internal/database"
	"msvblog/internal/mail"
	"msvblog/internal/middleware"
	"msvblog/internal/passwords"
	"msvblog/internal/repository"
	"msvblog/internal/service"
	"msvblog/internal/session"
	"msvblog/internal/views"
	redispkg "msvblog/pkg/redis"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	views          *views.Engine
	sessions       *session.Manager
	flashes        *session.Flashes
	rateLimiter    *middleware.RateLimiter
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	authService    *service.AuthService
	postService    *service.PostService
	commentService *service.CommentService
	contactService *service.ContactService
}

// NewServer connects to the database and Redis and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	redisClient := redispkg.Connect(ctx, cfg.RedisURL)

	return NewServerWithDeps(cfg, db, redisClient, mail.NewSMTPMailer(cfg))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil, in which case sessions are stateless and rate
// limits fail open.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mailer mail.Mailer) (*Server, error) {
	hasher, err := passwords.NewHasher(cfg.PasswordScheme, cfg.PasswordIterations)
	if err != nil {
		return nil, err
	}

	engine := views.New()
	if err := engine.Load(); err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.SessionTTLHours) * time.Hour

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("msvblog"),
		views:          engine,
		sessions:       session.NewManager(cfg.SecretKey, ttl, redisClient, cfg.IsProduction()),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
	}

	server.flashes = session.NewFlashes(server.storage("flash:"), cfg.IsProduction())
	server.authService = service.NewAuthService(server.userRepo, hasher)
	server.postService = service.NewPostService(server.postRepo)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo)
	server.contactService = service.NewContactService(mailer, engine, cfg.AppName, cfg.MailDefaultSender, cfg.AdminEmail)

	return server, nil
}

// storage returns Redis-backed state for fiber middleware under prefix, or
// nil so the middleware falls back to process memory.
func (s *Server) storage(prefix string) fiber.Storage {
	if s.redis == nil {
		return nil
	}
	return redispkg.NewStorage(s.redis, prefix)
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      s.config.AppName,
		Views:        s.views,
		ViewsLayout:  views.Layout,
		ErrorHandler: s.ErrorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Post images and avatars come from other origins.
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/metrics" || p == "/health/live" || p == "/health/ready"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Storage: s.storage("limiter:"),
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))

	app.Use(s.SessionMiddleware())

	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:" + csrfField,
		CookieName:     csrfCookieName,
		CookieSameSite: "Lax",
		CookieSecure:   s.config.IsProduction(),
		CookieHTTPOnly: true,
		Expiration:     2 * time.Hour,
		ContextKey:     csrfContextKey,
		Storage:        s.storage("csrf:"),
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/", s.Index)
	app.Get("/about", s.About)

	authLimit := s.rateLimiter.Handler(10, time.Minute, "auth")
	app.Get("/register", s.RegisterPage)
	app.Post("/register", authLimit, s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", authLimit, s.Login)
	app.Get("/logout", s.AuthRequired(), s.Logout)

	app.Get("/post/:id<int>", s.ShowPost)
	app.Post("/post/:id<int>", s.AddComment)

	app.Get("/contact", s.ContactPage)
	app.Post("/contact", s.rateLimiter.Handler(5, time.Minute, "contact"), s.Contact)
	if s.config.MailDebugEndpoint {
		app.Get("/sendmail", s.SendMailRedirect)
		app.Post("/sendmail", s.SendMail)
	}

	admin := s.AdminRequired()
	app.Get("/new-post", admin, s.NewPostPage)
	app.Post("/new-post", admin, s.CreatePost)
	app.Get("/edit-post/:id<int>", admin, s.EditPostPage)
	app.Post("/edit-post/:id<int>", admin, s.UpdatePost)
	app.Get("/delete/:id<int>", admin, s.DeletePost)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
