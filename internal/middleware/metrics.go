package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MailDeliveries counts contact mail attempts by outcome ("sent" or "failed").
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msvblog_mail_deliveries_total",
		Help: "Total number of contact mail delivery attempts by outcome",
	}, []string{"outcome"})

	// AuthEvents counts registrations, logins and logouts by result.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msvblog_auth_events_total",
		Help: "Total number of authentication events by type and result",
	}, []string{"event", "result"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "msvblog_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide Fiber Prometheus middleware.
// The collectors live in the default registry, so they are only created once.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware records request metrics, skipping the scrape endpoint itself.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
