// Package redispkg builds the Redis client used for sessions and rate limiting.
package redispkg

import (
	"context"
	"crypto/tls"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"msvblog/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const defaultAddr = "localhost:6379"

// ParseRedisURL accepts either a plain `host:port` or a `redis://`/`rediss://`
// URL and returns its address, password, database number and whether TLS is
// requested.
func ParseRedisURL(raw string) (addr, password string, db int, useTLS bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return defaultAddr, "", 0, false
	}
	if !strings.HasPrefix(raw, "redis://") && !strings.HasPrefix(raw, "rediss://") {
		return raw, "", 0, false
	}

	u, err := url.Parse(raw)
	if err != nil {
		return defaultAddr, "", 0, false
	}
	addr = u.Host
	if addr == "" {
		addr = defaultAddr
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			password = pw
		}
	}
	if p := strings.Trim(u.Path, "/"); p != "" {
		if n, convErr := strconv.Atoi(p); convErr == nil {
			db = n
		}
	}
	return addr, password, db, u.Scheme == "rediss"
}

// NewClient builds a redis client from a REDIS_URL-like string. It disables
// maintnotifications to avoid handshake attempts on servers that don't
// implement the subcommand.
func NewClient(raw string) *redis.Client {
	addr, password, db, useTLS := ParseRedisURL(raw)
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	client := redis.NewClient(opts)
	client.AddHook(metricsHook{})
	return client
}

// Connect builds a client and pings it. When Redis is unreachable it logs a
// warning, closes the client and returns nil; callers degrade to stateless
// sessions and fail-open rate limiting.
func Connect(ctx context.Context, raw string) *redis.Client {
	client := NewClient(raw)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		middleware.Logger.Warn("Redis unavailable, continuing without server-side sessions",
			"error", err.Error())
		_ = client.Close()
		return nil
	}
	middleware.Logger.Info("Redis connected successfully")
	return client
}

type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}
