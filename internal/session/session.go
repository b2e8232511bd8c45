// Package session implements cookie-carried, server-side login sessions and
// one-shot flash messages.
//
// A session is a random ID stored in Redis with the owning user ID and a TTL.
// The browser holds an HS256 JWT whose jti is that ID, so a cookie cannot be
// forged or pointed at another user. Logout deletes the Redis key, which
// revokes the cookie everywhere. Without Redis the signed token alone is
// trusted until it expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName carries the signed session token.
	CookieName = "session"

	issuer   = "msvblog"
	audience = "msvblog-web"
)

var (
	ErrNoSession     = errors.New("no session")
	ErrInvalidToken  = errors.New("invalid session token")
	ErrSessionEnded  = errors.New("session revoked or expired")
	ErrMissingSecret = errors.New("session secret not configured")
)

// Session is the authenticated state resolved from a request.
type Session struct {
	ID        string
	UserID    uint
	ExpiresAt time.Time
}

// Manager issues, resolves and revokes sessions.
type Manager struct {
	secret []byte
	ttl    time.Duration
	rdb    *redis.Client
	secure bool
	now    func() time.Time
}

// NewManager returns a Manager. rdb may be nil.
func NewManager(secret string, ttl time.Duration, rdb *redis.Client, secureCookies bool) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		rdb:    rdb,
		secure: secureCookies,
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Create starts a session for userID and returns its signed token.
func (m *Manager) Create(ctx context.Context, userID uint) (string, *Session, error) {
	if len(m.secret) == 0 {
		return "", nil, ErrMissingSecret
	}

	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: now.Add(m.ttl),
	}

	if m.rdb != nil {
		if err := m.rdb.Set(ctx, sessionKey(s.ID), strconv.FormatUint(uint64(userID), 10), m.ttl).Err(); err != nil {
			return "", nil, fmt.Errorf("store session: %w", err)
		}
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{audience},
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        s.ID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign session: %w", err)
	}
	return token, s, nil
}

func (m *Manager) parse(token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	return &Session{
		ID:        claims.ID,
		UserID:    uint(userID),
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Resolve validates token and, when Redis is configured, checks the session
// is still live and belongs to the token's subject.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	s, err := m.parse(token)
	if err != nil {
		return nil, err
	}
	if m.rdb == nil {
		return s, nil
	}

	stored, err := m.rdb.Get(ctx, sessionKey(s.ID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionEnded
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if stored != strconv.FormatUint(uint64(s.UserID), 10) {
		return nil, ErrSessionEnded
	}
	return s, nil
}

// Revoke ends the session behind token. Unknown or invalid tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	s, err := m.parse(token)
	if err != nil {
		return nil
	}
	if m.rdb == nil {
		return nil
	}
	if err := m.rdb.Del(ctx, sessionKey(s.ID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// SetCookie writes the session cookie.
func (m *Manager) SetCookie(c *fiber.Ctx, token string, s *Session) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		Secure:   m.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie in the browser.
func (m *Manager) ClearCookie(c *fiber.Ctx) {
	expireCookie(c, CookieName, m.secure)
}

func expireCookie(c *fiber.Ctx, name string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0).UTC(),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
