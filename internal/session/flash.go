package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
)

// FlashCookieName holds the random ID of the visitor's pending flashes.
const FlashCookieName = "flash"

const (
	flashKey = "messages"
	flashTTL = time.Hour
)

// Flashes keeps one-time messages server side until the next rendered page.
// The browser only ever holds an opaque ID, so it cannot supply the text.
type Flashes struct {
	store *fibersession.Store
}

// NewFlashes returns a flash store backed by storage, or by process memory
// when storage is nil.
func NewFlashes(storage fiber.Storage, secureCookies bool) *Flashes {
	return &Flashes{store: fibersession.New(fibersession.Config{
		Storage:        storage,
		Expiration:     flashTTL,
		KeyLookup:      "cookie:" + FlashCookieName,
		CookiePath:     "/",
		CookieSecure:   secureCookies,
		CookieHTTPOnly: true,
		CookieSameSite: "Lax",
	})}
}

// Add queues msg for the next rendered page, whether that is this response
// or the one after a redirect.
func (f *Flashes) Add(c *fiber.Ctx, msg string) error {
	sess, err := f.store.Get(c)
	if err != nil {
		return err
	}
	msgs, _ := sess.Get(flashKey).([]string)
	sess.Set(flashKey, append(msgs, msg))
	return sess.Save()
}

// Pop returns and forgets every pending message.
func (f *Flashes) Pop(c *fiber.Ctx) ([]string, error) {
	sess, err := f.store.Get(c)
	if err != nil {
		return nil, err
	}
	msgs, _ := sess.Get(flashKey).([]string)
	if len(msgs) == 0 && sess.Fresh() {
		return nil, nil
	}
	if err := sess.Destroy(); err != nil {
		return msgs, err
	}
	return msgs, nil
}
