package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const SessionLocalKey = "session_id"

// SessionMiddleware reads the session cookie, issuing a new session ID when the cookie
// is missing or malformed, and stores the ID in ctx.Locals.
func SessionMiddleware(cookieName string, ttl time.Duration) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		id, err := uuid.Parse(ctx.Cookies(cookieName))
		if err != nil {
			id = uuid.New()
		}

		ctx.Cookie(&fiber.Cookie{
			Name:     cookieName,
			Value:    id.String(),
			Path:     "/",
			MaxAge:   int(ttl.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		ctx.Locals(SessionLocalKey, id)
		return ctx.Next()
	}
}

// SessionID returns the ID placed by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) uuid.UUID {
	if id, ok := ctx.Locals(SessionLocalKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
