package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/talent-gateway/internal/domain"
	"github.com/spec-kit/talent-gateway/internal/events"
)

// SessionCookieName carries the signed session token on browser requests.
const SessionCookieName = "tg_session"

const identityKey = "session_identity"

// SessionMiddleware resolves the session identity for every request and
// stores it in request locals. It never aborts: absence, expiry and forgery
// all collapse to "no identity" so downstream code cannot distinguish them.
type SessionMiddleware struct {
	tokens     *TokenManager
	dispatcher events.Dispatcher
}

// NewSessionMiddleware constructs middleware. The dispatcher is optional and
// only feeds the audit trail.
func NewSessionMiddleware(tokens *TokenManager, dispatcher events.Dispatcher) *SessionMiddleware {
	return &SessionMiddleware{tokens: tokens, dispatcher: dispatcher}
}

// Handle extracts and validates the session token, if any.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := extractToken(c)
	if tokenStr == "" {
		return c.Next()
	}

	identity, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		// Uniform rejection: the caller sees exactly what an absent
		// session would produce. The reason stays server-side.
		m.publishRejection(c, err)
		return c.Next()
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

func (m *SessionMiddleware) publishRejection(c *fiber.Ctx, cause error) {
	if m.dispatcher == nil {
		return
	}
	_ = m.dispatcher.Publish(c.UserContext(), events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventSessionRejected,
		Timestamp: time.Now(),
		Payload:   events.SessionRejectedPayload{Path: c.Path(), Reason: cause.Error()},
	})
}

// IdentityFromContext retrieves the resolved session identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok
}

// SetSessionCookie attaches the signed token as an HttpOnly, SameSite=Lax
// cookie scoped to the whole site.
func SetSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Expires:  expiresAt,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie. The token itself stays valid
// until its natural expiry; discard is the only logout mechanism.
func ClearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// extractToken reads the token from the session cookie, falling back to a
// bearer Authorization header for non-browser clients.
func extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(SessionCookieName); cookie != "" {
		return cookie
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
