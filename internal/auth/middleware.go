package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/session"
)

const (
	sessionKey = "admin_session"

	// LoginPath is where unauthenticated administrators are sent.
	LoginPath = "/login"
	// LoadingView is rendered while the session cannot be resolved.
	LoadingView = "loading"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// Guard admits requests whose session holds a credential token and sends
// everyone else to the login page. It never asks the backend whether the
// token is still good; the first API call finds out.
type Guard struct {
	tokens   *TokenManager
	sessions *session.Manager
	cookie   CookieConfig
	logger   *zap.Logger
}

// NewGuard constructs the guard.
func NewGuard(tokens *TokenManager, sessions *session.Manager, cookie CookieConfig, logger *zap.Logger) *Guard {
	if cookie.Name == "" {
		cookie.Name = "admin_session"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{tokens: tokens, sessions: sessions, cookie: cookie, logger: logger}
}

// Handle enforces authentication for protected routes.
func (g *Guard) Handle(c *fiber.Ctx) error {
	sess, err := g.Resolve(c)
	switch {
	case err == nil && sess.Authenticated():
		Attach(c, sess)
		return c.Next()
	case err == nil, errors.Is(err, session.ErrNotFound):
		return RedirectToLogin(c)
	default:
		g.logger.Warn("session lookup failed", zap.Error(err))
		c.Set(fiber.HeaderRetryAfter, "1")
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.Status(fiber.StatusServiceUnavailable).Render(LoadingView, fiber.Map{})
	}
}

// Resolve reads the session named by the request cookie, if any. A missing
// or forged cookie yields session.ErrNotFound.
func (g *Guard) Resolve(c *fiber.Ctx) (*session.Session, error) {
	raw := c.Cookies(g.cookie.Name)
	if raw == "" {
		return nil, session.ErrNotFound
	}
	id, err := g.tokens.ParseToken(raw)
	if err != nil {
		return nil, session.ErrNotFound
	}
	return g.sessions.Load(c.UserContext(), id)
}

// IssueCookie sets the signed session cookie for sess.
func (g *Guard) IssueCookie(c *fiber.Ctx, sess *session.Session) error {
	value, expiresAt, err := g.tokens.GenerateToken(sess.ID())
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     g.cookie.Name,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// ExpireCookie removes the session cookie from the browser.
func (g *Guard) ExpireCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-24 * time.Hour),
		HTTPOnly: true,
		Secure:   g.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Attach stores sess on the request for handlers and the API client.
func Attach(c *fiber.Ctx, sess *session.Session) {
	c.Locals(sessionKey, sess)
	c.SetUserContext(session.WithSession(c.UserContext(), sess))
}

// SessionFromContext retrieves the authenticated session.
func SessionFromContext(c *fiber.Ctx) (*session.Session, bool) {
	sess, ok := c.Locals(sessionKey).(*session.Session)
	return sess, ok && sess != nil
}

// RedirectToLogin sends the browser to the login page.
func RedirectToLogin(c *fiber.Ctx) error {
	status := http.StatusSeeOther
	if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
		status = http.StatusFound
	}
	return c.Redirect(LoginPath, status)
}
