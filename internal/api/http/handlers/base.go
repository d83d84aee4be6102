package handlers

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/session"
	"github.com/vinmart/admin-console/internal/views"
)

// Layout wraps every full page.
const Layout = "layouts/main"

// ViewData is the binding passed to templates. It is a plain map rather than
// fiber.Map so the django engine accepts it without conversion.
type ViewData = map[string]any

// Page carries what every protected handler needs to render pages and react
// to backend failures.
type Page struct {
	guard      *auth.Guard
	observer   *session.Observer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewPage constructs the shared page helpers.
func NewPage(guard *auth.Guard, observer *session.Observer, dispatcher events.Dispatcher, logger *zap.Logger) Page {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return Page{guard: guard, observer: observer, dispatcher: dispatcher, logger: logger}
}

// render executes view inside the main layout with the shared bindings.
func (p Page) render(c *fiber.Ctx, view, title string, data ViewData) error {
	if data == nil {
		data = ViewData{}
	}
	data["title"] = title
	data["path"] = c.Path()
	if sess, ok := auth.SessionFromContext(c); ok {
		data["admin"] = adminName(sess)
	}
	return c.Render(view, data, Layout)
}

// revoked hands err to the session observer. When it reports an
// authorization failure the cookie is expired and the caller must redirect
// to the login page.
func (p Page) revoked(c *fiber.Ctx, err error) bool {
	sess, _ := auth.SessionFromContext(c)
	if !p.observer.Handle(c.UserContext(), sess, err) {
		return false
	}
	p.guard.ExpireCookie(c)
	return true
}

func (p Page) publish(c *fiber.Ctx, e events.Event) {
	if err := p.dispatcher.Publish(c.UserContext(), e); err != nil {
		p.logger.Warn("event handlers failed", zap.String("event", string(e.Type)), zap.Error(err))
	}
}

func sessionID(c *fiber.Ctx) string {
	sess, _ := auth.SessionFromContext(c)
	return sess.ID()
}

func adminName(sess *session.Session) string {
	for _, field := range []string{"name", "email"} {
		if v := sess.ProfileField(field); v != "" {
			return v
		}
	}
	return "Administrator"
}

// flashes fixed page messages keyed by query value, so a redirect target
// can never inject arbitrary text.
type flashes map[string]string

func (f flashes) from(c *fiber.Ctx, param string) string {
	return f[c.Query(param)]
}

// fieldErrors keys a form error by input name for the templates.
func fieldErrors(ferr *views.FormError) map[string]string {
	if ferr == nil {
		return map[string]string{}
	}
	return map[string]string{ferr.Field: ferr.Message}
}

func withQuery(path, key, value string) string {
	return path + "?" + url.Values{key: {value}}.Encode()
}
