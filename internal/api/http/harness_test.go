package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/api/http/handlers"
	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/observability"
	"github.com/vinmart/admin-console/internal/repository"
	"github.com/vinmart/admin-console/internal/service"
	"github.com/vinmart/admin-console/internal/session"
	"github.com/vinmart/admin-console/internal/views"
	"github.com/vinmart/admin-console/internal/worker"
)

const cookieName = "admin_session"

// jsonViews renders the view name and its binding as JSON so tests can
// assert on page state without parsing HTML.
type jsonViews struct{}

func (jsonViews) Load() error { return nil }

func (jsonViews) Render(w io.Writer, name string, binding interface{}, layout ...string) error {
	return json.NewEncoder(w).Encode(map[string]any{"view": name, "data": binding, "layout": layout})
}

type rendered struct {
	View string         `json:"view"`
	Data map[string]any `json:"data"`
}

type backendCall struct {
	Auth        string
	ContentType string
	Body        []byte
}

// backend is a scripted retail API keyed by "METHOD /path".
type backend struct {
	mu     sync.Mutex
	routes map[string]nethttp.HandlerFunc
	calls  map[string][]backendCall
}

func (b *backend) on(method, path string, status int, body string) {
	b.handle(method, path, func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) handle(method, path string, h nethttp.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[method+" "+path] = h
}

func (b *backend) count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls[method+" "+path])
}

func (b *backend) lastCall(t *testing.T, method, path string) backendCall {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	calls := b.calls[method+" "+path]
	require.NotEmpty(t, calls, "no call to %s %s", method, path)
	return calls[len(calls)-1]
}

type memoryAudit struct {
	mu     sync.Mutex
	events []repository.AuditEvent
}

func (m *memoryAudit) Create(_ context.Context, e *repository.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func (m *memoryAudit) ListRecent(_ context.Context, limit int) ([]repository.AuditEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]repository.AuditEvent, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

type harness struct {
	t          *testing.T
	app        *fiber.App
	api        *backend
	manager    *session.Manager
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher

	mu        sync.Mutex
	published []events.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := &backend{routes: map[string]nethttp.HandlerFunc{}, calls: map[string][]backendCall{}}
	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		key := r.Method + " " + r.URL.Path
		api.mu.Lock()
		api.calls[key] = append(api.calls[key], backendCall{
			Auth:        r.Header.Get("Authorization"),
			ContentType: r.Header.Get("Content-Type"),
			Body:        body,
		})
		route := api.routes[key]
		api.mu.Unlock()
		if route == nil {
			w.WriteHeader(nethttp.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"no such route"}`)
			return
		}
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		route(w, r)
	}))
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	manager := session.NewManager(session.NewMemoryStore(), time.Hour)
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	guard := auth.NewGuard(tokens, manager, auth.CookieConfig{Name: cookieName}, logger)
	observer := session.NewObserver(manager, dispatcher, logger)

	client, err := apiclient.New(srv.URL,
		apiclient.WithTokenSource(session.ContextTokenSource{}),
		apiclient.WithObserver(metrics),
		apiclient.WithLogger(logger),
	)
	require.NoError(t, err)

	audit := service.NewAuditService(dispatcher, &memoryAudit{}, logger)
	worker.StartAuditWorker(audit)

	validator := views.NewFormValidator()
	page := handlers.NewPage(guard, observer, dispatcher, logger)

	app := fiber.New(fiber.Config{Views: jsonViews{}})
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:        handlers.NewHealthHandler("admin-console", "test", srv.URL, nil, nil),
		Auth:          handlers.NewAuthHandler(page, client.Auth, manager, validator),
		Dashboard:     handlers.NewDashboardHandler(page, client.Dashboard, client.Auth, manager, audit),
		Vendors:       handlers.NewVendorsHandler(page, views.NewVendorService(client.Vendors, validator, dispatcher, logger)),
		Products:      handlers.NewProductsHandler(page, client.Products, validator),
		Orders:        handlers.NewOrdersHandler(page, client.Orders, validator),
		Subscriptions: handlers.NewSubscriptionsHandler(page, client.Subscriptions),
		Users:         handlers.NewUsersHandler(page, client.Users),
		Guard:         guard,
		Metrics:       metrics,
	})

	h := &harness{t: t, app: app, api: api, manager: manager, tokens: tokens, dispatcher: dispatcher}
	for _, et := range events.AllEventTypes {
		dispatcher.Subscribe(et, func(_ context.Context, e events.Event) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.published = append(h.published, e)
			return nil
		})
	}
	return h
}

// login creates a session holding token and returns its cookie value.
func (h *harness) login(token string, profile string) (*session.Session, string) {
	h.t.Helper()
	var raw json.RawMessage
	if profile != "" {
		raw = json.RawMessage(profile)
	}
	sess, err := h.manager.Start(context.Background(), token, raw)
	require.NoError(h.t, err)
	cookie, _, err := h.tokens.GenerateToken(sess.ID())
	require.NoError(h.t, err)
	return sess, cookie
}

func (h *harness) do(req *nethttp.Request, cookie string) *nethttp.Response {
	h.t.Helper()
	if cookie != "" {
		req.AddCookie(&nethttp.Cookie{Name: cookieName, Value: cookie})
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	h.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (h *harness) get(path, cookie string) *nethttp.Response {
	return h.do(httptest.NewRequest(nethttp.MethodGet, path, nil), cookie)
}

func (h *harness) postForm(path, cookie string, form url.Values) *nethttp.Response {
	req := httptest.NewRequest(nethttp.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, cookie)
}

func (h *harness) eventsOf(et events.EventType) []events.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []events.Event
	for _, e := range h.published {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

func decodePage(t *testing.T, resp *nethttp.Response) rendered {
	t.Helper()
	var page rendered
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &page), "body: %s", body)
	return page
}

// field digs a nested value out of rendered data, e.g. field(p, "errors", "email").
func field(p rendered, path ...string) any {
	var cur any = p.Data
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func rows(t *testing.T, p rendered, key string) []map[string]any {
	t.Helper()
	raw, ok := p.Data[key].([]any)
	require.True(t, ok, "%s is not a list: %v", key, p.Data[key])
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(map[string]any))
	}
	return out
}

func sessionCookieCleared(resp *nethttp.Response) bool {
	for _, c := range resp.Cookies() {
		if c.Name == cookieName && c.Value == "" {
			return true
		}
	}
	return false
}

func vendorJSON(id, name, email string) string {
	return fmt.Sprintf(`{"_id":%q,"name":%q,"email":%q,"category":["Warli House"],"isActive":true,"createdAt":"2024-03-01T10:00:00Z"}`, id, name, email)
}
