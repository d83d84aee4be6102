package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinmart/admin-console/internal/events"
)

func TestProtectedPagesRedirectWithoutSession(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/", "/vendors", "/products", "/orders", "/subscriptions", "/users"} {
		resp := h.get(path, "")
		assert.Equal(t, nethttp.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp := h.postForm("/vendors", "", newVendorForm())
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Zero(t, h.api.count(nethttp.MethodPost, vendorCreate))
}

func TestForgedCookieRedirects(t *testing.T) {
	h := newHarness(t)
	resp := h.get("/", "not-a-jwt")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/nope", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, ErrorView, decodePage(t, resp).View)

	req := httptest.NewRequest(nethttp.MethodGet, "/nope", nil)
	req.Header.Set("Accept", "application/json")
	resp = h.do(req, "")
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	resp := h.get("/health/ready", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	var ready struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Equal(t, "disabled", ready.Dependencies["redis"])
	assert.Equal(t, "disabled", ready.Dependencies["postgres"])

	h.get("/health/live", "")
	resp = h.get("/metrics", "")
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "admin_console_http_requests_total")
}

func TestMetricsRecordMappedErrorStatus(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")

	resp := h.postForm("/users/u1/status", cookie, url.Values{"active": {"maybe"}})
	require.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(h.get("/metrics", "").Body)
	assert.Contains(t, string(body), `admin_console_http_requests_total{method="POST",route="/users/:id/status",status="400"} 1`)
	assert.NotContains(t, string(body), `route="/users/:id/status",status="200"`)
}

func TestLoginStartsSession(t *testing.T) {
	h := newHarness(t)
	h.api.on(nethttp.MethodPost, "/api/auth/login", nethttp.StatusOK, `{"token":"fresh","user":{"name":"Meera","email":"meera@x.in"}}`)
	h.api.on(nethttp.MethodGet, "/api/dashboard/stats", nethttp.StatusOK, `{"totalOrders":4}`)

	resp := h.postForm("/login", "", url.Values{"email": {" meera@x.in "}, "password": {"pw"}})
	require.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	login := h.api.lastCall(t, nethttp.MethodPost, "/api/auth/login")
	assert.Empty(t, login.Auth)
	assert.JSONEq(t, `{"email":"meera@x.in","password":"pw"}`, string(login.Body))

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			cookie = c.Value
		}
	}
	require.NotEmpty(t, cookie)
	require.Len(t, h.eventsOf(events.EventSessionStarted), 1)

	page := decodePage(t, h.get("/", cookie))
	assert.Equal(t, "dashboard/index", page.View)
	assert.Equal(t, "Meera", page.Data["admin"])
	assert.Equal(t, "Bearer fresh", h.api.lastCall(t, nethttp.MethodGet, "/api/dashboard/stats").Auth)
	assert.Zero(t, h.api.count(nethttp.MethodGet, "/api/users/profile"))

	activity := rows(t, page, "activity")
	require.Len(t, activity, 1)
	assert.Equal(t, "session.started", activity[0]["Action"])
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	h.api.on(nethttp.MethodPost, "/api/auth/login", nethttp.StatusUnauthorized, `{"message":"Invalid credentials"}`)

	resp := h.postForm("/login", "", url.Values{"email": {"meera@x.in"}, "password": {"bad"}})
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
	page := decodePage(t, resp)
	assert.Equal(t, "auth/login", page.View)
	assert.Equal(t, "Invalid credentials", field(page, "errors", "general"))
	assert.Equal(t, "meera@x.in", page.Data["email"])
	assert.Empty(t, h.eventsOf(events.EventSessionRevoked))
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)
	resp := h.postForm("/login", "", url.Values{"email": {"meera"}, "password": {"pw"}})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "email must be a valid email", field(decodePage(t, resp), "errors", "email"))
	assert.Zero(t, h.api.count(nethttp.MethodPost, "/api/auth/login"))
}

func TestLoginPageRedirectsWhenSignedIn(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	resp := h.get("/login", cookie)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	page := decodePage(t, h.get("/login?notice=signed_out", ""))
	assert.Equal(t, "You have been signed out.", page.Data["notice"])

	page = decodePage(t, h.get("/login?notice=bogus", ""))
	assert.Equal(t, "", page.Data["notice"])
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	sess, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodPost, "/api/auth/logout", nethttp.StatusInternalServerError, ``)

	resp := h.postForm("/logout", cookie, url.Values{})
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?notice=signed_out", resp.Header.Get("Location"))
	assert.True(t, sessionCookieCleared(resp))
	assert.Equal(t, "Bearer tok", h.api.lastCall(t, nethttp.MethodPost, "/api/auth/logout").Auth)

	ok, err := h.manager.IsAuthenticated(context.Background(), sess.ID())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, h.eventsOf(events.EventSessionEnded), 1)
}

func TestForgotPassword(t *testing.T) {
	h := newHarness(t)
	h.api.on(nethttp.MethodPost, "/api/auth/forgot-password", nethttp.StatusOK, `{"message":"sent"}`)

	page := decodePage(t, h.postForm("/forgot-password", "", url.Values{"email": {"meera@x.in"}}))
	assert.Equal(t, "If the address is registered, a reset link is on its way.", page.Data["sent"])
	assert.JSONEq(t, `{"email":"meera@x.in"}`, string(h.api.lastCall(t, nethttp.MethodPost, "/api/auth/forgot-password").Body))

	h.api.on(nethttp.MethodPost, "/api/auth/forgot-password", nethttp.StatusNotFound, `{"message":"User not found"}`)
	resp := h.postForm("/forgot-password", "", url.Values{"email": {"ghost@x.in"}})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "User not found", field(decodePage(t, resp), "errors", "general"))
}

func TestResetPassword(t *testing.T) {
	h := newHarness(t)

	page := decodePage(t, h.get("/reset-password?token=abc", ""))
	assert.Equal(t, "abc", page.Data["token"])

	resp := h.postForm("/reset-password", "", url.Values{"token": {"abc"}, "password": {"secret1"}, "confirm_password": {"secret2"}})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "confirm_password does not match", field(decodePage(t, resp), "errors", "confirm_password"))

	h.api.on(nethttp.MethodPost, "/api/auth/reset-password", nethttp.StatusOK, `{}`)
	resp = h.postForm("/reset-password", "", url.Values{"token": {"abc"}, "password": {"secret1"}, "confirm_password": {"secret1"}})
	assert.Equal(t, "/login?notice=reset", resp.Header.Get("Location"))
	assert.JSONEq(t, `{"token":"abc","newPassword":"secret1"}`, string(h.api.lastCall(t, nethttp.MethodPost, "/api/auth/reset-password").Body))
}

func TestDashboardFetchesProfileOnce(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodGet, "/api/users/profile", nethttp.StatusOK, `{"user":{"name":"Kiran"}}`)
	h.api.on(nethttp.MethodGet, "/api/dashboard/stats", nethttp.StatusOK, `{"totalUsers":10,"revenue":{"month":99.5}}`)

	page := decodePage(t, h.get("/", cookie))
	assert.Equal(t, "Kiran", page.Data["admin"])
	stats := rows(t, page, "stats")
	require.Len(t, stats, 2)
	assert.Equal(t, "revenue.month", stats[0]["Key"])

	h.get("/", cookie)
	assert.Equal(t, 1, h.api.count(nethttp.MethodGet, "/api/users/profile"))
	assert.Equal(t, 2, h.api.count(nethttp.MethodGet, "/api/dashboard/stats"))
}

func TestDashboardEmptyStatsIsNotAnError(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", `{"name":"Kiran"}`)
	h.api.on(nethttp.MethodGet, "/api/dashboard/stats", nethttp.StatusNoContent, ``)

	resp := h.get("/", cookie)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	page := decodePage(t, resp)
	assert.Nil(t, page.Data["error"])
	assert.Empty(t, rows(t, page, "stats"))
}

func TestDashboardStatsUnauthorized(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", `{"name":"Kiran"}`)
	h.api.on(nethttp.MethodGet, "/api/dashboard/stats", nethttp.StatusUnauthorized, ``)

	resp := h.get("/", cookie)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	assert.Len(t, h.eventsOf(events.EventSessionRevoked), 1)
}

func TestProductCreateUploadsMultipart(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodPost, "/api/products", nethttp.StatusCreated, `{"_id":"p1"}`)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("name", "Bamboo Tray"))
	require.NoError(t, w.WriteField("price", "499"))
	require.NoError(t, w.WriteField("category", "Bamboo Strip Tray"))
	part, err := w.CreateFormFile("images", "tray.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(nethttp.MethodPost, "/products", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp := h.do(req, cookie)
	assert.Equal(t, nethttp.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/products?notice=created", resp.Header.Get("Location"))

	call := h.api.lastCall(t, nethttp.MethodPost, "/api/products")
	assert.Equal(t, "Bearer tok", call.Auth)
	assert.True(t, strings.HasPrefix(call.ContentType, "multipart/form-data"))
	assert.Contains(t, string(call.Body), "Bamboo Tray")
	assert.Contains(t, string(call.Body), `filename="tray.png"`)
	assert.Contains(t, string(call.Body), "png-bytes")

	created := h.eventsOf(events.EventProductCreated)
	require.Len(t, created, 1)
	assert.Equal(t, "p1", created[0].SubjectID)
}

func TestProductCreateValidation(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodGet, "/api/products", nethttp.StatusOK, `{"products":[{"_id":"p1","name":"Mask","price":"250","stock":3}]}`)

	resp := h.postForm("/products", cookie, url.Values{"name": {"Mask"}, "price": {"cheap"}})
	assert.Equal(t, nethttp.StatusUnprocessableEntity, resp.StatusCode)
	page := decodePage(t, resp)
	assert.Equal(t, "price must be a number", field(page, "errors", "price"))
	list := rows(t, page, "products")
	require.Len(t, list, 1)
	assert.Equal(t, "250", list[0]["Price"])
	assert.Equal(t, "3", list[0]["Stock"])
	assert.Zero(t, h.api.count(nethttp.MethodPost, "/api/products"))
}

func TestProductDelete(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodDelete, "/api/products/p1", nethttp.StatusOK, `{}`)

	resp := h.postForm("/products/p1/delete", cookie, url.Values{})
	assert.Equal(t, "/products", resp.Header.Get("Location"))
	assert.Zero(t, h.api.count(nethttp.MethodDelete, "/api/products/p1"))

	resp = h.postForm("/products/p1/delete", cookie, url.Values{"confirm": {"yes"}})
	assert.Equal(t, "/products?notice=deleted", resp.Header.Get("Location"))
	assert.Len(t, h.eventsOf(events.EventProductDeleted), 1)
}

func TestOrderStatusUpdate(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodPut, "/api/orders/admin/status/o1", nethttp.StatusOK, `{}`)

	resp := h.postForm("/orders/o1/status", cookie, url.Values{"status": {"teleported"}})
	assert.Equal(t, "/orders?alert=invalid_status", resp.Header.Get("Location"))

	resp = h.postForm("/orders/o1/status", cookie, url.Values{"status": {"shipped"}})
	assert.Equal(t, "/orders?notice=updated", resp.Header.Get("Location"))
	assert.JSONEq(t, `{"status":"shipped"}`, string(h.api.lastCall(t, nethttp.MethodPut, "/api/orders/admin/status/o1").Body))

	changed := h.eventsOf(events.EventOrderStatusChanged)
	require.Len(t, changed, 1)
	assert.Equal(t, events.StatusChangedPayload{Status: "shipped"}, changed[0].Payload)
}

func TestOrdersList(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodGet, "/api/orders/admin/all", nethttp.StatusOK,
		`{"orders":[{"_id":"o1","user":{"name":"Dev"},"totalAmount":1200,"status":"pending"}]}`)

	page := decodePage(t, h.get("/orders?notice=updated", cookie))
	list := rows(t, page, "orders")
	require.Len(t, list, 1)
	assert.Equal(t, "Dev", list[0]["Customer"])
	assert.Equal(t, "1200", list[0]["Total"])
	assert.Equal(t, "Order status updated.", page.Data["success"])
}

func TestSubscriptionActions(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodPost, "/api/subscriptions/s1/pause", nethttp.StatusOK, `{}`)

	resp := h.postForm("/subscriptions/s1/pause", cookie, url.Values{})
	assert.Equal(t, "/subscriptions?notice=pause", resp.Header.Get("Location"))
	assert.Equal(t, 1, h.api.count(nethttp.MethodPost, "/api/subscriptions/s1/pause"))

	resp = h.postForm("/subscriptions/s1/explode", cookie, url.Values{})
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	resp = h.postForm("/subscriptions/s1/resume", cookie, url.Values{})
	assert.Equal(t, "/subscriptions?alert=action_failed", resp.Header.Get("Location"))
}

func TestUserToggleStatus(t *testing.T) {
	h := newHarness(t)
	_, cookie := h.login("tok", "")
	h.api.on(nethttp.MethodPut, "/api/users/u1/status", nethttp.StatusOK, `{}`)
	h.api.on(nethttp.MethodGet, "/api/users", nethttp.StatusOK, `[{"_id":"u1","name":"Lata","isActive":false}]`)

	resp := h.postForm("/users/u1/status", cookie, url.Values{"active": {"true"}})
	assert.Equal(t, "/users?notice=activated", resp.Header.Get("Location"))
	assert.JSONEq(t, `{"isActive":true}`, string(h.api.lastCall(t, nethttp.MethodPut, "/api/users/u1/status").Body))

	resp = h.postForm("/users/u1/status", cookie, url.Values{"active": {"maybe"}})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)

	page := decodePage(t, h.get("/users?notice=activated", cookie))
	assert.Equal(t, "User activated.", page.Data["success"])
	assert.Len(t, rows(t, page, "users"), 1)
}
