package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
)

const usersPath = "/users"

var userFlashes = flashes{
	"activated":     "User activated.",
	"deactivated":   "User deactivated.",
	"update_failed": "Failed to update user.",
}

// UsersHandler serves customer account administration.
type UsersHandler struct {
	Page
	api *apiclient.UsersGroup
}

// NewUsersHandler constructs handler.
func NewUsersHandler(page Page, api *apiclient.UsersGroup) *UsersHandler {
	return &UsersHandler{Page: page, api: api}
}

// List handles GET /users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	data := ViewData{
		"success": userFlashes.from(c, "notice"),
		"alert":   userFlashes.from(c, "alert"),
	}

	users, err := apiclient.DecodeList[apiclient.User](h.api.List(c.UserContext()))
	if err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		data["load_error"] = apiclient.MessageOr(err, "Failed to fetch users")
	}
	data["users"] = users
	return h.render(c, "users/index", "Users", data)
}

// ToggleStatus handles POST /users/:id/status with active=true|false.
func (h *UsersHandler) ToggleStatus(c *fiber.Ctx) error {
	active, err := strconv.ParseBool(c.FormValue("active"))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "active must be true or false")
	}

	id := c.Params("id")
	if _, err := h.api.UpdateStatus(c.UserContext(), id, active); err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		h.logger.Warn("user status update failed", zap.String("user_id", id), zap.Error(err))
		return c.Redirect(withQuery(usersPath, "alert", "update_failed"), http.StatusSeeOther)
	}

	status, notice := "inactive", "deactivated"
	if active {
		status, notice = "active", "activated"
	}
	h.publish(c, events.New(events.EventUserStatusChanged, sessionID(c), id, events.StatusChangedPayload{Status: status}))
	return c.Redirect(withQuery(usersPath, "notice", notice), http.StatusSeeOther)
}
