package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
)

const subscriptionsPath = "/subscriptions"

var subscriptionFlashes = flashes{
	"cancel":        "Subscription cancelled.",
	"pause":         "Subscription paused.",
	"resume":        "Subscription resumed.",
	"action_failed": "Failed to update subscription.",
}

// SubscriptionsHandler serves subscription administration.
type SubscriptionsHandler struct {
	Page
	api     *apiclient.SubscriptionsGroup
	actions map[string]func(ctx context.Context, id string) (json.RawMessage, error)
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(page Page, api *apiclient.SubscriptionsGroup) *SubscriptionsHandler {
	return &SubscriptionsHandler{
		Page: page,
		api:  api,
		actions: map[string]func(ctx context.Context, id string) (json.RawMessage, error){
			"cancel": api.Cancel,
			"pause":  api.Pause,
			"resume": api.Resume,
		},
	}
}

type subscriptionRow struct {
	ID        string
	Customer  string
	Product   string
	Frequency string
	Status    string
	Next      string
}

// List handles GET /subscriptions.
func (h *SubscriptionsHandler) List(c *fiber.Ctx) error {
	data := ViewData{
		"success": subscriptionFlashes.from(c, "notice"),
		"alert":   subscriptionFlashes.from(c, "alert"),
	}

	subs, err := apiclient.DecodeList[apiclient.Subscription](h.api.List(c.UserContext()))
	if err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		data["load_error"] = apiclient.MessageOr(err, "Failed to fetch subscriptions")
	}

	rows := make([]subscriptionRow, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, subscriptionRow{
			ID:        s.ID,
			Customer:  s.User.Label(),
			Product:   s.Product.Label(),
			Frequency: s.Frequency,
			Status:    s.Status,
			Next:      s.NextDate.String(),
		})
	}
	data["subscriptions"] = rows
	return h.render(c, "subscriptions/index", "Subscriptions", data)
}

// Act handles POST /subscriptions/:id/:action for cancel, pause and resume.
func (h *SubscriptionsHandler) Act(c *fiber.Ctx) error {
	action := c.Params("action")
	call, ok := h.actions[action]
	if !ok {
		return fiber.ErrNotFound
	}

	id := c.Params("id")
	if _, err := call(c.UserContext(), id); err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		h.logger.Warn("subscription action failed", zap.String("subscription_id", id), zap.String("action", action), zap.Error(err))
		return c.Redirect(withQuery(subscriptionsPath, "alert", "action_failed"), http.StatusSeeOther)
	}
	h.publish(c, events.New(events.EventSubscriptionChanged, sessionID(c), id, events.StatusChangedPayload{Status: action}))
	return c.Redirect(withQuery(subscriptionsPath, "notice", action), http.StatusSeeOther)
}
