package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// SubscriptionsGroup manages recurring orders.
type SubscriptionsGroup struct {
	c *Client
}

func subscriptionPath(id string) string {
	return "/api/subscriptions/" + url.PathEscape(id)
}

// List returns all subscriptions.
func (g *SubscriptionsGroup) List(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "subscriptions", op: "list", method: http.MethodGet, path: "/api/subscriptions"})
}

// Get returns one subscription.
func (g *SubscriptionsGroup) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "subscriptions", op: "get", method: http.MethodGet, path: subscriptionPath(id)})
}

// UpdateStatus sets a subscription's status.
func (g *SubscriptionsGroup) UpdateStatus(ctx context.Context, id, status string) (json.RawMessage, error) {
	body := map[string]string{"status": status}
	return g.c.do(ctx, request{group: "subscriptions", op: "update_status", method: http.MethodPut, path: subscriptionPath(id) + "/status", body: body})
}

// Cancel ends a subscription.
func (g *SubscriptionsGroup) Cancel(ctx context.Context, id string) (json.RawMessage, error) {
	return g.action(ctx, id, "cancel")
}

// Pause suspends deliveries.
func (g *SubscriptionsGroup) Pause(ctx context.Context, id string) (json.RawMessage, error) {
	return g.action(ctx, id, "pause")
}

// Resume restarts a paused subscription.
func (g *SubscriptionsGroup) Resume(ctx context.Context, id string) (json.RawMessage, error) {
	return g.action(ctx, id, "resume")
}

func (g *SubscriptionsGroup) action(ctx context.Context, id, action string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "subscriptions", op: action, method: http.MethodPost, path: subscriptionPath(id) + "/" + action})
}
