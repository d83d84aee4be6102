package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// OrdersGroup exposes the admin scoped order endpoints.
type OrdersGroup struct {
	c *Client
}

// List returns every order.
func (g *OrdersGroup) List(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "orders", op: "list", method: http.MethodGet, path: "/api/orders/admin/all"})
}

// Get returns one order.
func (g *OrdersGroup) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "orders", op: "get", method: http.MethodGet, path: "/api/orders/admin/" + url.PathEscape(id)})
}

// UpdateStatus moves an order to status.
func (g *OrdersGroup) UpdateStatus(ctx context.Context, id, status string) (json.RawMessage, error) {
	body := map[string]string{"status": status}
	return g.c.do(ctx, request{group: "orders", op: "update_status", method: http.MethodPut, path: "/api/orders/admin/status/" + url.PathEscape(id), body: body})
}
