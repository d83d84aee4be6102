package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// UsersGroup manages customer and staff accounts.
type UsersGroup struct {
	c *Client
}

func userPath(id string) string {
	return "/api/users/" + url.PathEscape(id)
}

// List returns all users.
func (g *UsersGroup) List(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "users", op: "list", method: http.MethodGet, path: "/api/users"})
}

// Get returns one user.
func (g *UsersGroup) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "users", op: "get", method: http.MethodGet, path: userPath(id)})
}

// Create adds a user.
func (g *UsersGroup) Create(ctx context.Context, data any) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "users", op: "create", method: http.MethodPost, path: "/api/users", body: data})
}

// Update replaces a user's fields.
func (g *UsersGroup) Update(ctx context.Context, id string, data any) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "users", op: "update", method: http.MethodPut, path: userPath(id), body: data})
}

// UpdateStatus activates or deactivates a user.
func (g *UsersGroup) UpdateStatus(ctx context.Context, id string, active bool) (json.RawMessage, error) {
	body := map[string]bool{"isActive": active}
	return g.c.do(ctx, request{group: "users", op: "update_status", method: http.MethodPut, path: userPath(id) + "/status", body: body})
}

// Delete removes a user.
func (g *UsersGroup) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "users", op: "delete", method: http.MethodDelete, path: userPath(id)})
}
