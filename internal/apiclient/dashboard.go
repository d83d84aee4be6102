package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
)

// DashboardGroup serves aggregate statistics.
type DashboardGroup struct {
	c *Client
}

// Stats fetches the aggregate dashboard numbers.
func (g *DashboardGroup) Stats(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "dashboard", op: "stats", method: http.MethodGet, path: "/api/dashboard/stats"})
}
