package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Categories is a vendor's label list. The backend sometimes stores a single
// label as a plain string; both forms decode to a slice.
type Categories []string

// UnmarshalJSON accepts either a string or an array of strings.
func (c *Categories) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if single == "" {
			*c = Categories{}
			return nil
		}
		*c = Categories{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// Vendor is a marketplace seller.
type Vendor struct {
	ID        string     `json:"_id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Category  Categories `json:"category"`
	IsActive  bool       `json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
}

// NewVendor is the create payload.
type NewVendor struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Category []string `json:"category"`
}

// VendorsGroup exposes the admin scoped vendor endpoints.
type VendorsGroup struct {
	c *Client
}

// List returns every vendor. Both a bare array and a wrapped one are accepted.
func (g *VendorsGroup) List(ctx context.Context) ([]Vendor, error) {
	return DecodeList[Vendor](g.c.do(ctx, request{group: "vendors", op: "list", method: http.MethodGet, path: "/api/vendor/admin/all"}))
}

// Create registers a vendor account.
func (g *VendorsGroup) Create(ctx context.Context, v NewVendor) (json.RawMessage, error) {
	if v.Category == nil {
		v.Category = []string{}
	}
	return g.c.do(ctx, request{group: "vendors", op: "create", method: http.MethodPost, path: "/api/vendor", body: v})
}

// Delete removes a vendor.
func (g *VendorsGroup) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "vendors", op: "delete", method: http.MethodDelete, path: "/api/vendor/" + url.PathEscape(id)})
}
