package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
)

// FileField is one uploaded file in a product form.
type FileField struct {
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
}

// ProductForm is the multipart payload for product create and update.
type ProductForm struct {
	Fields url.Values
	Files  []FileField
}

func (f ProductForm) encode() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for key := range f.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		for _, v := range f.Fields[key] {
			if err := w.WriteField(key, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, file := range f.Files {
		if file.Content == nil {
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.FieldName, file.FileName))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// ProductsGroup manages the catalogue.
type ProductsGroup struct {
	c *Client
}

func productPath(id string) string {
	return "/api/products/" + url.PathEscape(id)
}

// List returns all products.
func (g *ProductsGroup) List(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "products", op: "list", method: http.MethodGet, path: "/api/products"})
}

// Get returns one product.
func (g *ProductsGroup) Get(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "products", op: "get", method: http.MethodGet, path: productPath(id)})
}

// Create uploads a new product.
func (g *ProductsGroup) Create(ctx context.Context, form ProductForm) (json.RawMessage, error) {
	return g.upload(ctx, "create", http.MethodPost, "/api/products", form)
}

// Update replaces a product, including its images.
func (g *ProductsGroup) Update(ctx context.Context, id string, form ProductForm) (json.RawMessage, error) {
	return g.upload(ctx, "update", http.MethodPut, productPath(id), form)
}

// Delete removes a product.
func (g *ProductsGroup) Delete(ctx context.Context, id string) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "products", op: "delete", method: http.MethodDelete, path: productPath(id)})
}

// upload sends a multipart body with explicit content type and authorization
// headers, overriding the client defaults.
func (g *ProductsGroup) upload(ctx context.Context, op, method, path string, form ProductForm) (json.RawMessage, error) {
	body, contentType, err := form.encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode product form: %w", err)
	}

	header := http.Header{}
	if token := g.c.tokens.Token(ctx); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	return g.c.do(ctx, request{
		group:       "products",
		op:          op,
		method:      method,
		path:        path,
		raw:         body,
		contentType: contentType,
		header:      header,
	})
}
