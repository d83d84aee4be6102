package handlers

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/views"
)

const (
	productsPath = "/products"
	imagesField  = "images"

	msgFetchProductsFailed = "Failed to fetch products"
	msgCreateProductFailed = "Failed to create product"
	msgDeleteProductFailed = "Failed to delete product."
)

var productFlashes = flashes{
	"created":       "Product created successfully!",
	"deleted":       "Product deleted.",
	"delete_failed": msgDeleteProductFailed,
}

// ProductsHandler serves the catalogue pages.
type ProductsHandler struct {
	Page
	api       *apiclient.ProductsGroup
	validator *views.FormValidator
	deleting  *views.InFlight
}

// NewProductsHandler constructs handler.
func NewProductsHandler(page Page, api *apiclient.ProductsGroup, validator *views.FormValidator) *ProductsHandler {
	return &ProductsHandler{Page: page, api: api, validator: validator, deleting: views.NewInFlight()}
}

type productRow struct {
	ID         string
	Name       string
	Price      string
	Stock      string
	Categories string
	Image      string
	Deleting   bool
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	data := ViewData{}
	if c.Query("alert") != "" {
		data["alert"] = productFlashes.from(c, "alert")
	} else {
		data["success"] = productFlashes.from(c, "notice")
	}
	if err := h.load(c, data); err != nil {
		return auth.RedirectToLogin(c)
	}
	return h.render(c, "products/index", "Products", data)
}

// load fills data with the product list. A non-nil return means the session
// was revoked.
func (h *ProductsHandler) load(c *fiber.Ctx, data ViewData) error {
	products, err := apiclient.DecodeList[apiclient.Product](h.api.List(c.UserContext()))
	if err != nil {
		if h.revoked(c, err) {
			return err
		}
		data["load_error"] = apiclient.MessageOr(err, msgFetchProductsFailed)
	}

	pending := h.deleting.Snapshot()
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		row := productRow{
			ID:         p.ID,
			Name:       p.Name,
			Price:      p.Price.String(),
			Stock:      p.Stock.String(),
			Categories: strings.Join(p.Category, ", "),
			Deleting:   pending[p.ID],
		}
		if len(p.Images) > 0 {
			row.Image = p.Images[0]
		}
		rows = append(rows, row)
	}
	data["products"] = rows
	data["categories"] = views.VendorCategories
	return nil
}

// Create handles POST /products as a multipart upload.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var form views.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}
	form.Name = strings.TrimSpace(form.Name)

	if ferr := h.validator.Validate(form); ferr != nil {
		return h.createFailed(c, form, ferr)
	}

	files, closeFiles, err := uploadedFiles(c, imagesField)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid upload")
	}
	defer closeFiles()

	raw, err := h.api.Create(c.UserContext(), apiclient.ProductForm{
		Fields: productFields(form),
		Files:  files,
	})
	if err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		h.logger.Warn("product create failed", zap.Error(err))
		return h.createFailed(c, form, &views.FormError{
			Field:   views.FieldGeneral,
			Message: apiclient.MessageOr(err, msgCreateProductFailed),
		})
	}

	created, _ := apiclient.Decode[struct {
		ID string `json:"_id"`
	}](raw, nil)
	h.publish(c, events.New(events.EventProductCreated, sessionID(c), created.ID, nil))
	return c.Redirect(withQuery(productsPath, "notice", "created"), http.StatusSeeOther)
}

func (h *ProductsHandler) createFailed(c *fiber.Ctx, form views.ProductForm, ferr *views.FormError) error {
	data := ViewData{
		"form":   form,
		"errors": fieldErrors(ferr),
		"dialog": true,
	}
	if err := h.load(c, data); err != nil {
		return auth.RedirectToLogin(c)
	}
	c.Status(http.StatusUnprocessableEntity)
	return h.render(c, "products/index", "Products", data)
}

// ConfirmDelete handles GET /products/:id/delete.
func (h *ProductsHandler) ConfirmDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if h.deleting.Has(id) {
		return c.Redirect(productsPath, http.StatusFound)
	}
	return h.render(c, "confirm", "Delete product", ViewData{
		"message": "Are you sure you want to delete this product?",
		"action":  productsPath + "/" + id + "/delete",
		"cancel":  productsPath,
	})
}

// Delete handles POST /products/:id/delete.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if c.FormValue("confirm") != "yes" || !h.deleting.Begin(id) {
		return c.Redirect(productsPath, http.StatusSeeOther)
	}
	defer h.deleting.End(id)

	if _, err := h.api.Delete(c.UserContext(), id); err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		h.logger.Warn("product delete failed", zap.String("product_id", id), zap.Error(err))
		return c.Redirect(withQuery(productsPath, "alert", "delete_failed"), http.StatusSeeOther)
	}
	h.publish(c, events.New(events.EventProductDeleted, sessionID(c), id, nil))
	return c.Redirect(withQuery(productsPath, "notice", "deleted"), http.StatusSeeOther)
}

func productFields(form views.ProductForm) url.Values {
	fields := url.Values{}
	fields.Set("name", form.Name)
	fields.Set("price", form.Price)
	if form.Description != "" {
		fields.Set("description", form.Description)
	}
	if form.Stock != "" {
		fields.Set("stock", form.Stock)
	}
	for _, cat := range form.Category {
		fields.Add("category", cat)
	}
	return fields
}

// uploadedFiles opens every file posted under field. The returned func
// closes them once the upstream request has been sent.
func uploadedFiles(c *fiber.Ctx, field string) ([]apiclient.FileField, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}
	mf, err := c.MultipartForm()
	if err != nil {
		return nil, noop, err
	}

	var (
		files   []apiclient.FileField
		closers []io.Closer
	)
	closeAll := func() {
		for _, cl := range closers {
			_ = cl.Close()
		}
	}
	for _, fh := range mf.File[field] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, noop, err
		}
		closers = append(closers, f)
		files = append(files, apiclient.FileField{
			FieldName:   field,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Content:     f,
		})
	}
	return files, closeAll, nil
}
