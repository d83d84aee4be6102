package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/views"
)

const vendorsPath = "/vendors"

var vendorFlashes = flashes{
	"created":       views.CreatedMessage(),
	"deleted":       "Vendor deleted.",
	"delete_failed": views.DeleteFailedMessage(),
}

// VendorsHandler serves vendor management.
type VendorsHandler struct {
	Page
	vendors *views.VendorService
}

// NewVendorsHandler constructs handler.
func NewVendorsHandler(page Page, vendors *views.VendorService) *VendorsHandler {
	return &VendorsHandler{Page: page, vendors: vendors}
}

type vendorRow struct {
	ID         string
	Name       string
	Email      string
	Categories string
	Active     bool
	Created    string
	Deleting   bool
}

type categoryOption struct {
	Label   string
	Checked bool
}

// List handles GET /vendors. ?new=1 opens the create dialog.
func (h *VendorsHandler) List(c *fiber.Ctx) error {
	page := views.NewVendorPage()
	if c.Query("new") == "1" {
		page.OpenDialog()
	}
	if err := h.vendors.Load(c.UserContext(), page); err != nil && h.revoked(c, err) {
		return auth.RedirectToLogin(c)
	}
	if c.Query("alert") == "delete_failed" {
		page.Alert = vendorFlashes.from(c, "alert")
	} else {
		page.Success = vendorFlashes.from(c, "notice")
	}
	return h.renderPage(c, page)
}

// Create handles POST /vendors. Success redirects back to the list, which is
// then fetched exactly once by the follow-up GET.
func (h *VendorsHandler) Create(c *fiber.Ctx) error {
	var form views.VendorForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	page := views.NewVendorPage()
	page.OpenDialog()
	err := h.vendors.Submit(c.UserContext(), page, form)
	if err != nil && h.revoked(c, err) {
		return auth.RedirectToLogin(c)
	}
	if page.Dialog == views.DialogClosed {
		return c.Redirect(withQuery(vendorsPath, "notice", "created"), http.StatusSeeOther)
	}

	if lerr := h.vendors.Load(c.UserContext(), page); lerr != nil && h.revoked(c, lerr) {
		return auth.RedirectToLogin(c)
	}
	c.Status(http.StatusUnprocessableEntity)
	return h.renderPage(c, page)
}

// ConfirmDelete handles GET /vendors/:id/delete.
func (h *VendorsHandler) ConfirmDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if h.vendors.Deleting(id) {
		return c.Redirect(vendorsPath, http.StatusFound)
	}
	return h.render(c, "confirm", "Delete vendor", ViewData{
		"message": "Are you sure you want to delete this vendor?",
		"action":  vendorsPath + "/" + id + "/delete",
		"cancel":  vendorsPath,
	})
}

// Delete handles POST /vendors/:id/delete. Only confirm=yes issues a request.
func (h *VendorsHandler) Delete(c *fiber.Ctx) error {
	confirmed := c.FormValue("confirm") == "yes"
	outcome, err := h.vendors.Delete(c.UserContext(), c.Params("id"), confirmed)
	switch outcome {
	case views.DeleteSucceeded:
		return c.Redirect(withQuery(vendorsPath, "notice", "deleted"), http.StatusSeeOther)
	case views.DeleteFailed:
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		return c.Redirect(withQuery(vendorsPath, "alert", "delete_failed"), http.StatusSeeOther)
	default:
		return c.Redirect(vendorsPath, http.StatusSeeOther)
	}
}

func (h *VendorsHandler) renderPage(c *fiber.Ctx, page *views.VendorPage) error {
	rows := make([]vendorRow, 0, len(page.Vendors))
	for _, v := range page.Vendors {
		row := vendorRow{
			ID:         v.ID,
			Name:       v.Name,
			Email:      v.Email,
			Categories: strings.Join(v.Category, ", "),
			Active:     v.IsActive,
			Deleting:   page.Pending[v.ID],
		}
		if !v.CreatedAt.IsZero() {
			row.Created = v.CreatedAt.Format("Jan 2, 2006")
		}
		rows = append(rows, row)
	}

	options := make([]categoryOption, 0, len(views.VendorCategories))
	for _, label := range views.VendorCategories {
		options = append(options, categoryOption{Label: label, Checked: page.Form.HasCategory(label)})
	}

	return h.render(c, "vendors/index", "Vendors", ViewData{
		"loading":    page.List == views.ListLoading,
		"load_error": page.LoadError,
		"vendors":    rows,
		"dialog":     page.Dialog != views.DialogClosed,
		"submitting": page.Submitting(),
		"form":       page.Form,
		"errors":     fieldErrors(page.FormError),
		"categories": options,
		"success":    page.Success,
		"alert":      page.Alert,
	})
}
