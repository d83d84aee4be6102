package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/views"
)

const ordersPath = "/orders"

var orderFlashes = flashes{
	"updated":        "Order status updated.",
	"update_failed":  "Failed to update order status.",
	"invalid_status": "Choose a valid order status.",
}

// OrdersHandler serves order administration.
type OrdersHandler struct {
	Page
	api       *apiclient.OrdersGroup
	validator *views.FormValidator
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(page Page, api *apiclient.OrdersGroup, validator *views.FormValidator) *OrdersHandler {
	return &OrdersHandler{Page: page, api: api, validator: validator}
}

type orderRow struct {
	ID       string
	Customer string
	Total    string
	Status   string
	Placed   string
}

// List handles GET /orders.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	data := ViewData{
		"statuses": views.OrderStatuses,
		"success":  orderFlashes.from(c, "notice"),
		"alert":    orderFlashes.from(c, "alert"),
	}

	orders, err := apiclient.DecodeList[apiclient.Order](h.api.List(c.UserContext()))
	if err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		data["load_error"] = apiclient.MessageOr(err, "Failed to fetch orders")
	}

	rows := make([]orderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow{
			ID:       o.ID,
			Customer: o.User.Label(),
			Total:    o.TotalAmount.String(),
			Status:   o.Status,
			Placed:   o.CreatedAt.String(),
		})
	}
	data["orders"] = rows
	return h.render(c, "orders/index", "Orders", data)
}

// UpdateStatus handles POST /orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	var form views.OrderStatusForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}
	if ferr := h.validator.Validate(form); ferr != nil {
		return c.Redirect(withQuery(ordersPath, "alert", "invalid_status"), http.StatusSeeOther)
	}

	id := c.Params("id")
	if _, err := h.api.UpdateStatus(c.UserContext(), id, form.Status); err != nil {
		if h.revoked(c, err) {
			return auth.RedirectToLogin(c)
		}
		h.logger.Warn("order status update failed", zap.String("order_id", id), zap.Error(err))
		return c.Redirect(withQuery(ordersPath, "alert", "update_failed"), http.StatusSeeOther)
	}
	h.publish(c, events.New(events.EventOrderStatusChanged, sessionID(c), id, events.StatusChangedPayload{Status: form.Status}))
	return c.Redirect(withQuery(ordersPath, "notice", "updated"), http.StatusSeeOther)
}
