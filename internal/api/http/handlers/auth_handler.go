package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/auth"
	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/session"
	"github.com/vinmart/admin-console/internal/views"
)

const (
	msgLoginFailed   = "Login failed. Please check your credentials."
	msgForgotFailed  = "Failed to send reset link"
	msgForgotSent    = "If the address is registered, a reset link is on its way."
	msgResetFailed   = "Failed to reset password"
	msgResetComplete = "Password updated. You can sign in now."
	msgSignedOut     = "You have been signed out."
)

var loginFlashes = flashes{
	"reset":      msgResetComplete,
	"signed_out": msgSignedOut,
}

// AuthHandler serves sign-in, sign-out and password recovery.
type AuthHandler struct {
	Page
	api       *apiclient.AuthGroup
	sessions  *session.Manager
	validator *views.FormValidator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(page Page, api *apiclient.AuthGroup, sessions *session.Manager, validator *views.FormValidator) *AuthHandler {
	return &AuthHandler{Page: page, api: api, sessions: sessions, validator: validator}
}

// LoginPage handles GET /login.
func (h *AuthHandler) LoginPage(c *fiber.Ctx) error {
	if sess, err := h.guard.Resolve(c); err == nil && sess.Authenticated() {
		return c.Redirect("/", http.StatusFound)
	}
	return h.render(c, "auth/login", "Sign in", ViewData{
		"notice": loginFlashes.from(c, "notice"),
	})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form views.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}
	form.Email = strings.TrimSpace(form.Email)

	if ferr := h.validator.Validate(form); ferr != nil {
		return h.loginError(c, http.StatusUnprocessableEntity, form, ferr)
	}

	result, err := h.api.Login(c.UserContext(), apiclient.Credentials{Email: form.Email, Password: form.Password})
	if err != nil {
		h.logger.Info("login rejected", zap.String("email", form.Email), zap.Error(err))
		return h.loginError(c, loginStatus(err), form, &views.FormError{
			Field:   views.FieldGeneral,
			Message: apiclient.MessageOr(err, msgLoginFailed),
		})
	}

	sess, err := h.sessions.Start(c.UserContext(), result.Token, result.User)
	if err != nil {
		return err
	}
	if err := h.guard.IssueCookie(c, sess); err != nil {
		return err
	}
	auth.Attach(c, sess)
	h.publish(c, events.New(events.EventSessionStarted, sess.ID(), "", nil))
	return c.Redirect("/", http.StatusSeeOther)
}

func (h *AuthHandler) loginError(c *fiber.Ctx, status int, form views.LoginForm, ferr *views.FormError) error {
	c.Status(status)
	return h.render(c, "auth/login", "Sign in", ViewData{
		"email":  form.Email,
		"errors": fieldErrors(ferr),
	})
}

func loginStatus(err error) int {
	switch apiclient.KindOf(err) {
	case apiclient.KindTransport, apiclient.KindServer:
		return http.StatusBadGateway
	default:
		return http.StatusUnauthorized
	}
}

// Logout handles POST /logout. The backend is told first on a best effort
// basis; the local session is cleared regardless.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, _ := auth.SessionFromContext(c)
	if _, err := h.api.Logout(c.UserContext()); err != nil {
		h.logger.Debug("backend logout failed", zap.Error(err))
	}
	removed, err := h.sessions.Clear(c.UserContext(), sess.ID())
	if err != nil {
		return err
	}
	h.guard.ExpireCookie(c)
	if removed {
		h.publish(c, events.New(events.EventSessionEnded, sess.ID(), "", nil))
	}
	return c.Redirect(withQuery(auth.LoginPath, "notice", "signed_out"), http.StatusSeeOther)
}

// ForgotPasswordPage handles GET /forgot-password.
func (h *AuthHandler) ForgotPasswordPage(c *fiber.Ctx) error {
	return h.render(c, "auth/forgot_password", "Forgot password", nil)
}

// ForgotPassword handles POST /forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var form views.ForgotPasswordForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}
	form.Email = strings.TrimSpace(form.Email)

	data := ViewData{"email": form.Email}
	if ferr := h.validator.Validate(form); ferr != nil {
		data["errors"] = fieldErrors(ferr)
		c.Status(http.StatusUnprocessableEntity)
		return h.render(c, "auth/forgot_password", "Forgot password", data)
	}

	if _, err := h.api.ForgotPassword(c.UserContext(), form.Email); err != nil {
		data["errors"] = fieldErrors(&views.FormError{Field: views.FieldGeneral, Message: apiclient.MessageOr(err, msgForgotFailed)})
		c.Status(http.StatusBadGateway)
		if apiclient.KindOf(err) == apiclient.KindValidation || apiclient.IsNotFound(err) {
			c.Status(http.StatusUnprocessableEntity)
		}
		return h.render(c, "auth/forgot_password", "Forgot password", data)
	}
	data["sent"] = msgForgotSent
	return h.render(c, "auth/forgot_password", "Forgot password", data)
}

// ResetPasswordPage handles GET /reset-password?token=...
func (h *AuthHandler) ResetPasswordPage(c *fiber.Ctx) error {
	return h.render(c, "auth/reset_password", "Reset password", ViewData{
		"token": c.Query("token"),
	})
}

// ResetPassword handles POST /reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var form views.ResetPasswordForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid form")
	}

	data := ViewData{"token": form.Token}
	if ferr := h.validator.Validate(form); ferr != nil {
		data["errors"] = fieldErrors(ferr)
		c.Status(http.StatusUnprocessableEntity)
		return h.render(c, "auth/reset_password", "Reset password", data)
	}

	if _, err := h.api.ResetPassword(c.UserContext(), form.Token, form.Password); err != nil {
		data["errors"] = fieldErrors(&views.FormError{Field: views.FieldGeneral, Message: apiclient.MessageOr(err, msgResetFailed)})
		c.Status(http.StatusUnprocessableEntity)
		return h.render(c, "auth/reset_password", "Reset password", data)
	}
	return c.Redirect(withQuery(auth.LoginPath, "notice", "reset"), http.StatusSeeOther)
}
