package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is what a successful login hands back to the session layer.
type LoginResult struct {
	Token string
	User  json.RawMessage
	Raw   json.RawMessage
}

type loginResponse struct {
	Token string          `json:"token"`
	User  json.RawMessage `json:"user"`
	Data  *struct {
		Token string          `json:"token"`
		User  json.RawMessage `json:"user"`
	} `json:"data"`
}

// AuthGroup covers login, logout, profile and password reset.
type AuthGroup struct {
	c *Client
}

// Login exchanges credentials for a credential token.
func (g *AuthGroup) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	raw, err := g.c.do(ctx, request{group: "auth", op: "login", method: http.MethodPost, path: "/api/auth/login", body: creds})
	resp, err := Decode[loginResponse](raw, err)
	if err != nil {
		return nil, err
	}

	token, user := resp.Token, resp.User
	if token == "" && resp.Data != nil {
		token, user = resp.Data.Token, resp.Data.User
	}
	if token == "" {
		return nil, fmt.Errorf("login response carried no token")
	}
	return &LoginResult{Token: token, User: user, Raw: raw}, nil
}

// Logout tells the backend the session is over.
func (g *AuthGroup) Logout(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "auth", op: "logout", method: http.MethodPost, path: "/api/auth/logout"})
}

// Profile fetches the logged in user's profile.
func (g *AuthGroup) Profile(ctx context.Context) (json.RawMessage, error) {
	return g.c.do(ctx, request{group: "auth", op: "profile", method: http.MethodGet, path: "/api/users/profile"})
}

// ForgotPassword asks the backend to mail a reset link.
func (g *AuthGroup) ForgotPassword(ctx context.Context, email string) (json.RawMessage, error) {
	body := map[string]string{"email": email}
	return g.c.do(ctx, request{group: "auth", op: "forgot_password", method: http.MethodPost, path: "/api/auth/forgot-password", body: body})
}

// ResetPassword exchanges a reset token and a new password.
func (g *AuthGroup) ResetPassword(ctx context.Context, token, password string) (json.RawMessage, error) {
	body := map[string]string{"token": token, "newPassword": password}
	return g.c.do(ctx, request{group: "auth", op: "reset_password", method: http.MethodPost, path: "/api/auth/reset-password", body: body})
}
