// Package session owns the administrator's credential token and cached
// profile. Only the Manager writes session state; everything else receives a
// read-only *Session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no record exists for a session id.
	ErrNotFound = errors.New("session not found")
	// ErrEmptyToken is returned when starting a session without a credential.
	ErrEmptyToken = errors.New("credential token is empty")
)

// Record is what a Store keeps for one browser session.
type Record struct {
	Token     string
	Profile   json.RawMessage
	CreatedAt time.Time
}

// Store persists session records under opaque keys.
type Store interface {
	Save(ctx context.Context, key string, rec Record, ttl time.Duration) error
	Load(ctx context.Context, key string) (Record, error)
	SetProfile(ctx context.Context, key string, profile json.RawMessage) error
	// Delete removes the record and reports whether one existed.
	Delete(ctx context.Context, key string) (bool, error)
}

// Session is a read-only view of an administrator's session.
type Session struct {
	id        string
	token     string
	profile   json.RawMessage
	createdAt time.Time
}

func newSession(id string, rec Record) *Session {
	return &Session{id: id, token: rec.Token, profile: rec.Profile, createdAt: rec.CreatedAt}
}

// ID returns the session id carried by the browser cookie.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Token returns the credential token, or "" when none is held.
func (s *Session) Token() string {
	if s == nil {
		return ""
	}
	return s.token
}

// Authenticated reports whether a non-empty credential token is held.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Profile returns a copy of the cached user profile.
func (s *Session) Profile() json.RawMessage {
	if s == nil || len(s.profile) == 0 {
		return nil
	}
	out := make(json.RawMessage, len(s.profile))
	copy(out, s.profile)
	return out
}

// ProfileField returns a top-level string field of the cached profile.
func (s *Session) ProfileField(name string) string {
	if s == nil || len(s.profile) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(s.profile, &fields); err != nil {
		return ""
	}
	v, _ := fields[name].(string)
	return v
}

// CreatedAt returns when the administrator logged in.
func (s *Session) CreatedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.createdAt
}

type ctxKey struct{}

// WithSession returns a context carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the session carried by ctx.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(*Session)
	return sess, ok && sess != nil
}

// ContextTokenSource reads the credential token of the session in the
// request context. It satisfies apiclient.TokenSource.
type ContextTokenSource struct{}

// Token implements apiclient.TokenSource.
func (ContextTokenSource) Token(ctx context.Context) string {
	sess, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return sess.Token()
}
