package session

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const keyPrefix = "admin:session:"

// Manager is the single writer of session state.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager builds a manager over store; records expire after ttl.
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl, now: time.Now}
}

// TTL returns how long records are retained.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// storeKey hashes the session id so store contents never hold live cookie values.
func storeKey(id string) string {
	sum := blake2b.Sum256([]byte(id))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Start persists a new session for a freshly issued credential token.
func (m *Manager) Start(ctx context.Context, token string, profile json.RawMessage) (*Session, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	id := uuid.NewString()
	rec := Record{Token: token, Profile: profile, CreatedAt: m.now().UTC()}
	if err := m.store.Save(ctx, storeKey(id), rec, m.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return newSession(id, rec), nil
}

// Load returns the session for id, or ErrNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	rec, err := m.store.Load(ctx, storeKey(id))
	if err != nil {
		return nil, err
	}
	return newSession(id, rec), nil
}

// IsAuthenticated reports whether id names a session holding a non-empty
// credential token. A missing session is not an error.
func (m *Manager) IsAuthenticated(ctx context.Context, id string) (bool, error) {
	sess, err := m.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sess.Authenticated(), nil
}

// UpdateProfile replaces the cached profile of an existing session.
func (m *Manager) UpdateProfile(ctx context.Context, id string, profile json.RawMessage) error {
	return m.store.SetProfile(ctx, storeKey(id), profile)
}

// Clear removes the token and cached profile together. It reports whether a
// record was removed, so concurrent clears of one session succeed only once.
func (m *Manager) Clear(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return m.store.Delete(ctx, storeKey(id))
}
