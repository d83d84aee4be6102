package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/repository"
)

type memoryAuditRepo struct {
	events []repository.AuditEvent
	err    error
}

func (m *memoryAuditRepo) Create(_ context.Context, e *repository.AuditEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, *e)
	return nil
}

func (m *memoryAuditRepo) ListRecent(_ context.Context, limit int) ([]repository.AuditEvent, error) {
	if limit > len(m.events) {
		limit = len(m.events)
	}
	return m.events[:limit], nil
}

func TestAuditServicePersistsEvents(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	repo := &memoryAuditRepo{}
	svc := NewAuditService(d, repo, zap.NewNop())
	svc.RegisterHandlers()

	payload := events.VendorCreatedPayload{Email: "a@x.com", Categories: []string{"Warli House"}}
	require.NoError(t, d.Publish(context.Background(), events.New(events.EventVendorCreated, "sid", "", payload)))
	require.NoError(t, d.Publish(context.Background(), events.New(events.EventSessionRevoked, "sid", "", nil)))

	require.Len(t, repo.events, 2)
	assert.Equal(t, "vendor.created", repo.events[0].Action)
	assert.JSONEq(t, `{"email":"a@x.com","categories":["Warli House"]}`, string(repo.events[0].Detail))
	assert.Equal(t, "session.revoked", repo.events[1].Action)
	assert.Nil(t, repo.events[1].Detail)

	recent, err := svc.Recent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestAuditServiceWithoutRepoOnlyLogs(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	svc := NewAuditService(d, nil, zap.NewNop())
	svc.RegisterHandlers()

	assert.NoError(t, d.Publish(context.Background(), events.New(events.EventVendorDeleted, "sid", "v1", nil)))
	recent, err := svc.Recent(context.Background(), 10)
	assert.NoError(t, err)
	assert.Empty(t, recent)
}

func TestAuditServiceSurfacesRepoErrors(t *testing.T) {
	d := events.NewInMemoryDispatcher()
	svc := NewAuditService(d, &memoryAuditRepo{err: errors.New("db down")}, zap.NewNop())
	svc.RegisterHandlers()

	assert.Error(t, d.Publish(context.Background(), events.New(events.EventVendorDeleted, "sid", "v1", nil)))
}
