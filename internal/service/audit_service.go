package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/events"
	"github.com/vinmart/admin-console/internal/repository"
)

// AuditService records administrative actions published on the dispatcher.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuditRepository
	logger     *zap.Logger
}

// NewAuditService creates the service. repo may be nil, in which case
// events are only logged.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		repo:       repo,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every console event.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))

	if a.repo == nil {
		return nil
	}

	var detail json.RawMessage
	if event.Payload != nil {
		b, err := json.Marshal(event.Payload)
		if err != nil {
			return err
		}
		detail = b
	}

	err := a.repo.Create(context.WithoutCancel(ctx), &repository.AuditEvent{
		ID:        event.ID,
		Action:    string(event.Type),
		SessionID: event.SessionID,
		SubjectID: event.SubjectID,
		Detail:    detail,
		CreatedAt: event.Timestamp,
	})
	if err != nil {
		a.logger.Error("failed to persist audit event", zap.String("event_id", event.ID), zap.Error(err))
	}
	return err
}

// Recent returns the latest persisted audit events.
func (a *AuditService) Recent(ctx context.Context, limit int) ([]repository.AuditEvent, error) {
	if a.repo == nil {
		return nil, nil
	}
	return a.repo.ListRecent(ctx, limit)
}
