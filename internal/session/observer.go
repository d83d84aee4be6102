package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/vinmart/admin-console/internal/apiclient"
	"github.com/vinmart/admin-console/internal/events"
)

// Observer reacts to authorization failures coming back from the API client.
// The client only reports them; the observer clears the session and tells
// the caller to send the administrator back to the login page.
type Observer struct {
	manager    *Manager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewObserver wires an observer to the session manager.
func NewObserver(manager *Manager, dispatcher events.Dispatcher, logger *zap.Logger) *Observer {
	if dispatcher == nil {
		dispatcher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{manager: manager, dispatcher: dispatcher, logger: logger}
}

// Handle inspects err. For an authorization failure it clears sess and
// returns true, meaning the caller must redirect to login. Any other error is
// left to the caller and Handle returns false.
func (o *Observer) Handle(ctx context.Context, sess *Session, err error) bool {
	if err == nil || !apiclient.IsUnauthorized(err) {
		return false
	}
	if sess == nil {
		return true
	}

	removed, clearErr := o.manager.Clear(context.WithoutCancel(ctx), sess.ID())
	if clearErr != nil {
		o.logger.Error("failed to clear rejected session", zap.Error(clearErr))
		return true
	}
	if removed {
		o.logger.Info("credential rejected by api, session cleared")
		if pubErr := o.dispatcher.Publish(ctx, events.New(events.EventSessionRevoked, sess.ID(), "", nil)); pubErr != nil {
			o.logger.Warn("session revoked handlers failed", zap.Error(pubErr))
		}
	}
	return true
}
