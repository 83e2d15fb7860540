package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/talent-gateway/internal/events"
)

// AuditService turns gateway events into structured audit log lines. It is
// the only consumer of the event bus; nothing it does is persisted.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLoginSucceeded)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventSessionRejected, a.handleSessionRejected)
	a.dispatcher.Subscribe(events.EventUpstreamFailed, a.handleUpstreamFailed)
	a.dispatcher.Subscribe(events.EventBreakerChanged, a.handleBreakerChanged)
}

func (a *AuditService) handleLoginSucceeded(_ context.Context, event events.Event) error {
	a.logger.Info("LoginSucceeded", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleLoginFailed(_ context.Context, event events.Event) error {
	a.logger.Warn("LoginFailed", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleSessionRejected(_ context.Context, event events.Event) error {
	a.logger.Warn("SessionRejected", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleUpstreamFailed(_ context.Context, event events.Event) error {
	a.logger.Error("UpstreamFailed", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}

func (a *AuditService) handleBreakerChanged(_ context.Context, event events.Event) error {
	a.logger.Warn("BreakerChanged", zap.String("event_id", event.ID), zap.Any("payload", event.Payload))
	return nil
}
