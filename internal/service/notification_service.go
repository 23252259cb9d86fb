package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/bookswap-service/internal/config"
	"github.com/spec-kit/bookswap-service/internal/events"
)

// NotificationService emits notifications for marketplace events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotifyConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotifyConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventExchangeRequested, n.handleExchangeRequested)
	n.dispatcher.Subscribe(events.EventExchangeStatusChanged, n.handleExchangeStatusChanged)
	n.dispatcher.Subscribe(events.EventMessageSent, n.handleMessageSent)
}

func (n *NotificationService) handleExchangeRequested(ctx context.Context, event events.Event) error {
	n.logger.Info("ExchangeRequested", zap.String("exchange_id", event.ResourceID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleExchangeStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ExchangeStatusChanged", zap.String("exchange_id", event.ResourceID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleMessageSent(ctx context.Context, event events.Event) error {
	n.logger.Info("MessageSent", zap.String("message_id", event.ResourceID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("resource_id", event.ResourceID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("resource_id", event.ResourceID),
		zap.String("event_type", string(event.Type)))
}
