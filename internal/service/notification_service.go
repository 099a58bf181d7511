package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/parking-ticket-service/internal/events"
	"github.com/spec-kit/parking-ticket-service/internal/observability"
)

// NotificationService reacts to ticket lifecycle events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketOpened, n.handleTicketOpened)
	n.dispatcher.Subscribe(events.EventTicketClosed, n.handleTicketClosed)
}

func (n *NotificationService) handleTicketOpened(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketOpenedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Debug("TicketOpened", zap.String("ticket_id", event.TicketID), zap.String("parking_lot", payload.ParkingLot))
	n.metrics.RecordTicketOpened(payload.ParkingLot)
	return nil
}

func (n *NotificationService) handleTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketClosedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Debug("TicketClosed",
		zap.String("ticket_id", event.TicketID),
		zap.Int64("parked_minutes", payload.ParkedMinutes),
		zap.String("charge", payload.Charge.String()))
	n.metrics.RecordTicketClosed(payload.ParkingLot, payload.ParkedMinutes, payload.Charge.InexactFloat64())
	return nil
}
