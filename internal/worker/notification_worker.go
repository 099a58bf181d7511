package worker

import (
	"github.com/spec-kit/parking-ticket-service/internal/events"
	"github.com/spec-kit/parking-ticket-service/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a
// publisher is given, forwards every ticket event to it.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, publisher *events.KafkaPublisher) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || publisher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketOpened, publisher.Handle)
	dispatcher.Subscribe(events.EventTicketClosed, publisher.Handle)
}
