package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-ticket-service/internal/domain"
	"github.com/spec-kit/parking-ticket-service/internal/events"
	"github.com/spec-kit/parking-ticket-service/internal/pricing"
	"github.com/spec-kit/parking-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/parking-ticket-service/pkg/util/errorutil"
)

// ParkingService issues tickets on entry and closes them with a fee on exit.
//
// CloseTicket reads, computes and writes without isolation: two concurrent
// closes of the same ticket can both pass the closed check. Both compute the
// same result from the same entry time, and the last write wins.
type ParkingService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	tariff     pricing.Tariff
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// ParkingDependencies bundles collaborators for the parking service.
type ParkingDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Tariff     pricing.Tariff
	Logger     *zap.Logger
	// Clock and NewID default to time.Now and uuid.NewString.
	Clock func() time.Time
	NewID func() string
}

// OpenTicketInput describes a vehicle entry.
type OpenTicketInput struct {
	Plate      string
	ParkingLot string
}

// ExitReceipt is the outcome of closing a ticket.
type ExitReceipt struct {
	Ticket          *domain.Ticket
	ParkedMinutes   int64
	Charge          decimal.Decimal
	ParkedDuration  string
	FormattedCharge string
}

// NewParkingService constructs the service.
func NewParkingService(deps ParkingDependencies) *ParkingService {
	s := &ParkingService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		tariff:     deps.Tariff,
		logger:     deps.Logger,
		now:        deps.Clock,
		newID:      deps.NewID,
	}
	if s.tariff.BlockMinutes <= 0 {
		s.tariff = pricing.DefaultTariff()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// OpenTicket creates an open ticket for the vehicle and returns it.
func (s *ParkingService) OpenTicket(ctx context.Context, input OpenTicketInput) (*domain.Ticket, error) {
	var missing []string
	if strings.TrimSpace(input.Plate) == "" {
		missing = append(missing, "plate")
	}
	if strings.TrimSpace(input.ParkingLot) == "" {
		missing = append(missing, "parkingLot")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("plate and parkingLot are required", map[string]any{"missing": missing})
	}

	ticket := &domain.Ticket{
		ID:         s.newID(),
		Plate:      input.Plate,
		ParkingLot: input.ParkingLot,
		EntryTime:  s.now().Unix(),
	}
	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.logger.Info("ticket opened",
		zap.String("ticket_id", ticket.ID),
		zap.String("parking_lot", ticket.ParkingLot))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketOpened,
		TicketID: ticket.ID,
		Payload: events.TicketOpenedPayload{
			Plate:      ticket.Plate,
			ParkingLot: ticket.ParkingLot,
			EntryTime:  ticket.EntryTime,
		},
	})
	return ticket, nil
}

// CloseTicket stamps the exit time, computes the fee and persists the ticket.
// A closed ticket is never modified again.
func (s *ParkingService) CloseTicket(ctx context.Context, ticketID string) (*ExitReceipt, error) {
	if strings.TrimSpace(ticketID) == "" {
		return nil, apperrors.NewValidationError("ticketId is required", map[string]any{"missing": []string{"ticketId"}})
	}

	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewStoreUnavailable(err)
	}
	if ticket.IsClosed() {
		return nil, apperrors.NewAlreadyClosed(ticketID)
	}

	exitTime := s.now().Unix()
	minutes := pricing.ParkedMinutes(ticket.EntryTime, exitTime)
	charge := s.tariff.Charge(minutes)
	ticket.Close(exitTime, minutes, charge)

	if err := s.tickets.Put(ctx, ticket); err != nil {
		return nil, apperrors.NewStoreUnavailable(err)
	}

	s.logger.Info("ticket closed",
		zap.String("ticket_id", ticket.ID),
		zap.Int64("parked_minutes", minutes),
		zap.String("charge", charge.String()))
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Payload: events.TicketClosedPayload{
			Plate:         ticket.Plate,
			ParkingLot:    ticket.ParkingLot,
			EntryTime:     ticket.EntryTime,
			ExitTime:      exitTime,
			ParkedMinutes: minutes,
			Charge:        charge,
		},
	})

	return &ExitReceipt{
		Ticket:          ticket,
		ParkedMinutes:   minutes,
		Charge:          charge,
		ParkedDuration:  pricing.FormatDuration(minutes),
		FormattedCharge: s.tariff.FormatCharge(charge),
	}, nil
}

// Ping checks the store is reachable by reading a ticket that cannot exist.
func (s *ParkingService) Ping(ctx context.Context) error {
	_, err := s.tickets.Get(ctx, "__healthcheck__")
	if err == nil || errors.Is(err, repository.ErrTicketNotFound) {
		return nil
	}
	return err
}

func (s *ParkingService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
