package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-ticket-service/internal/api/dto"
	"github.com/spec-kit/parking-ticket-service/internal/service"
)

// ParkingHandler exposes the entry and exit operations.
type ParkingHandler struct {
	service *service.ParkingService
}

// NewParkingHandler constructs handler.
func NewParkingHandler(parkingService *service.ParkingService) *ParkingHandler {
	return &ParkingHandler{service: parkingService}
}

// Entry POST /entry?plate=&parkingLot=.
func (h *ParkingHandler) Entry(c *fiber.Ctx) error {
	ticket, err := h.service.OpenTicket(c.UserContext(), service.OpenTicketInput{
		Plate:      c.Query("plate"),
		ParkingLot: c.Query("parkingLot"),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.EntryResponse{TicketID: ticket.ID})
}

// Exit POST /exit?ticketId=.
func (h *ParkingHandler) Exit(c *fiber.Ctx) error {
	receipt, err := h.service.CloseTicket(c.UserContext(), c.Query("ticketId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ExitResponse{
		Plate:         receipt.Ticket.Plate,
		ParkedMinutes: receipt.ParkedDuration,
		ParkingLot:    receipt.Ticket.ParkingLot,
		Charge:        receipt.FormattedCharge,
	})
}

// Fallback handles every request no route matched.
func (h *ParkingHandler) Fallback(c *fiber.Ctx) error {
	op, err := ResolveOperation(c.Method(), c.Path())
	if err != nil {
		return err
	}
	switch op {
	case OperationEntry:
		return h.Entry(c)
	default:
		return h.Exit(c)
	}
}
