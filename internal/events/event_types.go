package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened EventType = "ticket_opened"
	EventTicketClosed EventType = "ticket_closed"
)

// Event represents a ticket lifecycle event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Plate      string `json:"plate"`
	ParkingLot string `json:"parking_lot"`
	EntryTime  int64  `json:"entry_time"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	Plate         string          `json:"plate"`
	ParkingLot    string          `json:"parking_lot"`
	EntryTime     int64           `json:"entry_time"`
	ExitTime      int64           `json:"exit_time"`
	ParkedMinutes int64           `json:"parked_minutes"`
	Charge        decimal.Decimal `json:"charge"`
}
