package domain

import "github.com/shopspring/decimal"

// Ticket is one vehicle's parking session. It is open until ExitTime is set.
type Ticket struct {
	ID            string           `json:"ticket_id"`
	Plate         string           `json:"plate"`
	ParkingLot    string           `json:"parking_lot"`
	EntryTime     int64            `json:"entry_time"`
	ExitTime      *int64           `json:"exit_time,omitempty"`
	ParkedMinutes *int64           `json:"parked_minutes,omitempty"`
	Charge        *decimal.Decimal `json:"charge,omitempty"`
}

// IsClosed reports whether the ticket carries a non-zero exit time.
func (t *Ticket) IsClosed() bool {
	return t.ExitTime != nil && *t.ExitTime != 0
}

// Close records the exit fields. Entry fields are left untouched.
func (t *Ticket) Close(exitTime, parkedMinutes int64, charge decimal.Decimal) {
	t.ExitTime = &exitTime
	t.ParkedMinutes = &parkedMinutes
	t.Charge = &charge
}
