package dto

// EntryResponse is returned by POST /entry.
type EntryResponse struct {
	TicketID string `json:"ticket_id"`
}

// ExitResponse is returned by POST /exit. Duration and charge are display strings.
type ExitResponse struct {
	Plate         string `json:"plate"`
	ParkedMinutes string `json:"parked_minutes"`
	ParkingLot    string `json:"parking_lot"`
	Charge        string `json:"charge"`
}
