package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/parking-ticket-service/internal/domain"
)

// ErrTicketNotFound is returned by Get when no ticket has the given id.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository is a key-value view of ticket persistence keyed by ticket id.
// Put inserts or replaces the whole record. There is no read-then-write isolation.
type TicketRepository interface {
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	Put(ctx context.Context, ticket *domain.Ticket) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `
        SELECT ticket_id, plate, parking_lot, entry_time, exit_time, parked_minutes, charge
        FROM parking_tickets WHERE ticket_id=$1`

	var (
		ticket domain.Ticket
		charge decimal.NullDecimal
	)
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.Plate,
		&ticket.ParkingLot,
		&ticket.EntryTime,
		&ticket.ExitTime,
		&ticket.ParkedMinutes,
		&charge,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket %s: %w", ticketID, err)
	}
	if charge.Valid {
		ticket.Charge = &charge.Decimal
	}
	return &ticket, nil
}

func (r *ticketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO parking_tickets (ticket_id, plate, parking_lot, entry_time, exit_time, parked_minutes, charge)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        ON CONFLICT (ticket_id) DO UPDATE SET
            plate=EXCLUDED.plate,
            parking_lot=EXCLUDED.parking_lot,
            entry_time=EXCLUDED.entry_time,
            exit_time=EXCLUDED.exit_time,
            parked_minutes=EXCLUDED.parked_minutes,
            charge=EXCLUDED.charge,
            updated_at=NOW()`

	charge := decimal.NullDecimal{}
	if ticket.Charge != nil {
		charge = decimal.NewNullDecimal(*ticket.Charge)
	}
	if _, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Plate,
		ticket.ParkingLot,
		ticket.EntryTime,
		ticket.ExitTime,
		ticket.ParkedMinutes,
		charge,
	); err != nil {
		return fmt.Errorf("put ticket %s: %w", ticket.ID, err)
	}
	return nil
}
