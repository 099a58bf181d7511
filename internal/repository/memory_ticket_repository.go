package repository

import (
	"context"
	"sync"

	"github.com/spec-kit/parking-ticket-service/internal/domain"
)

// MemoryTicketRepository keeps tickets in process memory. Records are copied
// on the way in and out so callers never share state with the store.
type MemoryTicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]domain.Ticket
	puts    int
}

// NewMemoryTicketRepository creates an empty store.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{tickets: make(map[string]domain.Ticket)}
}

func (r *MemoryTicketRepository) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return cloneTicket(ticket), nil
}

func (r *MemoryTicketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[ticket.ID] = *cloneTicket(*ticket)
	r.puts++
	return nil
}

// Puts returns how many writes the store has accepted.
func (r *MemoryTicketRepository) Puts() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.puts
}

func cloneTicket(t domain.Ticket) *domain.Ticket {
	out := t
	if t.ExitTime != nil {
		v := *t.ExitTime
		out.ExitTime = &v
	}
	if t.ParkedMinutes != nil {
		v := *t.ParkedMinutes
		out.ParkedMinutes = &v
	}
	if t.Charge != nil {
		v := *t.Charge
		out.Charge = &v
	}
	return &out
}
