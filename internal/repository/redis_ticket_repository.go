package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/parking-ticket-service/internal/domain"
)

// DefaultRedisKeyPrefix namespaces ticket keys.
const DefaultRedisKeyPrefix = "parking_ticket:"

type redisTicketRepository struct {
	client redis.Cmdable
	prefix string
}

// NewRedisTicketRepository stores each ticket as a JSON string under prefix+ticket_id.
func NewRedisTicketRepository(client redis.Cmdable, prefix string) TicketRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &redisTicketRepository{client: client, prefix: prefix}
}

func (r *redisTicketRepository) key(ticketID string) string {
	return r.prefix + ticketID
}

func (r *redisTicketRepository) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	raw, err := r.client.Get(ctx, r.key(ticketID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket %s: %w", ticketID, err)
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		return nil, fmt.Errorf("decode ticket %s: %w", ticketID, err)
	}
	return &ticket, nil
}

func (r *redisTicketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	data, err := json.Marshal(ticket)
	if err != nil {
		return fmt.Errorf("encode ticket %s: %w", ticket.ID, err)
	}
	// Retention is handled outside the service, so no expiry.
	if err := r.client.Set(ctx, r.key(ticket.ID), string(data), 0).Err(); err != nil {
		return fmt.Errorf("put ticket %s: %w", ticket.ID, err)
	}
	return nil
}
