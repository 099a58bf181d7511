package repository

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/parking-ticket-service/internal/domain"
	"github.com/spec-kit/parking-ticket-service/internal/persistence"
	"github.com/spec-kit/parking-ticket-service/migrations"
)

func TestPostgresTicketRepository(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, persistence.RunMigrations(ctx, pool, migrations.Files, zap.NewNop()))

	repo := NewTicketRepository(pool)
	id := uuid.NewString()

	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	ticket := &domain.Ticket{ID: id, Plate: "ABC123", ParkingLot: "LOT1", EntryTime: 100}
	require.NoError(t, repo.Put(ctx, ticket))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.IsClosed())
	assert.Nil(t, got.Charge)

	ticket.Close(1100, 16, decimal.RequireFromString("2.5"))
	require.NoError(t, repo.Put(ctx, ticket))

	got, err = repo.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.IsClosed())
	assert.Equal(t, int64(1100), *got.ExitTime)
	assert.Equal(t, int64(16), *got.ParkedMinutes)
	assert.True(t, got.Charge.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, "ABC123", got.Plate)
}
