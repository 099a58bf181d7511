package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-ticket-service/internal/domain"
	"github.com/spec-kit/parking-ticket-service/internal/events"
	"github.com/spec-kit/parking-ticket-service/internal/pricing"
	"github.com/spec-kit/parking-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/parking-ticket-service/pkg/util/errorutil"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type failingRepo struct {
	err error
}

func (r failingRepo) Get(ctx context.Context, id string) (*domain.Ticket, error) { return nil, r.err }
func (r failingRepo) Put(ctx context.Context, t *domain.Ticket) error { return r.err }

func setupParkingService() (*ParkingService, *repository.MemoryTicketRepository, *fakeClock) {
	repo := repository.NewMemoryTicketRepository()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	svc := NewParkingService(ParkingDependencies{
		TicketRepo: repo,
		Tariff:     pricing.DefaultTariff(),
		Clock:      clock.Now,
	})
	return svc, repo, clock
}

func TestOpenTicket_PersistsOpenTicket(t *testing.T) {
	svc, repo, clock := setupParkingService()
	ctx := context.Background()

	ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	require.NoError(t, err)
	require.NotEmpty(t, ticket.ID)

	stored, err := repo.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", stored.Plate)
	assert.Equal(t, "LOT1", stored.ParkingLot)
	assert.Equal(t, clock.Now().Unix(), stored.EntryTime)
	assert.Nil(t, stored.ExitTime)
	assert.False(t, stored.IsClosed())
}

func TestOpenTicket_UniqueIDsWithinSameSecond(t *testing.T) {
	svc, repo, _ := setupParkingService()
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: fmt.Sprintf("P%d", i), ParkingLot: "LOT1"})
		require.NoError(t, err)
		assert.False(t, seen[ticket.ID], "duplicate id %s", ticket.ID)
		seen[ticket.ID] = true
	}
	assert.Equal(t, 50, repo.Puts())
}

func TestOpenTicket_ValidationDoesNotWrite(t *testing.T) {
	svc, repo, _ := setupParkingService()
	ctx := context.Background()

	inputs := []OpenTicketInput{
		{ParkingLot: "LOT1"},
		{Plate: "ABC123"},
		{Plate: "  ", ParkingLot: "LOT1"},
		{},
	}
	for _, in := range inputs {
		_, err := svc.OpenTicket(ctx, in)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed), "input %+v", in)
	}
	assert.Equal(t, 0, repo.Puts())
}

func TestCloseTicket_ComputesCharge(t *testing.T) {
	svc, repo, clock := setupParkingService()
	ctx := context.Background()

	ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	require.NoError(t, err)

	clock.Advance(1000 * time.Second)
	receipt, err := svc.CloseTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(16), receipt.ParkedMinutes)
	assert.Equal(t, "16 minutes", receipt.ParkedDuration)
	assert.Equal(t, "$2.5", receipt.FormattedCharge)
	assert.Equal(t, "ABC123", receipt.Ticket.Plate)
	assert.Equal(t, "LOT1", receipt.Ticket.ParkingLot)

	stored, err := repo.Get(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, stored.IsClosed())
	assert.Equal(t, clock.Now().Unix(), *stored.ExitTime)
	assert.Equal(t, ticket.EntryTime, stored.EntryTime)
	assert.True(t, stored.Charge.Equal(decimal.RequireFromString("2.5")))
}

func TestCloseTicket_FloorsSeconds(t *testing.T) {
	svc, _, clock := setupParkingService()
	ctx := context.Background()

	ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	require.NoError(t, err)

	clock.Advance(125 * time.Second)
	receipt, err := svc.CloseTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), receipt.ParkedMinutes)
	assert.Equal(t, "$0.0", receipt.FormattedCharge)
}

func TestCloseTicket_ChargeByDuration(t *testing.T) {
	cases := map[int]string{0: "$0.0", 14: "$0.0", 15: "$2.5", 29: "$2.5", 30: "$5.0", 44: "$5.0", 45: "$7.5"}
	for minutes, want := range cases {
		svc, _, clock := setupParkingService()
		ctx := context.Background()
		ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
		require.NoError(t, err)

		clock.Advance(time.Duration(minutes) * time.Minute)
		receipt, err := svc.CloseTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.Equal(t, want, receipt.FormattedCharge, "minutes=%d", minutes)
	}
}

func TestCloseTicket_TwiceIsRejected(t *testing.T) {
	svc, repo, clock := setupParkingService()
	ctx := context.Background()

	ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	require.NoError(t, err)
	clock.Advance(31 * time.Minute)
	_, err = svc.CloseTicket(ctx, ticket.ID)
	require.NoError(t, err)
	first, err := repo.Get(ctx, ticket.ID)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.CloseTicket(ctx, ticket.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeAlreadyClosed))

	second, err := repo.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, repo.Puts())
}

func TestCloseTicket_UnknownAndMissingID(t *testing.T) {
	svc, _, _ := setupParkingService()
	ctx := context.Background()

	_, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	require.NoError(t, err)

	_, err = svc.CloseTicket(ctx, "does-not-exist")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = svc.CloseTicket(ctx, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestStoreFailuresAreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	svc := NewParkingService(ParkingDependencies{TicketRepo: failingRepo{err: cause}})
	ctx := context.Background()

	_, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable))
	assert.ErrorIs(t, err, cause)

	_, err = svc.CloseTicket(ctx, "t1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable))

	assert.ErrorIs(t, svc.Ping(ctx), cause)
}

func TestPingIgnoresMissingTicket(t *testing.T) {
	svc, _, _ := setupParkingService()
	assert.NoError(t, svc.Ping(context.Background()))
}

func TestEventsPublished(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	dispatcher := events.NewInMemoryDispatcher()
	var got []events.Event
	record := func(ctx context.Context, e events.Event) error {
		got = append(got, e)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketOpened, record)
	dispatcher.Subscribe(events.EventTicketClosed, record)
	dispatcher.Subscribe(events.EventTicketClosed, func(ctx context.Context, e events.Event) error {
		return errors.New("subscriber failure is not surfaced")
	})

	svc := NewParkingService(ParkingDependencies{TicketRepo: repo, Dispatcher: dispatcher, Clock: clock.Now})
	ctx := context.Background()

	ticket, err := svc.OpenTicket(ctx, OpenTicketInput{Plate: "ABC123", ParkingLot: "LOT1"})
	require.NoError(t, err)
	clock.Advance(45 * time.Minute)
	_, err = svc.CloseTicket(ctx, ticket.ID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, events.EventTicketOpened, got[0].Type)
	assert.Equal(t, ticket.ID, got[0].TicketID)
	assert.NotEmpty(t, got[0].ID)
	closed, ok := got[1].Payload.(events.TicketClosedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(45), closed.ParkedMinutes)
	assert.True(t, closed.Charge.Equal(decimal.RequireFromString("7.5")))
}
