package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-ticket-service/internal/config"
)

func TestMetricsRecordTickets(t *testing.T) {
	m := NewMetrics()
	m.RecordTicketOpened("LOT1")
	m.RecordTicketOpened("LOT1")
	m.RecordTicketClosed("LOT1", 16, 2.5)
	m.RecordTicketClosed("LOT1", 3, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticketsOpened.WithLabelValues("LOT1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticketsClosed.WithLabelValues("LOT1")))
	assert.Equal(t, 2.5, testutil.ToFloat64(m.chargeTotal.WithLabelValues("LOT1")))
}

func TestMetricsRecordRequest(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/entry", "POST", 200, 5*time.Millisecond)
	m.RecordError("/exit", "POST", "NOT_FOUND")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("POST", "/entry", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues("POST", "/exit", "NOT_FOUND")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTicketOpened("LOT1")
		m.RecordTicketClosed("LOT1", 1, 1)
		m.RecordRequest("/entry", "POST", 200, time.Millisecond)
		m.RecordError("/entry", "POST", "X")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	logger, err = NewLogger(config.LoggerConfig{Level: "bogus"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
}
