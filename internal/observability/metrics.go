package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors of the service. Each instance owns
// its registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	ticketsOpened   *prometheus.CounterVec
	ticketsClosed   *prometheus.CounterVec
	parkedMinutes   *prometheus.HistogramVec
	chargeTotal     *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "path", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP errors by error code",
		}, []string{"method", "path", "code"}),
		ticketsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_tickets_opened_total",
			Help: "Tickets issued on entry",
		}, []string{"parking_lot"}),
		ticketsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_tickets_closed_total",
			Help: "Tickets closed on exit",
		}, []string{"parking_lot"}),
		parkedMinutes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "parking_parked_minutes",
			Help:    "Parked minutes of closed tickets",
			Buckets: []float64{15, 30, 60, 120, 240, 480, 1440},
		}, []string{"parking_lot"}),
		chargeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "parking_charge_total",
			Help: "Sum of charges of closed tickets",
		}, []string{"parking_lot"}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, path, code).Inc()
}

// RecordTicketOpened counts an issued ticket.
func (m *Metrics) RecordTicketOpened(parkingLot string) {
	if m == nil {
		return
	}
	m.ticketsOpened.WithLabelValues(parkingLot).Inc()
}

// RecordTicketClosed counts a closed ticket with its duration and charge.
func (m *Metrics) RecordTicketClosed(parkingLot string, parkedMinutes int64, charge float64) {
	if m == nil {
		return
	}
	m.ticketsClosed.WithLabelValues(parkingLot).Inc()
	m.parkedMinutes.WithLabelValues(parkingLot).Observe(float64(parkedMinutes))
	if charge > 0 {
		m.chargeTotal.WithLabelValues(parkingLot).Add(charge)
	}
}
