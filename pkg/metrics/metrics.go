package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rentals",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Booking metrics

	BookingsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "bookings_created_total",
		Help:      "Bookings confirmed since process start.",
	})

	BookingsCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "bookings_cancelled_total",
		Help:      "Bookings cancelled since process start.",
	})

	// Password recovery metrics

	OTPIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "otp_issued_total",
		Help:      "One-time passcodes issued.",
	})

	OTPVerifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "otp_verified_total",
		Help:      "One-time passcode verification attempts, by outcome.",
	}, []string{"outcome"})

	// Persistence metrics

	SnapshotWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rentals",
		Name:      "snapshot_writes_total",
		Help:      "Collection snapshot writes, by outcome.",
	}, []string{"collection", "outcome"})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		BookingsCreatedTotal,
		BookingsCancelledTotal,
		OTPIssuedTotal,
		OTPVerifiedTotal,
		SnapshotWritesTotal,
	)
}

// Handler exposes the registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
