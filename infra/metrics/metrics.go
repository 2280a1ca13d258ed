package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/giovaniif/instrument-closet/domain/fault"
	"github.com/giovaniif/instrument-closet/domain/reservation"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	AdmissionTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "closet_admissions_total",
			Help: "Reservation admission decisions by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeAdmitted = "admitted"
	OutcomeRejected = "capacity_exceeded"
	OutcomeInvalid  = "invalid"
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
)

// NormalizePath labels a request by its route template so ids do not explode
// the label cardinality. Unrouted requests share one label.
func NormalizePath(route string) string {
	if route == "" {
		return "unmatched"
	}
	return route
}

func AdmissionOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeAdmitted
	case errors.Is(err, reservation.ErrCapacityExceeded):
		return OutcomeRejected
	case errors.Is(err, fault.ErrInvalid):
		return OutcomeInvalid
	case errors.Is(err, fault.ErrConflict):
		return OutcomeBusy
	default:
		return OutcomeError
	}
}

// ObserveAdmission counts the result of a create or reschedule attempt.
// Authorization and lookup failures never reached admission and are skipped.
func ObserveAdmission(err error) {
	if errors.Is(err, fault.ErrForbidden) || errors.Is(err, fault.ErrUnauthorized) || errors.Is(err, fault.ErrNotFound) {
		return
	}
	AdmissionTotal.WithLabelValues(AdmissionOutcome(err)).Inc()
}

func Middleware(c *gin.Context) {
	if c.Request.URL.Path == "/metrics" {
		c.Next()
		return
	}
	start := time.Now()
	c.Next()
	duration := time.Since(start).Seconds()
	path := NormalizePath(c.FullPath())
	status := strconv.Itoa(c.Writer.Status())
	RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	RequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
}
