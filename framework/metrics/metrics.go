package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-envguard/framework/env"
)

// Collector records validation outcomes on its own registry.
type Collector struct {
	registry    *prometheus.Registry
	validations *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	duration    prometheus.Histogram
}

// New creates a Collector with the envguard collectors registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envguard_validations_total",
				Help: "Validation passes by result (valid, invalid, error).",
			},
			[]string{"result"},
		),
		fieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envguard_field_errors_total",
				Help: "Field errors by kind.",
			},
			[]string{"kind"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "envguard_validation_duration_seconds",
			Help:    "Duration of validation passes.",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
	c.registry.MustRegister(c.validations, c.fieldErrors, c.duration)
	return c
}

// Observe records one Validate call. res is nil when err aborted the pass.
func (c *Collector) Observe(res *env.Result, err error, elapsed time.Duration) {
	c.duration.Observe(elapsed.Seconds())

	switch {
	case err != nil:
		c.validations.WithLabelValues("error").Inc()
		var e *env.Error
		if errors.As(err, &e) {
			c.fieldErrors.WithLabelValues(e.Kind.String()).Inc()
		}
	case res.Valid():
		c.validations.WithLabelValues("valid").Inc()
	default:
		c.validations.WithLabelValues("invalid").Inc()
		for _, e := range res.Errors {
			c.fieldErrors.WithLabelValues(e.Kind.String()).Inc()
		}
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
