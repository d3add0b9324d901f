package linkhandlers

import (
	"context"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vitalvas/deeplink/deeplink"
)

// MetricsConfig configures the Prometheus metrics collector.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "deeplink").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for handler duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics collector.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "deeplink",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics collects Prometheus metrics for a dispatcher.
//
// Metrics collected:
//   - deeplink_handled_total: handler invocations by template and outcome
//     (claimed, declined, error)
//   - deeplink_handler_duration_seconds: handler duration by template
//   - deeplink_unmatched_total: URLs no registration claimed
//
// Templates are labelled by their canonical description, which keeps label
// cardinality bounded by the number of registrations.
type Metrics struct {
	handledTotal    *prometheus.CounterVec
	handlerDuration *prometheus.HistogramVec
	unmatchedTotal  prometheus.Counter
}

// NewMetrics creates and registers the collectors. It panics when the
// collectors are already registered with the configured registry.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		handledTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handled_total",
			Help:        "Total number of deep link handler invocations",
			ConstLabels: config.ConstLabels,
		}, []string{"template", "outcome"}),

		handlerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_duration_seconds",
			Help:        "Deep link handler duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"template"}),

		unmatchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "unmatched_total",
			Help:        "Total number of deep links no registration claimed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware returns a middleware that records handler outcomes and
// durations.
func (m *Metrics) Middleware() deeplink.MiddlewareFunc {
	return func(next deeplink.Invoker) deeplink.Invoker {
		return func(ctx context.Context, match *deeplink.Match) (bool, error) {
			template := match.Registration.String()

			start := time.Now()
			claimed, err := next(ctx, match)

			m.handlerDuration.WithLabelValues(template).Observe(time.Since(start).Seconds())
			m.handledTotal.WithLabelValues(template, outcome(claimed, err)).Inc()

			return claimed, err
		}
	}
}

// OnNoMatch counts URLs no registration claimed. It has the signature of
// deeplink.OnNoMatchFunc.
func (m *Metrics) OnNoMatch(_ context.Context, _ *url.URL, _ *deeplink.NoMatchError) {
	m.unmatchedTotal.Inc()
}

// Options returns the dispatcher options that wire m into a dispatcher.
//
//	metrics := linkhandlers.NewMetrics(linkhandlers.WithNamespace("myapp"))
//	d := deeplink.New(metrics.Options()...)
func (m *Metrics) Options() []deeplink.Option {
	return []deeplink.Option{
		deeplink.WithMiddleware(m.Middleware()),
		deeplink.WithOnNoMatch(m.OnNoMatch),
	}
}
