package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OperationMetrics records service-level operation outcomes. Every module
// service drives one of these from its telemetry wrapper.
type OperationMetrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

type prometheusOperationMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewOperationMetrics registers and returns prometheus-backed operation metrics.
func NewOperationMetrics(registry *prometheus.Registry) OperationMetrics {
	m := &prometheusOperationMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_attempts_total",
			Help: "Number of service operations started.",
		}, []string{"operation", "service"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_successes_total",
			Help: "Number of service operations that completed without error.",
		}, []string{"operation", "service"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "operation_failures_total",
			Help: "Number of service operations that returned an error or panicked.",
		}, []string{"operation", "service"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "operation_duration_seconds",
			Help:    "Service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
	}
	registry.MustRegister(m.attempts, m.successes, m.failures, m.duration)
	return m
}

func (m *prometheusOperationMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.attempts.WithLabelValues(operation, service).Inc()
}

func (m *prometheusOperationMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.successes.WithLabelValues(operation, service).Inc()
}

func (m *prometheusOperationMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.failures.WithLabelValues(operation, service).Inc()
}

func (m *prometheusOperationMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.duration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

type noopOperationMetrics struct{}

// NewNoopOperationMetrics returns metrics that discard everything, for tests.
func NewNoopOperationMetrics() OperationMetrics { return noopOperationMetrics{} }

func (noopOperationMetrics) RecordOperationAttempt(context.Context, string, string) {}
func (noopOperationMetrics) RecordOperationSuccess(context.Context, string, string) {}
func (noopOperationMetrics) RecordOperationFailure(context.Context, string, string) {}
func (noopOperationMetrics) RecordOperationDuration(context.Context, string, string, time.Duration) {
}

// HTTPMetrics tracks the REST surface.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewHTTPMetrics registers and returns HTTP metrics.
func NewHTTPMetrics(registry *prometheus.Registry) *HTTPMetrics {
	m := &HTTPMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Number of HTTP requests served.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		}),
	}
	registry.MustRegister(m.requests, m.duration, m.inFlight)
	return m
}

// ObserveRequest records one finished request.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RequestStarted marks a request in flight; the returned func marks it done.
func (m *HTTPMetrics) RequestStarted() func() {
	m.inFlight.Inc()
	return m.inFlight.Dec
}

// HandlerMetrics tracks watermill event handler outcomes.
type HandlerMetrics struct {
	attempts *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHandlerMetrics registers and returns event handler metrics.
func NewHandlerMetrics(registry *prometheus.Registry) *HandlerMetrics {
	m := &HandlerMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_handler_attempts_total",
			Help: "Number of event handler invocations.",
		}, []string{"handler"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_handler_failures_total",
			Help: "Number of event handler invocations that returned an error.",
		}, []string{"handler"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "event_handler_duration_seconds",
			Help:    "Event handler latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler"}),
	}
	registry.MustRegister(m.attempts, m.failures, m.duration)
	return m
}

// RecordHandlerAttempt counts a handler invocation.
func (m *HandlerMetrics) RecordHandlerAttempt(_ context.Context, handlerName string) {
	m.attempts.WithLabelValues(handlerName).Inc()
}

// RecordHandlerSuccess records a successful invocation's latency.
func (m *HandlerMetrics) RecordHandlerSuccess(_ context.Context, handlerName string, duration time.Duration) {
	m.duration.WithLabelValues(handlerName).Observe(duration.Seconds())
}

// RecordHandlerFailure counts a failed invocation.
func (m *HandlerMetrics) RecordHandlerFailure(_ context.Context, handlerName string) {
	m.failures.WithLabelValues(handlerName).Inc()
}

// EventBusMetrics tracks message traffic through the NATS event bus.
type EventBusMetrics struct {
	published       *prometheus.CounterVec
	publishFailures *prometheus.CounterVec
	consumed        *prometheus.CounterVec
}

// NewEventBusMetrics registers and returns event bus metrics.
func NewEventBusMetrics(registry *prometheus.Registry) *EventBusMetrics {
	m := &EventBusMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbus_published_total",
			Help: "Number of messages published per topic.",
		}, []string{"topic"}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbus_publish_failures_total",
			Help: "Number of failed publishes per topic.",
		}, []string{"topic"}),
		consumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eventbus_consumed_total",
			Help: "Number of messages consumed per topic.",
		}, []string{"topic"}),
	}
	registry.MustRegister(m.published, m.publishFailures, m.consumed)
	return m
}

// RecordPublished counts a successful publish.
func (m *EventBusMetrics) RecordPublished(topic string) {
	m.published.WithLabelValues(topic).Inc()
}

// RecordPublishFailure counts a failed publish.
func (m *EventBusMetrics) RecordPublishFailure(topic string) {
	m.publishFailures.WithLabelValues(topic).Inc()
}

// RecordConsumed counts a consumed message.
func (m *EventBusMetrics) RecordConsumed(topic string) {
	m.consumed.WithLabelValues(topic).Inc()
}
