// Package observe provides application-wide observability primitives for
// Duskvale: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Duskvale metrics.
const meterName = "github.com/duskvale/duskvale"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// LLMDuration tracks model inference latency per interrogation turn.
	LLMDuration metric.Float64Histogram

	// TurnDuration tracks end-to-end interrogation turn latency including
	// prompt assembly, the model call, parsing, and journal persistence.
	TurnDuration metric.Float64Histogram

	// --- Counters ---

	// Interrogations counts interrogation turns. Use with attributes:
	//   attribute.String("character", ...), attribute.String("outcome", ...)
	// where outcome is one of "model", "fallback", "dead", "unavailable".
	Interrogations metric.Int64Counter

	// JournalAppends counts clues persisted to the journal.
	JournalAppends metric.Int64Counter

	// Eliminations counts elimination guesses. Use with attribute:
	//   attribute.String("result", "win"|"lose")
	Eliminations metric.Int64Counter

	// --- Error counters ---

	// ProviderErrors counts LLM backend errors. Use with attribute:
	//   attribute.String("provider", ...)
	ProviderErrors metric.Int64Counter

	// JournalErrors counts failed journal writes (swallowed by the engine).
	JournalErrors metric.Int64Counter

	// --- Gauges ---

	// ActiveSessions tracks the number of live investigations.
	ActiveSessions metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// chat-completion latencies.
var latencyBuckets = []float64{
	0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.LLMDuration, err = m.Float64Histogram("duskvale.llm.duration",
		metric.WithDescription("Latency of model inference per interrogation turn."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.TurnDuration, err = m.Float64Histogram("duskvale.turn.duration",
		metric.WithDescription("End-to-end interrogation turn latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.Interrogations, err = m.Int64Counter("duskvale.interrogations",
		metric.WithDescription("Total interrogation turns by character and outcome."),
	); err != nil {
		return nil, err
	}
	if met.JournalAppends, err = m.Int64Counter("duskvale.journal.appends",
		metric.WithDescription("Total clues persisted to the journal."),
	); err != nil {
		return nil, err
	}
	if met.Eliminations, err = m.Int64Counter("duskvale.eliminations",
		metric.WithDescription("Total elimination guesses by result."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.ProviderErrors, err = m.Int64Counter("duskvale.provider.errors",
		metric.WithDescription("Total LLM backend errors by provider."),
	); err != nil {
		return nil, err
	}
	if met.JournalErrors, err = m.Int64Counter("duskvale.journal.errors",
		metric.WithDescription("Total failed journal writes."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.ActiveSessions, err = m.Int64UpDownCounter("duskvale.active_sessions",
		metric.WithDescription("Number of live investigations."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("duskvale.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordInterrogation records one interrogation turn with the standard
// attribute set.
func (m *Metrics) RecordInterrogation(ctx context.Context, character, outcome string) {
	m.Interrogations.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("character", character),
			attribute.String("outcome", outcome),
		),
	)
}

// RecordProviderError records one LLM backend error.
func (m *Metrics) RecordProviderError(ctx context.Context, provider string) {
	m.ProviderErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)),
	)
}

// RecordElimination records one elimination guess by result.
func (m *Metrics) RecordElimination(ctx context.Context, result string) {
	m.Eliminations.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)),
	)
}
