// Package observe provides application-wide observability primitives for the
// autocorrect service: OpenTelemetry metrics, tracing, and structured-logging
// helpers.
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

// meterName is the instrumentation scope name used for all metrics.
const meterName = "github.com/SimplyKushal/intelligent-autocorrect-system"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// CascadeDuration tracks per-word correction-decision latency.
	CascadeDuration metric.Float64Histogram

	// SegmentedWords counts words emitted by the segmenter. Use with
	// attribute: attribute.String("trigger", ...)
	SegmentedWords metric.Int64Counter

	// FilteredWords counts words rejected before the cascade. Use with
	// attribute: attribute.String("reason", ...)
	FilteredWords metric.Int64Counter

	// CorrectionsApplied counts injected corrections. Use with attribute:
	//   attribute.String("source", ...)
	CorrectionsApplied metric.Int64Counter

	// CorrectionsRateLimited counts corrections dropped by the cooldown gate.
	CorrectionsRateLimited metric.Int64Counter

	// SuggesterErrors counts failed suggester calls.
	SuggesterErrors metric.Int64Counter

	// InjectionFailures counts replacements that errored or were declined.
	InjectionFailures metric.Int64Counter

	// DroppedTasks counts per-word tasks dropped at the concurrency cap.
	DroppedTasks metric.Int64Counter

	// ActiveTasks tracks the number of in-flight per-word tasks.
	ActiveTasks metric.Int64UpDownCounter
}

// latencyBuckets defines histogram bucket boundaries (in seconds) sized for
// per-word decision latencies, including slow suggester round trips.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.CascadeDuration, err = m.Float64Histogram("autocorrect.cascade.duration",
		metric.WithDescription("Latency of per-word correction decisions."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	if met.SegmentedWords, err = m.Int64Counter("autocorrect.segmenter.words",
		metric.WithDescription("Total words emitted by the segmenter, by boundary trigger."),
	); err != nil {
		return nil, err
	}
	if met.FilteredWords, err = m.Int64Counter("autocorrect.filter.rejected",
		metric.WithDescription("Total words rejected before the cascade, by reason."),
	); err != nil {
		return nil, err
	}
	if met.CorrectionsApplied, err = m.Int64Counter("autocorrect.corrections.applied",
		metric.WithDescription("Total corrections injected, by cascade source."),
	); err != nil {
		return nil, err
	}
	if met.CorrectionsRateLimited, err = m.Int64Counter("autocorrect.corrections.rate_limited",
		metric.WithDescription("Total corrections dropped by the global cooldown."),
	); err != nil {
		return nil, err
	}
	if met.SuggesterErrors, err = m.Int64Counter("autocorrect.suggester.errors",
		metric.WithDescription("Total failed suggester calls."),
	); err != nil {
		return nil, err
	}
	if met.InjectionFailures, err = m.Int64Counter("autocorrect.injection.failures",
		metric.WithDescription("Total replacements that errored or were declined."),
	); err != nil {
		return nil, err
	}
	if met.DroppedTasks, err = m.Int64Counter("autocorrect.tasks.dropped",
		metric.WithDescription("Total per-word tasks dropped at the concurrency cap."),
	); err != nil {
		return nil, err
	}

	if met.ActiveTasks, err = m.Int64UpDownCounter("autocorrect.tasks.active",
		metric.WithDescription("Number of in-flight per-word processing tasks."),
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

// RecordSegmentedWord records one emitted word with its boundary trigger.
func (m *Metrics) RecordSegmentedWord(ctx context.Context, trigger string) {
	m.SegmentedWords.Add(ctx, 1,
		metric.WithAttributes(attribute.String("trigger", trigger)),
	)
}

// RecordFilteredWord records one word rejected before the cascade.
func (m *Metrics) RecordFilteredWord(ctx context.Context, reason string) {
	m.FilteredWords.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordCorrectionApplied records one injected correction with its source.
func (m *Metrics) RecordCorrectionApplied(ctx context.Context, source string) {
	m.CorrectionsApplied.Add(ctx, 1,
		metric.WithAttributes(attribute.String("source", source)),
	)
}
