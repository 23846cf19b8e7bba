package observe

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestMetrics_CountersRecordWithAttributes(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordSegmentedWord(ctx, "space")
	m.RecordSegmentedWord(ctx, "space")
	m.RecordSegmentedWord(ctx, "newline")
	m.RecordCorrectionApplied(ctx, "common")
	m.RecordFilteredWord(ctx, "too_short")

	rm := collect(t, reader)

	words, ok := findMetric(rm, "autocorrect.segmenter.words")
	if !ok {
		t.Fatal("segmenter words metric not collected")
	}
	sum, ok := words.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("segmenter words data is %T, want Sum[int64]", words.Data)
	}

	byTrigger := map[string]int64{}
	for _, dp := range sum.DataPoints {
		if v, found := dp.Attributes.Value(attribute.Key("trigger")); found {
			byTrigger[v.AsString()] = dp.Value
		}
	}
	if byTrigger["space"] != 2 || byTrigger["newline"] != 1 {
		t.Errorf("segmented words by trigger = %v, want space=2 newline=1", byTrigger)
	}

	if _, ok := findMetric(rm, "autocorrect.corrections.applied"); !ok {
		t.Error("corrections applied metric not collected")
	}
	if _, ok := findMetric(rm, "autocorrect.filter.rejected"); !ok {
		t.Error("filter rejected metric not collected")
	}
}

func TestMetrics_CascadeDurationHistogram(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.CascadeDuration.Record(ctx, 0.012)
	m.CascadeDuration.Record(ctx, 0.350)

	rm := collect(t, reader)
	met, ok := findMetric(rm, "autocorrect.cascade.duration")
	if !ok {
		t.Fatal("cascade duration metric not collected")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("cascade duration data is %T, want Histogram[float64]", met.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("histogram has %d data points, want 1", len(hist.DataPoints))
	}
	if got := hist.DataPoints[0].Count; got != 2 {
		t.Errorf("histogram count = %d, want 2", got)
	}
}

func TestMetrics_ActiveTasksUpDown(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.ActiveTasks.Add(ctx, 1)
	m.ActiveTasks.Add(ctx, 1)
	m.ActiveTasks.Add(ctx, -1)

	rm := collect(t, reader)
	met, ok := findMetric(rm, "autocorrect.tasks.active")
	if !ok {
		t.Fatal("active tasks metric not collected")
	}
	sum, ok := met.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("active tasks data is %T, want Sum[int64]", met.Data)
	}
	if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 1 {
		t.Errorf("active tasks = %+v, want single point of 1", sum.DataPoints)
	}
}

func TestDefaultMetrics_ReturnsSameInstance(t *testing.T) {
	t.Parallel()

	if DefaultMetrics() != DefaultMetrics() {
		t.Error("DefaultMetrics returned different instances")
	}
}
