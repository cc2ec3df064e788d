package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/oteladapters"
	"github.com/AntonStoeckl/conditional-filter-go/testutil/filterhelper"
)

func newTestMeter() (*sdkmetric.ManualReader, metric.Meter) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	return reader, provider.Meter("test")
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	// arrange
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordDuration("search_duration_seconds", 150*time.Millisecond, map[string]string{"outcome": "applied"})

	// assert
	histogram := findHistogramMetric(t, collect(t, reader), "search_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)

	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	expectedAttrs := attribute.NewSet(attribute.String("outcome", "applied"))
	assert.True(t, dataPoint.Attributes.Equals(&expectedAttrs))
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	// arrange
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"outcome": "stale"}

	// act
	collector.IncrementCounter("search_total", labels)
	collector.IncrementCounterContext(context.Background(), "search_total", labels)

	// assert
	counter := findCounterMetric(t, collect(t, reader), "search_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	// arrange
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	collector.RecordValue("search_results", 7, nil)
	collector.RecordValueContext(context.Background(), "search_results", 3, nil)

	// assert
	gauge := findGaugeMetric(t, collect(t, reader), "search_results")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, float64(3), gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_ConcurrentUse(t *testing.T) {
	// arrange
	reader, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(meter)

	// act
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("search_total", nil)
			collector.RecordDuration("search_duration_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	// assert
	counter := findCounterMetric(t, collect(t, reader), "search_total")
	assert.Equal(t, int64(20), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_InstrumentCreationErrors(t *testing.T) {
	_, meter := newTestMeter()
	collector := oteladapters.NewMetricsCollector(&errorInjectingMeter{Meter: meter})
	ctx := context.Background()

	assert.NotPanics(t, func() {
		collector.RecordDuration("error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounter("error_counter", nil)
		collector.RecordValue("error_gauge", 42.0, nil)
		collector.RecordDurationContext(ctx, "error_histogram", 100*time.Millisecond, nil)
		collector.IncrementCounterContext(ctx, "error_counter", nil)
		collector.RecordValueContext(ctx, "error_gauge", 42.0, nil)
	})
}

func Test_MetricsCollector_AsAttributeSearchMetrics(t *testing.T) {
	// arrange
	reader, meter := newTestMeter()
	source := filterhelper.StaticAttributeSource{
		conditionalfilter.AttributeOperand("DROPDOWN", "Color", "color"),
		conditionalfilter.AttributeOperand("SWATCH", "Pattern", "pattern"),
	}
	search, err := conditionalfilter.NewAttributeSearch(
		source,
		conditionalfilter.WithSearchMetrics(oteladapters.NewMetricsCollector(meter)),
	)
	require.NoError(t, err)

	// act
	_, err = search.Search(context.Background(), conditionalfilter.CreateEmpty(), "c")
	require.NoError(t, err)

	// assert
	resourceMetrics := collect(t, reader)

	counter := findCounterMetric(t, resourceMetrics, "conditionalfilter_attribute_search_total")
	require.Len(t, counter.DataPoints, 1)
	expectedAttrs := attribute.NewSet(attribute.String("outcome", "applied"))
	assert.True(t, counter.DataPoints[0].Attributes.Equals(&expectedAttrs))

	results := findGaugeMetric(t, resourceMetrics, "conditionalfilter_attribute_search_results")
	assert.Equal(t, float64(2), results.DataPoints[0].Value)
}

// errorInjectingMeter wraps a real meter but fails to create instruments with an "error_" prefix.
type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "error_histogram" {
		return nil, errors.New("histogram creation failed")
	}
	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "error_counter" {
		return nil, errors.New("counter creation failed")
	}
	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "error_gauge" {
		return nil, errors.New("gauge creation failed")
	}
	return m.Meter.Float64Gauge(name, options...)
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Histogram[float64] {
	t.Helper()
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				return &h
			}
		}
	}
	t.Fatalf("Histogram metric %s not found", name)
	return nil
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Sum[int64] {
	t.Helper()
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if c, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == name {
				return &c
			}
		}
	}
	t.Fatalf("Counter metric %s not found", name)
	return nil
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) *metricdata.Gauge[float64] {
	t.Helper()
	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if g, ok := m.Data.(metricdata.Gauge[float64]); ok && m.Name == name {
				return &g
			}
		}
	}
	t.Fatalf("Gauge metric %s not found", name)
	return nil
}
