package oteladapters_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/oteladapters"
	"github.com/AntonStoeckl/conditional-filter-go/testutil/filterhelper"
)

// recordingLogger keeps emitted records, everything else is a no-op.
type recordingLogger struct {
	noop.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record.Clone())
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")
	logger.Info("plain message", "query", "col", "result_count", 2)

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG","msg":"debug message"`)
	assert.Contains(t, output, `"level":"INFO","msg":"info message"`)
	assert.Contains(t, output, `"level":"WARN","msg":"warn message"`)
	assert.Contains(t, output, `"level":"ERROR","msg":"error message"`)
	assert.Contains(t, output, `"query":"col","result_count":2`)
}

func Test_SlogBridgeLogger_AsAttributeSearchLogger(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(slog.NewJSONHandler(&buf, nil))
	source := filterhelper.StaticAttributeSource{conditionalfilter.AttributeOperand("DROPDOWN", "Color", "color")}

	search, err := conditionalfilter.NewAttributeSearch(source, conditionalfilter.WithSearchLogger(logger))
	require.NoError(t, err)

	// act
	applied, err := search.Search(context.Background(), conditionalfilter.CreateEmpty(), "co")

	// assert
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Contains(t, buf.String(), `"msg":"attribute search applied"`)
	assert.Contains(t, buf.String(), `"result_count":1`)
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("conditionalfilter")

	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "message", "key", "value")
		logger.Debug("message")
	})
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "attribute search failed",
		"query", "col",
		"result_count", 3,
		"duration_ms", 1.5,
		"cached", true,
		"dangling")

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "attribute search failed", record.Body().AsString())

	attrs := attributesOf(record)
	assert.Len(t, attrs, 4)
	assert.Equal(t, "col", attrs["query"].AsString())
	assert.Equal(t, int64(3), attrs["result_count"].AsInt64())
	assert.InDelta(t, 1.5, attrs["duration_ms"].AsFloat64(), 0.0001)
	assert.True(t, attrs["cached"].AsBool())
}

func Test_OTelLogger_AllLevels(t *testing.T) {
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")

	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}
