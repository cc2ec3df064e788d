package postgresengine

import (
	"errors"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
)

const defaultSearchLimit = 50

// ErrInvalidSearchLimit is returned by WithSearchLimit for a zero limit.
var ErrInvalidSearchLimit = errors.New("search limit must be greater than zero")

// Option defines a functional option for configuring AttributeStore.
type Option func(*AttributeStore) error

// WithTableName sets the table the attribute descriptors are read from.
func WithTableName(tableName string) Option {
	return func(as *AttributeStore) error {
		if tableName == "" {
			return conditionalfilter.ErrEmptyTableName
		}

		as.tableName = tableName

		return nil
	}
}

// WithSearchLimit caps the number of attributes returned per search.
func WithSearchLimit(limit uint) Option {
	return func(as *AttributeStore) error {
		if limit == 0 {
			return ErrInvalidSearchLimit
		}

		as.searchLimit = limit

		return nil
	}
}

// WithLogger sets the logger for the AttributeStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Result counts and durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger conditionalfilter.Logger) Option {
	return func(as *AttributeStore) error {
		as.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the AttributeStore.
// The collector receives search durations, result counts and database errors.
func WithMetrics(collector conditionalfilter.MetricsCollector) Option {
	return func(as *AttributeStore) error {
		as.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the AttributeStore.
// A span is started for every search and finished with its result count or error type.
func WithTracing(collector conditionalfilter.TracingCollector) Option {
	return func(as *AttributeStore) error {
		as.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the AttributeStore.
// Log records carry the trace and span ids of the search when tracing is enabled.
func WithContextualLogger(logger conditionalfilter.ContextualLogger) Option {
	return func(as *AttributeStore) error {
		as.contextualLogger = logger
		return nil
	}
}
