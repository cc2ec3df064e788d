package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
)

const (
	metricSearchDuration = "conditionalfilter_attribute_store_search_duration_seconds"
	metricSearchResults  = "conditionalfilter_attribute_store_search_results"
	metricDatabaseErrors = "conditionalfilter_attribute_store_errors_total"
	spanNameSearch       = "attribute_store.search"
	spanAttrOperation    = "operation"
	spanAttrTable        = "db.table"
	spanAttrResultCount  = "result_count"
	spanAttrErrorType    = "error_type"
	spanAttrDurationMS   = "duration_ms"
	labelStatus          = "status"
	operationSearch      = "search"
	statusSuccess        = "success"
	statusError          = "error"
	errorTypeBuildQuery  = "build_query"
	errorTypeDatabase    = "database_query"
	errorTypeRowScan     = "row_scan"
)

// searchObserver bundles tracing, metrics and contextual logging of one search.
type searchObserver struct {
	as   *AttributeStore
	ctx  context.Context
	span conditionalfilter.SpanContext
}

func (as *AttributeStore) startSearchObservation(ctx context.Context) (*searchObserver, context.Context) {
	if as.tracingCollector != nil {
		spanCtx, span := as.tracingCollector.StartSpan(ctx, spanNameSearch, map[string]string{
			spanAttrOperation: operationSearch,
			spanAttrTable:     as.tableName,
		})

		return &searchObserver{as: as, ctx: spanCtx, span: span}, spanCtx
	}

	return &searchObserver{as: as, ctx: ctx}, ctx
}

func (so *searchObserver) finishSuccess(resultCount int, duration time.Duration) {
	so.as.recordDuration(so.ctx, duration, statusSuccess)
	so.as.recordValue(so.ctx, metricSearchResults, float64(resultCount), statusSuccess)

	if so.span == nil {
		return
	}

	so.span.SetStatus(statusSuccess)
	so.span.AddAttribute(spanAttrDurationMS, fmt.Sprintf("%.2f", toMilliseconds(duration)))
	so.as.tracingCollector.FinishSpan(so.span, statusSuccess, map[string]string{
		spanAttrResultCount: fmt.Sprintf("%d", resultCount),
	})
}

func (so *searchObserver) finishError(errorType string, duration time.Duration) {
	so.as.recordDuration(so.ctx, duration, statusError)
	so.as.recordError(so.ctx, errorType)

	if so.span == nil {
		return
	}

	so.span.SetStatus(statusError)
	so.span.AddAttribute(spanAttrErrorType, errorType)
	so.as.tracingCollector.FinishSpan(so.span, statusError, map[string]string{spanAttrErrorType: errorType})
}

func (as *AttributeStore) recordDuration(ctx context.Context, duration time.Duration, status string) {
	if as.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operationSearch, labelStatus: status}

	if contextual, ok := as.metricsCollector.(conditionalfilter.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metricSearchDuration, duration, labels)
		return
	}

	as.metricsCollector.RecordDuration(metricSearchDuration, duration, labels)
}

func (as *AttributeStore) recordValue(ctx context.Context, metric string, value float64, status string) {
	if as.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operationSearch, labelStatus: status}

	if contextual, ok := as.metricsCollector.(conditionalfilter.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metric, value, labels)
		return
	}

	as.metricsCollector.RecordValue(metric, value, labels)
}

func (as *AttributeStore) recordError(ctx context.Context, errorType string) {
	if as.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operationSearch,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	}

	if contextual, ok := as.metricsCollector.(conditionalfilter.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	as.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (as *AttributeStore) logQueryWithDuration(ctx context.Context, sqlQuery string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if as.logger != nil {
		as.logger.Debug(logMsgSQLExecuted, args...)
	}

	if as.contextualLogger != nil {
		as.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, args...)
	}
}

// logOperation logs operational information at info level.
func (as *AttributeStore) logOperation(ctx context.Context, msg string, args ...any) {
	if as.logger != nil {
		as.logger.Info(msg, args...)
	}

	if as.contextualLogger != nil {
		as.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logWarn logs non-critical failures.
func (as *AttributeStore) logWarn(ctx context.Context, msg string, err error) {
	if as.logger != nil {
		as.logger.Warn(msg, logAttrError, err.Error())
	}

	if as.contextualLogger != nil {
		as.contextualLogger.WarnContext(ctx, msg, logAttrError, err.Error())
	}
}

// logError logs error information at the error level.
func (as *AttributeStore) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if as.logger != nil {
		as.logger.Error(msg, allArgs...)
	}

	if as.contextualLogger != nil {
		as.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
