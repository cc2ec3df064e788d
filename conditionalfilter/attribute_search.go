package conditionalfilter

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

const (
	logMsgSearchStarted   = "attribute search started"
	logMsgSearchApplied   = "attribute search applied"
	logMsgSearchDiscarded = "stale attribute search response discarded"
	logMsgSearchFailed    = "attribute search failed"
	logAttrError          = "error"
	logAttrQuery          = "query"
	logAttrResultCount    = "result_count"
	logAttrDurationMS     = "duration_ms"
	logAttrTicket         = "ticket"
	metricSearchDuration  = "conditionalfilter_attribute_search_duration_seconds"
	metricSearchResults   = "conditionalfilter_attribute_search_results"
	metricSearchOutcomes  = "conditionalfilter_attribute_search_total"
	labelOutcome          = "outcome"
	outcomeApplied        = "applied"
	outcomeStale          = "stale"
	outcomeFailed         = "failed"
)

// AttributeSource finds attribute operands by free-text query.
type AttributeSource interface {
	SearchAttributes(ctx context.Context, query string) ([]ExpressionValue, error)
}

// AttributeSearch feeds attribute search results into FilterElements and drops responses that were superseded:
// a response is applied only if no newer search for the same element was started
// and the element's left operand did not change while the fetch was in flight.
type AttributeSearch struct {
	source  AttributeSource
	logger  Logger
	metrics MetricsCollector
	mu      sync.Mutex
}

// SearchOption defines a functional option for configuring AttributeSearch.
type SearchOption func(*AttributeSearch) error

// WithSearchLogger sets the logger for the AttributeSearch.
//
// Debug level: started searches and discarded stale responses
// Info level: applied results with counts and durations
// Error level: failed fetches.
func WithSearchLogger(logger Logger) SearchOption {
	return func(s *AttributeSearch) error {
		s.logger = logger
		return nil
	}
}

// WithSearchMetrics sets the metrics collector for the AttributeSearch.
func WithSearchMetrics(collector MetricsCollector) SearchOption {
	return func(s *AttributeSearch) error {
		s.metrics = collector
		return nil
	}
}

// NewAttributeSearch creates an AttributeSearch reading from source.
func NewAttributeSearch(source AttributeSource, options ...SearchOption) (*AttributeSearch, error) {
	if source == nil {
		return nil, ErrNilAttributeSource
	}

	s := &AttributeSearch{source: source}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type searchTicket struct {
	seq        uint64
	generation uint64
}

// Search runs query against the source and applies the result to element unless it became stale.
// It reports whether the result was applied. A cancelled context or a newer search counts as superseded,
// not as failure. An exceeded deadline is a failure.
func (s *AttributeSearch) Search(ctx context.Context, element *FilterElement, query string) (bool, error) {
	ticket := s.begin(element)
	s.logDebug(logMsgSearchStarted, logAttrQuery, query, logAttrTicket, ticket.seq)

	start := time.Now()
	attributes, fetchErr := s.source.SearchAttributes(ctx, query)
	duration := time.Since(start)

	s.mu.Lock()
	defer s.mu.Unlock()

	latest := element.searchSeq == ticket.seq
	current := latest && element.generation == ticket.generation

	if latest {
		element.UpdateAttributeLoadingState(false)
	}

	if fetchErr != nil && (!latest || cancelled(ctx, fetchErr)) {
		s.recordOutcome(ctx, outcomeStale, duration)
		s.logDebug(logMsgSearchDiscarded, logAttrQuery, query, logAttrTicket, ticket.seq, logAttrError, fetchErr.Error())

		return false, nil
	}

	if fetchErr != nil {
		s.recordOutcome(ctx, outcomeFailed, duration)
		s.logError(logMsgSearchFailed, fetchErr, logAttrQuery, query)

		return false, errors.Join(ErrAttributeSearchFailed, fetchErr)
	}

	if !current {
		s.recordOutcome(ctx, outcomeStale, duration)
		s.logDebug(logMsgSearchDiscarded, logAttrQuery, query, logAttrTicket, ticket.seq)

		return false, nil
	}

	element.UpdateAvailableAttributesList(attributes)

	s.recordOutcome(ctx, outcomeApplied, duration)
	s.recordResultCount(ctx, len(attributes))
	s.logInfo(
		logMsgSearchApplied,
		logAttrQuery, query,
		logAttrResultCount, len(attributes),
		logAttrDurationMS, toMilliseconds(duration))

	return true, nil
}

// Mutate runs fn on element while no search result can be applied concurrently.
// Owners use it to change the element while searches are in flight.
func (s *AttributeSearch) Mutate(element *FilterElement, fn func(*FilterElement)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(element)
}

func (s *AttributeSearch) begin(element *FilterElement) searchTicket {
	s.mu.Lock()
	defer s.mu.Unlock()

	element.searchSeq++
	element.UpdateAttributeLoadingState(true)

	return searchTicket{seq: element.searchSeq, generation: element.generation}
}

func (s *AttributeSearch) recordOutcome(ctx context.Context, outcome string, duration time.Duration) {
	if s.metrics == nil {
		return
	}

	labels := map[string]string{labelOutcome: outcome}

	if contextual, ok := s.metrics.(ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metricSearchOutcomes, labels)
		contextual.RecordDurationContext(ctx, metricSearchDuration, duration, labels)

		return
	}

	s.metrics.IncrementCounter(metricSearchOutcomes, labels)
	s.metrics.RecordDuration(metricSearchDuration, duration, labels)
}

func (s *AttributeSearch) recordResultCount(ctx context.Context, count int) {
	if s.metrics == nil {
		return
	}

	labels := map[string]string{labelOutcome: outcomeApplied}

	if contextual, ok := s.metrics.(ContextualMetricsCollector); ok {
		contextual.RecordValueContext(ctx, metricSearchResults, float64(count), labels)
		return
	}

	s.metrics.RecordValue(metricSearchResults, float64(count), labels)
}

func (s *AttributeSearch) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *AttributeSearch) logInfo(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *AttributeSearch) logError(msg string, err error, args ...any) {
	if s.logger != nil {
		allArgs := []any{logAttrError, err.Error()}
		allArgs = append(allArgs, args...)
		s.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func cancelled(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.Canceled) && errors.Is(err, context.Canceled)
}
