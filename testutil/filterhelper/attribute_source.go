package filterhelper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
)

// GatedAttributeSource is an AttributeSource whose responses are held back until the test releases them,
// which makes it possible to deliver search responses out of order.
type GatedAttributeSource struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	results map[string][]conditionalfilter.ExpressionValue
	errs    map[string]error
	started chan string
}

// NewGatedAttributeSource creates a GatedAttributeSource.
func NewGatedAttributeSource() *GatedAttributeSource {
	return &GatedAttributeSource{
		gates:   make(map[string]chan struct{}),
		results: make(map[string][]conditionalfilter.ExpressionValue),
		errs:    make(map[string]error),
		started: make(chan string, 16),
	}
}

// Respond sets the result returned for query once released.
func (s *GatedAttributeSource) Respond(query string, attributes ...conditionalfilter.ExpressionValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results[query] = attributes
}

// Fail sets the error returned for query once released.
func (s *GatedAttributeSource) Fail(query string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.errs[query] = err
}

// Release lets the pending search for query return.
func (s *GatedAttributeSource) Release(query string) {
	close(s.gate(query))
}

// Started yields the queries of searches that reached the source.
func (s *GatedAttributeSource) Started() <-chan string {
	return s.started
}

// SearchAttributes implements conditionalfilter.AttributeSource.
func (s *GatedAttributeSource) SearchAttributes(ctx context.Context, query string) ([]conditionalfilter.ExpressionValue, error) {
	s.started <- query

	select {
	case <-s.gate(query):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errs[query]; err != nil {
		return nil, err
	}

	return s.results[query], nil
}

func (s *GatedAttributeSource) gate(query string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	gate, ok := s.gates[query]
	if !ok {
		gate = make(chan struct{})
		s.gates[query] = gate
	}

	return gate
}

// StaticAttributeSource returns the same attributes for every query.
type StaticAttributeSource []conditionalfilter.ExpressionValue

// SearchAttributes implements conditionalfilter.AttributeSource.
func (s StaticAttributeSource) SearchAttributes(_ context.Context, _ string) ([]conditionalfilter.ExpressionValue, error) {
	return s, nil
}
