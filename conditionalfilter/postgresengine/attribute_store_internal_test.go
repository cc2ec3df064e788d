package postgresengine

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine/internal/adapters"
	"github.com/AntonStoeckl/conditional-filter-go/testutil/filterhelper"
)

type fakeAdapter struct {
	rows      [][]any
	queryErr  error
	scanErr   error
	lastQuery string
	lastArgs  []any
}

func (f *fakeAdapter) Query(_ context.Context, query string, args ...any) (adapters.DBRows, error) {
	f.lastQuery, f.lastArgs = query, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{rows: f.rows, scanErr: f.scanErr, pos: -1}, nil
}

type fakeRows struct {
	rows    [][]any
	scanErr error
	pos     int
	closed  bool
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}

	for i, value := range r.rows[r.pos] {
		switch d := dest[i].(type) {
		case *string:
			*d = value.(string)
		case **string:
			if value == nil {
				*d = nil
				continue
			}

			s := value.(string)
			*d = &s
		}
	}

	return nil
}

func (r *fakeRows) Err() error   { return nil }
func (r *fakeRows) Close() error { r.closed = true; return nil }

type spanSpy struct {
	status string
	attrs  map[string]string
}

func (s *spanSpy) SetStatus(status string)        { s.status = status }
func (s *spanSpy) AddAttribute(key, value string) { s.attrs[key] = value }

type spanNameKey struct{}

type tracingSpy struct {
	started  []string
	finished []string
}

func (t *tracingSpy) StartSpan(ctx context.Context, name string, _ map[string]string) (context.Context, conditionalfilter.SpanContext) {
	t.started = append(t.started, name)
	return context.WithValue(ctx, spanNameKey{}, name), &spanSpy{attrs: map[string]string{}}
}

func (t *tracingSpy) FinishSpan(_ conditionalfilter.SpanContext, status string, _ map[string]string) {
	t.finished = append(t.finished, status)
}

func Test_AttributeStore_SearchAttributes(t *testing.T) {
	// arrange
	db := &fakeAdapter{rows: [][]any{
		{"color", "Color", "DROPDOWN", nil},
		{"related", "Related product", "REFERENCE", "PRODUCT"},
	}}
	logs := filterhelper.NewTestLogHandler(false)
	metrics := filterhelper.NewMetricsCollectorSpy()
	tracing := &tracingSpy{}

	store, err := newAttributeStore(
		db,
		WithTableName("product_attributes"),
		WithSearchLimit(10),
		WithLogger(slog.New(logs)),
		WithMetrics(metrics),
		WithTracing(tracing),
	)
	require.NoError(t, err)

	// act
	attributes, err := store.SearchAttributes(context.Background(), " co_l ")

	// assert
	require.NoError(t, err)
	require.Len(t, attributes, 2)
	assert.Equal(t, conditionalfilter.AttributeOperand("DROPDOWN", "Color", "color"), attributes[0])
	assert.Equal(t, conditionalfilter.OperandAttribute, attributes[1].Origin)
	require.NotNil(t, attributes[1].EntityType)
	assert.Equal(t, "PRODUCT", *attributes[1].EntityType)

	assert.Contains(t, db.lastQuery, `FROM "product_attributes"`)
	assert.Contains(t, db.lastQuery, `"name" ILIKE $1`)
	assert.Contains(t, db.lastQuery, `ORDER BY "name" ASC, "slug" ASC`)
	assert.Contains(t, db.lastArgs, `%co\_l%`)

	assert.True(t, logs.HasLog(slog.LevelInfo, logMsgSearchCompleted))
	assert.True(t, logs.HasLog(slog.LevelDebug, logMsgSQLExecuted))
	assert.Equal(t, []string{spanNameSearch}, tracing.started)
	assert.Equal(t, []string{statusSuccess}, tracing.finished)

	values := metrics.ValueRecords()
	require.Len(t, values, 1)
	assert.Equal(t, metricSearchResults, values[0].Metric)
	assert.Equal(t, float64(2), values[0].Value)
}

func Test_AttributeStore_SearchAttributes_EmptyQueryHasNoWhereClause(t *testing.T) {
	db := &fakeAdapter{}
	store, err := newAttributeStore(db)
	require.NoError(t, err)

	attributes, err := store.SearchAttributes(context.Background(), "  ")

	require.NoError(t, err)
	assert.NotNil(t, attributes)
	assert.Empty(t, attributes)
	assert.Contains(t, db.lastQuery, `FROM "attributes"`)
	assert.NotContains(t, db.lastQuery, "WHERE")
}

func Test_AttributeStore_SearchAttributes_Errors(t *testing.T) {
	tests := []struct {
		name      string
		db        *fakeAdapter
		wantErr   error
		errorType string
		logMsg    string
	}{
		{
			name:      "query_failed",
			db:        &fakeAdapter{queryErr: errors.New("connection reset")},
			wantErr:   conditionalfilter.ErrQueryingAttributesFailed,
			errorType: errorTypeDatabase,
			logMsg:    logMsgDBQueryFailed,
		},
		{
			name:      "scan_failed",
			db:        &fakeAdapter{rows: [][]any{{"color", "Color", "DROPDOWN", nil}}, scanErr: errors.New("bad column")},
			wantErr:   conditionalfilter.ErrScanningDBRowFailed,
			errorType: errorTypeRowScan,
			logMsg:    logMsgScanRowFailed,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			logs := filterhelper.NewTestLogHandler(false)
			metrics := filterhelper.NewMetricsCollectorSpy()
			store, err := newAttributeStore(tc.db, WithLogger(slog.New(logs)), WithMetrics(metrics))
			require.NoError(t, err)

			// act
			attributes, err := store.SearchAttributes(context.Background(), "color")

			// assert
			assert.Nil(t, attributes)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, 1, metrics.CountersWithLabel(metricDatabaseErrors, spanAttrErrorType, tc.errorType))
			assert.True(t, logs.HasLog(slog.LevelError, tc.logMsg))
		})
	}
}

func Test_AttributeStore_Constructors(t *testing.T) {
	_, err := NewAttributeStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, conditionalfilter.ErrNilDatabaseConnection)

	_, err = NewAttributeStoreFromPGXPoolWithReplica(nil, nil)
	assert.ErrorIs(t, err, conditionalfilter.ErrNilDatabaseConnection)

	_, err = NewAttributeStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, conditionalfilter.ErrNilDatabaseConnection)

	_, err = NewAttributeStoreFromSQLX(nil)
	assert.ErrorIs(t, err, conditionalfilter.ErrNilDatabaseConnection)

	_, err = newAttributeStore(&fakeAdapter{}, WithTableName(""))
	assert.ErrorIs(t, err, conditionalfilter.ErrEmptyTableName)

	_, err = newAttributeStore(&fakeAdapter{}, WithSearchLimit(0))
	assert.ErrorIs(t, err, ErrInvalidSearchLimit)
}

func Test_AttributeStore_ImplementsAttributeSource(t *testing.T) {
	var _ conditionalfilter.AttributeSource = (*AttributeStore)(nil)
}

func Test_AttributeStore_SearchAttributes_ContextualLoggingCarriesSpanContext(t *testing.T) {
	// arrange
	db := &fakeAdapter{rows: [][]any{{"color", "Color", "DROPDOWN", nil}}}
	spy := filterhelper.NewContextualLoggerSpy()

	store, err := newAttributeStore(db, WithContextualLogger(spy), WithTracing(&tracingSpy{}))
	require.NoError(t, err)

	// act
	_, err = store.SearchAttributes(context.Background(), "col")

	// assert
	require.NoError(t, err)
	assert.True(t, spy.HasRecord("debug", logMsgSQLExecuted))
	assert.True(t, spy.HasRecord("info", logMsgSearchCompleted))

	for _, record := range spy.Records() {
		assert.Equal(t, spanNameSearch, record.Context.Value(spanNameKey{}), record.Message)
	}
}
