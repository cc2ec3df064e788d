package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine/internal/adapters"
)

const (
	defaultAttributeTableName    = "attributes"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgSearchCompleted        = "attribute search completed"
	logMsgSQLExecuted            = "executed sql for: search"
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrSearchText            = "search_text"
	logAttrResultCount           = "result_count"
	logAttrDurationMS            = "duration_ms"
	colSlug                      = "slug"
	colName                      = "name"
	colInputType                 = "input_type"
	colEntityType                = "entity_type"
	dialectPostgres              = "postgres"
)

// AttributeStore reads attribute descriptors from a Postgres table with the columns
// slug, name, input_type and entity_type (nullable).
// It implements conditionalfilter.AttributeSource.
type AttributeStore struct {
	db               adapters.DBAdapter
	tableName        string
	searchLimit      uint
	logger           conditionalfilter.Logger
	metricsCollector conditionalfilter.MetricsCollector
	tracingCollector conditionalfilter.TracingCollector
	contextualLogger conditionalfilter.ContextualLogger
}

type attributeRow struct {
	slug       string
	name       string
	inputType  string
	entityType *string
}

// NewAttributeStoreFromPGXPool creates a new AttributeStore using a pgx Pool with optional configuration.
func NewAttributeStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*AttributeStore, error) {
	if db == nil {
		return nil, conditionalfilter.ErrNilDatabaseConnection
	}

	return newAttributeStore(adapters.NewPGXAdapter(db), options...)
}

// NewAttributeStoreFromPGXPoolWithReplica creates a new AttributeStore that reads from the replica pool.
func NewAttributeStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*AttributeStore, error) {
	if db == nil || replica == nil {
		return nil, conditionalfilter.ErrNilDatabaseConnection
	}

	return newAttributeStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewAttributeStoreFromSQLDB creates a new AttributeStore using a sql.DB with optional configuration.
func NewAttributeStoreFromSQLDB(db *sql.DB, options ...Option) (*AttributeStore, error) {
	if db == nil {
		return nil, conditionalfilter.ErrNilDatabaseConnection
	}

	return newAttributeStore(adapters.NewSQLAdapter(db), options...)
}

// NewAttributeStoreFromSQLX creates a new AttributeStore using a sqlx.DB with optional configuration.
func NewAttributeStoreFromSQLX(db *sqlx.DB, options ...Option) (*AttributeStore, error) {
	if db == nil {
		return nil, conditionalfilter.ErrNilDatabaseConnection
	}

	return newAttributeStore(adapters.NewSQLXAdapter(db), options...)
}

func newAttributeStore(db adapters.DBAdapter, options ...Option) (*AttributeStore, error) {
	as := &AttributeStore{
		db:          db,
		tableName:   defaultAttributeTableName,
		searchLimit: defaultSearchLimit,
	}

	for _, option := range options {
		if err := option(as); err != nil {
			return nil, err
		}
	}

	return as, nil
}

// SearchAttributes returns the attributes whose name or slug contains query, ordered by name.
// An empty query lists the first attributes up to the search limit.
func (as *AttributeStore) SearchAttributes(ctx context.Context, query string) ([]conditionalfilter.ExpressionValue, error) {
	observer, ctx := as.startSearchObservation(ctx)

	sqlQuery, args, buildQueryErr := as.buildSearchQuery(query)
	if buildQueryErr != nil {
		as.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr)
		observer.finishError(errorTypeBuildQuery, 0)

		return nil, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := as.db.Query(ctx, sqlQuery, args...)
	as.logQueryWithDuration(ctx, sqlQuery, time.Since(start))

	if queryErr != nil {
		as.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		observer.finishError(errorTypeDatabase, time.Since(start))

		return nil, errors.Join(conditionalfilter.ErrQueryingAttributesFailed, queryErr)
	}
	defer as.closeRows(ctx, rows)

	attributes, scanErr := as.processQueryResults(ctx, rows)
	duration := time.Since(start)

	if scanErr != nil {
		observer.finishError(errorTypeRowScan, duration)
		return nil, scanErr
	}

	observer.finishSuccess(len(attributes), duration)
	as.logOperation(
		ctx,
		logMsgSearchCompleted,
		logAttrSearchText, query,
		logAttrResultCount, len(attributes),
		logAttrDurationMS, toMilliseconds(duration))

	return attributes, nil
}

// closeRows safely closes database rows and logs any errors.
func (as *AttributeStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		as.logWarn(ctx, logMsgCloseRowsFailed, closeErr)
	}
}

// processQueryResults converts database rows into attribute operands.
func (as *AttributeStore) processQueryResults(ctx context.Context, rows adapters.DBRows) ([]conditionalfilter.ExpressionValue, error) {
	attributes := make([]conditionalfilter.ExpressionValue, 0)

	for rows.Next() {
		var row attributeRow

		if rowScanErr := rows.Scan(&row.slug, &row.name, &row.inputType, &row.entityType); rowScanErr != nil {
			as.logError(ctx, logMsgScanRowFailed, rowScanErr)
			return nil, errors.Join(conditionalfilter.ErrScanningDBRowFailed, rowScanErr)
		}

		attribute := conditionalfilter.AttributeOperand(row.inputType, row.name, row.slug)
		if row.entityType != nil {
			attribute = attribute.WithEntityType(*row.entityType)
		}

		attributes = append(attributes, attribute)
	}

	if iterErr := rows.Err(); iterErr != nil {
		as.logError(ctx, logMsgDBQueryFailed, iterErr)
		return nil, errors.Join(conditionalfilter.ErrQueryingAttributesFailed, iterErr)
	}

	return attributes, nil
}

func (as *AttributeStore) buildSearchQuery(query string) (string, []any, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(as.tableName).
		Prepared(true).
		Select(colSlug, colName, colInputType, colEntityType).
		Order(goqu.I(colName).Asc(), goqu.I(colSlug).Asc()).
		Limit(as.searchLimit)

	if trimmed := strings.TrimSpace(query); trimmed != "" {
		pattern := "%" + escapeLikePattern(trimmed) + "%"
		selectStmt = selectStmt.Where(
			goqu.Or(
				goqu.C(colName).ILike(pattern),
				goqu.C(colSlug).ILike(pattern),
			),
		)
	}

	sqlQuery, args, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", nil, errors.Join(conditionalfilter.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLikePattern makes query match literally inside an ILIKE pattern.
func escapeLikePattern(query string) string {
	return likeEscaper.Replace(query)
}
