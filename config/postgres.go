package config

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver for database/sql and sqlx

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine"
)

// ErrMissingDSN is returned when a database connection is requested without a DSN.
var ErrMissingDSN = errors.New("database dsn is missing")

// ErrUnknownDriver is returned for a driver other than pgx, sql or sqlx.
var ErrUnknownDriver = errors.New("unknown database driver")

const postgresDriverName = "postgres"

// PGXPoolConfig parses dsn and applies the pool settings of db.
func PGXPoolConfig(db DatabaseConfig, dsn string) (*pgxpool.Config, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}

	poolConfig.MaxConns = db.MaxConns
	poolConfig.MinConns = db.MinConns
	poolConfig.MaxConnLifetime = db.MaxConnLifetime
	poolConfig.MaxConnIdleTime = db.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = db.HealthCheckPeriod
	poolConfig.ConnConfig.ConnectTimeout = db.ConnectTimeout

	return poolConfig, nil
}

// NewPGXPool opens a pgx pool for dsn.
func NewPGXPool(ctx context.Context, db DatabaseConfig, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := PGXPoolConfig(db, dsn)
	if err != nil {
		return nil, err
	}

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

// NewSQLDB opens a database/sql connection pool through lib/pq and pings it.
func NewSQLDB(ctx context.Context, db DatabaseConfig) (*sql.DB, error) {
	if db.DSN == "" {
		return nil, ErrMissingDSN
	}

	sqlDB, err := sql.Open(postgresDriverName, db.DSN)
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(int(db.MaxConns))
	sqlDB.SetMaxIdleConns(int(db.MinConns))
	sqlDB.SetConnMaxLifetime(db.MaxConnLifetime)
	sqlDB.SetConnMaxIdleTime(db.MaxConnIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, db.ConnectTimeout)
	defer cancel()

	if err = sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return sqlDB, nil
}

// NewSQLX opens an sqlx connection pool through lib/pq and pings it.
func NewSQLX(ctx context.Context, db DatabaseConfig) (*sqlx.DB, error) {
	if db.DSN == "" {
		return nil, ErrMissingDSN
	}

	connectCtx, cancel := context.WithTimeout(ctx, db.ConnectTimeout)
	defer cancel()

	sqlxDB, err := sqlx.ConnectContext(connectCtx, postgresDriverName, db.DSN)
	if err != nil {
		return nil, err
	}

	sqlxDB.SetMaxOpenConns(int(db.MaxConns))
	sqlxDB.SetMaxIdleConns(int(db.MinConns))
	sqlxDB.SetConnMaxLifetime(db.MaxConnLifetime)
	sqlxDB.SetConnMaxIdleTime(db.MaxConnIdleTime)

	return sqlxDB, nil
}

// AttributeStoreOptions translates the attributes section into AttributeStore options.
func AttributeStoreOptions(attributes AttributesConfig) []postgresengine.Option {
	return []postgresengine.Option{
		postgresengine.WithTableName(attributes.Table),
		postgresengine.WithSearchLimit(attributes.SearchLimit),
	}
}

// OpenAttributeStore connects with the configured driver and builds an AttributeStore on top.
// The returned close function releases the connection pool.
func OpenAttributeStore(
	ctx context.Context,
	cfg Config,
	options ...postgresengine.Option,
) (*postgresengine.AttributeStore, func(), error) {

	options = append(AttributeStoreOptions(cfg.Attributes), options...)

	switch cfg.Database.Driver {
	case DriverPGX:
		return openPGXAttributeStore(ctx, cfg.Database, options)

	case DriverSQL:
		sqlDB, err := NewSQLDB(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewAttributeStoreFromSQLDB(sqlDB, options...)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}

		return store, func() { _ = sqlDB.Close() }, nil

	case DriverSQLX:
		sqlxDB, err := NewSQLX(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewAttributeStoreFromSQLX(sqlxDB, options...)
		if err != nil {
			_ = sqlxDB.Close()
			return nil, nil, err
		}

		return store, func() { _ = sqlxDB.Close() }, nil

	default:
		return nil, nil, errors.Join(ErrUnknownDriver, errors.New(cfg.Database.Driver))
	}
}

func openPGXAttributeStore(
	ctx context.Context,
	db DatabaseConfig,
	options []postgresengine.Option,
) (*postgresengine.AttributeStore, func(), error) {

	pool, err := NewPGXPool(ctx, db, db.DSN)
	if err != nil {
		return nil, nil, err
	}

	if db.ReplicaDSN == "" {
		store, storeErr := postgresengine.NewAttributeStoreFromPGXPool(pool, options...)
		if storeErr != nil {
			pool.Close()
			return nil, nil, storeErr
		}

		return store, pool.Close, nil
	}

	replica, err := NewPGXPool(ctx, db, db.ReplicaDSN)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	closeAll := func() {
		replica.Close()
		pool.Close()
	}

	store, err := postgresengine.NewAttributeStoreFromPGXPoolWithReplica(pool, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}

// NewQueryBuilder builds a QueryBuilder from the query section.
func NewQueryBuilder(query QueryConfig) (*postgresengine.QueryBuilder, error) {
	options := []postgresengine.QueryOption{
		postgresengine.WithProductTable(query.ProductTable),
		postgresengine.WithSelectColumns(query.SelectColumns...),
		postgresengine.WithAttributesColumn(query.AttributesColumn),
	}

	for kind, column := range query.Columns {
		options = append(options, postgresengine.WithColumn(kind, column))
	}

	for kind, column := range query.ConstraintColumns {
		options = append(options, postgresengine.WithConstraintColumn(kind, column))
	}

	return postgresengine.NewQueryBuilder(options...)
}
