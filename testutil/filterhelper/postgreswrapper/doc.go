// Package postgreswrapper runs attribute store tests against a real PostgreSQL database
// through any of the supported connection types.
//
// The connection type is chosen by the ADAPTER_TYPE environment variable (pgx.pool, sql.db or sqlx.db),
// the database by FILTER_TEST_DSN. Tests are skipped when the database cannot be reached.
package postgreswrapper
