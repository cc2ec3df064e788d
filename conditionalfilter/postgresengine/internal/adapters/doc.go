// Package adapters provide database adapter implementations for the PostgreSQL attribute store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, so the attribute store works with any supported connection type.
package adapters
