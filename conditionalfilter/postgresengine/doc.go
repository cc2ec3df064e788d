// Package postgresengine connects the conditional filter model to PostgreSQL.
//
// AttributeStore implements conditionalfilter.AttributeSource on top of an attribute table and
// supports multiple database adapters (pgx, sql.DB, sqlx). QueryBuilder renders completed filter
// rows as a SELECT statement, mapping static operand kinds to columns and dynamic attributes to a
// JSONB column.
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewAttributeStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("product_attributes"),
//		postgresengine.WithLogger(logger),
//	)
//
//	search, _ := conditionalfilter.NewAttributeSearch(store)
//	applied, err := search.Search(ctx, element, "col")
//
//	builder, _ := postgresengine.NewQueryBuilder(postgresengine.WithProductTable("products"))
//	sql, err := builder.Build(rows.Completed())
package postgresengine
