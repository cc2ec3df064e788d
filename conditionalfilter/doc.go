// Package conditionalfilter models the rows of a conditional filter as used by an e-commerce admin dashboard.
//
// A row (FilterElement) combines:
//   - a left operand: a static field like "category" or a dynamic attribute like "color"
//   - a Condition: the chosen operator ("is", "in", "lower", ...) and the value entered for it
//   - an optional Constraint: a qualifier some operand kinds need, e.g. the channel for "channel" rows
//
// The operand kind -> operator and slug -> operand tables live in an immutable Catalog,
// DefaultCatalog carries the built-in content and LoadCatalogYAML builds custom ones.
//
// All model operations are total: unknown slugs produce empty rows, unknown kinds produce empty operator lists,
// and an operator that is not offered is rejected without touching the row.
//
// Common usage pattern:
//
//	rows := conditionalfilter.NewFilterRows(nil)
//	row, _ := rows.AddStatic("category")
//	row.Element.Condition.SelectOperatorByLabel("in")
//	row.Element.Condition.SetValueItems(conditionalfilter.ItemOption{Label: "Shoes", Value: "shoes"})
//
//	search, _ := conditionalfilter.NewAttributeSearch(attributeStore)
//	applied, err := search.Search(ctx, emptyRow.Element, "col")
//
//	payload, err := conditionalfilter.EncodeSubmission(rows.Completed())
package conditionalfilter
