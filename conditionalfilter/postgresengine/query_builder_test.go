package postgresengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter/postgresengine"
)

func staticRow(t *testing.T, slug, operator string) *conditionalfilter.FilterElement {
	t.Helper()

	element := conditionalfilter.CreateStaticBySlug(slug)
	require.False(t, element.IsEmpty())
	require.True(t, element.Condition.SelectOperatorByLabel(operator))

	return element
}

func attributeRow(t *testing.T, inputType, slug, operator string) *conditionalfilter.FilterElement {
	t.Helper()

	element := conditionalfilter.CreateEmpty()
	element.UpdateLeftOperator(conditionalfilter.AttributeOperand(inputType, slug, slug))
	require.True(t, element.Condition.SelectOperatorByLabel(operator))

	return element
}

func Test_QueryBuilder_Build_Operators(t *testing.T) {
	tests := []struct {
		name     string
		build    func(t *testing.T) *conditionalfilter.FilterElement
		contains []string
	}{
		{
			name: "is",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := staticRow(t, "category", "is")
				e.Condition.SetValueText("shoes")
				return e
			},
			contains: []string{`"category" = 'shoes'`},
		},
		{
			name: "in",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := staticRow(t, "productType", "in")
				e.Condition.SetValueItems(
					conditionalfilter.ItemOption{Label: "Shirt", Value: "shirt"},
					conditionalfilter.ItemOption{Label: "Juice", Value: "juice"},
				)
				return e
			},
			contains: []string{`"product_type" IN ('shirt', 'juice')`},
		},
		{
			name: "lower",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := staticRow(t, "price", "lower")
				e.Condition.SetValueText("10")
				return e
			},
			contains: []string{`"price" < '10'`},
		},
		{
			name: "greater",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := staticRow(t, "price", "greater")
				e.Condition.SetValueText("10")
				return e
			},
			contains: []string{`"price" > '10'`},
		},
		{
			name: "between",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := staticRow(t, "price", "between")
				e.Condition.SetValueRange("10", "20")
				return e
			},
			contains: []string{`"price" BETWEEN '10' AND '20'`},
		},
		{
			name: "select_value_is_boolean",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := staticRow(t, "isAvailable", "is")
				e.Condition.SetValueText("true")
				return e
			},
			contains: []string{`"is_available" IS TRUE`},
		},
		{
			name: "attribute_is_uses_containment",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := attributeRow(t, conditionalfilter.AttributeDropdown, "color", "is")
				e.Condition.SetValueText("red")
				return e
			},
			contains: []string{`"attributes" @> '{"color":"red"}'::jsonb`},
		},
		{
			name: "attribute_in_ors_containments",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := attributeRow(t, conditionalfilter.AttributeMultiselect, "size", "in")
				e.Condition.SetValueItems(
					conditionalfilter.ItemOption{Label: "S", Value: "s"},
					conditionalfilter.ItemOption{Label: "M", Value: "m"},
				)
				return e
			},
			contains: []string{
				`"attributes" @> '{"size":"s"}'::jsonb`,
				" OR ",
				`"attributes" @> '{"size":"m"}'::jsonb`,
			},
		},
		{
			name: "attribute_boolean",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := attributeRow(t, conditionalfilter.AttributeBoolean, "organic", "is")
				e.Condition.SetValueText("false")
				return e
			},
			contains: []string{`"attributes" @> '{"organic":false}'::jsonb`},
		},
		{
			name: "attribute_numeric_range",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := attributeRow(t, conditionalfilter.AttributeNumeric, "weight", "between")
				e.Condition.SetValueRange("1", "5")
				return e
			},
			contains: []string{`("attributes" ->> 'weight')::numeric`, `BETWEEN '1' AND '5'`},
		},
		{
			name: "attribute_date",
			build: func(t *testing.T) *conditionalfilter.FilterElement {
				e := attributeRow(t, conditionalfilter.AttributeDate, "released", "greater")
				e.Condition.SetValueText("2024-01-01")
				return e
			},
			contains: []string{`("attributes" ->> 'released')::date`, `> '2024-01-01'`},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			builder, err := postgresengine.NewQueryBuilder()
			require.NoError(t, err)

			// act
			sql, err := builder.Build([]*conditionalfilter.FilterElement{tc.build(t)})

			// assert
			require.NoError(t, err)
			assert.Contains(t, sql, `SELECT "id", "name" FROM "products" WHERE `)

			for _, fragment := range tc.contains {
				assert.Contains(t, sql, fragment)
			}
		})
	}
}

func Test_QueryBuilder_Build_JoinsRowsWithAnd(t *testing.T) {
	// arrange
	builder, err := postgresengine.NewQueryBuilder(
		postgresengine.WithProductTable("catalog_products"),
		postgresengine.WithSelectColumns("id"),
		postgresengine.WithColumn("category", "category_slug"),
		postgresengine.WithConstraintColumn("channel", "price_channel"),
	)
	require.NoError(t, err)

	category := staticRow(t, "category", "is")
	category.Condition.SetValueText("shoes")

	channel := staticRow(t, "channel", "is")
	channel.Condition.SetValueText("channel-pln")
	channel.UpdateConstraintValue("channel-pln")

	incomplete := conditionalfilter.CreateStaticBySlug("price")

	// act
	sql, err := builder.Build([]*conditionalfilter.FilterElement{category, incomplete, channel})

	// assert
	require.NoError(t, err)
	assert.Contains(t, sql, `SELECT "id" FROM "catalog_products" WHERE `)
	assert.Contains(t, sql, `"category_slug" = 'shoes'`)
	assert.Contains(t, sql, " AND ")
	assert.Contains(t, sql, `"channel" = 'channel-pln'`)
	assert.Contains(t, sql, `"price_channel" = 'channel-pln'`)
	assert.NotContains(t, sql, `"price" `)
}

func Test_QueryBuilder_Build_ConstraintWithoutColumnMapping(t *testing.T) {
	// arrange
	builder, err := postgresengine.NewQueryBuilder()
	require.NoError(t, err)

	channel := staticRow(t, "channel", "is")
	channel.Condition.SetValueText("channel-pln")
	channel.UpdateConstraintValue("channel-pln")

	// act
	sql, err := builder.Build([]*conditionalfilter.FilterElement{channel})

	// assert
	require.NoError(t, err)
	assert.Contains(t, sql, `SELECT "id", "name" FROM "products" WHERE `)
	assert.Contains(t, sql, `"channel" = 'channel-pln'`)
	assert.NotContains(t, sql, " AND ")
	assert.NotContains(t, sql, "_constraint")
}

func Test_QueryBuilder_Build_Errors(t *testing.T) {
	builder, err := postgresengine.NewQueryBuilder()
	require.NoError(t, err)

	t.Run("no_completed_rows", func(t *testing.T) {
		_, err := builder.Build([]*conditionalfilter.FilterElement{conditionalfilter.CreateEmpty()})

		assert.ErrorIs(t, err, conditionalfilter.ErrNoCompletedRows)
	})

	t.Run("select_value_not_boolean", func(t *testing.T) {
		e := staticRow(t, "isPublished", "is")
		e.Condition.SetValueText("maybe")

		_, err := builder.Build([]*conditionalfilter.FilterElement{e})

		assert.ErrorIs(t, err, conditionalfilter.ErrBuildingQueryFailed)
	})

	t.Run("between_without_range", func(t *testing.T) {
		e := staticRow(t, "price", "between")
		e.Condition.SetValueText("10")

		_, err := builder.Build([]*conditionalfilter.FilterElement{e})

		assert.ErrorIs(t, err, conditionalfilter.ErrBuildingQueryFailed)
	})
}

func Test_QueryBuilder_NewQueryBuilder_RejectsEmptyNames(t *testing.T) {
	tests := []struct {
		name   string
		option postgresengine.QueryOption
	}{
		{name: "table", option: postgresengine.WithProductTable("")},
		{name: "select_columns", option: postgresengine.WithSelectColumns()},
		{name: "column", option: postgresengine.WithColumn("category", "")},
		{name: "constraint_column", option: postgresengine.WithConstraintColumn("", "x")},
		{name: "attributes_column", option: postgresengine.WithAttributesColumn("")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			builder, err := postgresengine.NewQueryBuilder(tc.option)

			assert.Nil(t, builder)
			assert.Error(t, err)
		})
	}
}
