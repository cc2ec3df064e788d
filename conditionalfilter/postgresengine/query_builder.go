package postgresengine

import (
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
)

const (
	defaultProductTableName = "products"
	defaultAttributesColumn = "attributes"
	castJsonb               = "? @> ?::jsonb"
	castAttributeText       = "(? ->> ?)"
	castAttributeNumeric    = "(? ->> ?)::numeric"
	castAttributeDate       = "(? ->> ?)::date"
	castAttributeTimestamp  = "(? ->> ?)::timestamptz"
	widgetSelect            = "select"
	widgetRangeSuffix       = ".range"
	widgetNumber            = "number"
	widgetDate              = "date"
	widgetDateTime          = "datetime"
)

var containmentJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// QueryOption defines a functional option for configuring QueryBuilder.
type QueryOption func(*QueryBuilder) error

// WithProductTable sets the table the filter is applied to.
func WithProductTable(tableName string) QueryOption {
	return func(qb *QueryBuilder) error {
		if tableName == "" {
			return conditionalfilter.ErrEmptyTableName
		}

		qb.tableName = tableName

		return nil
	}
}

// WithSelectColumns sets the columns of the SELECT list.
func WithSelectColumns(columns ...string) QueryOption {
	return func(qb *QueryBuilder) error {
		if len(columns) == 0 {
			return errors.New("at least one select column is required")
		}

		qb.selectColumns = columns

		return nil
	}
}

// WithColumn maps a static operand kind to a column.
func WithColumn(kind, column string) QueryOption {
	return func(qb *QueryBuilder) error {
		if kind == "" || column == "" {
			return errors.New("kind and column must not be empty")
		}

		qb.columns[kind] = column

		return nil
	}
}

// WithConstraintColumn maps the constraint value of a constrained kind to a column.
// Without a mapping the constraint value adds no predicate of its own.
func WithConstraintColumn(kind, column string) QueryOption {
	return func(qb *QueryBuilder) error {
		if kind == "" || column == "" {
			return errors.New("kind and column must not be empty")
		}

		qb.constraintColumns[kind] = column

		return nil
	}
}

// WithAttributesColumn sets the JSONB column holding dynamic attribute values keyed by slug.
func WithAttributesColumn(column string) QueryOption {
	return func(qb *QueryBuilder) error {
		if column == "" {
			return errors.New("attributes column must not be empty")
		}

		qb.attributesColumn = column

		return nil
	}
}

// QueryBuilder turns completed filter rows into a Postgres SELECT statement.
// Rows are combined with AND.
type QueryBuilder struct {
	tableName         string
	selectColumns     []string
	columns           map[string]string
	constraintColumns map[string]string
	attributesColumn  string
}

// NewQueryBuilder creates a QueryBuilder. Static kinds map to snake_case columns by default,
// e.g. productType -> product_type.
func NewQueryBuilder(options ...QueryOption) (*QueryBuilder, error) {
	qb := &QueryBuilder{
		tableName:         defaultProductTableName,
		selectColumns:     []string{"id", "name"},
		columns:           maps.Clone(defaultColumns),
		constraintColumns: make(map[string]string),
		attributesColumn:  defaultAttributesColumn,
	}

	for _, option := range options {
		if err := option(qb); err != nil {
			return nil, err
		}
	}

	return qb, nil
}

var defaultColumns = map[string]string{
	conditionalfilter.KindCategory:           "category",
	conditionalfilter.KindCollection:         "collection",
	conditionalfilter.KindChannel:            "channel",
	conditionalfilter.KindProductType:        "product_type",
	conditionalfilter.KindPrice:              "price",
	conditionalfilter.KindIsAvailable:        "is_available",
	conditionalfilter.KindIsPublished:        "is_published",
	conditionalfilter.KindIsVisibleInListing: "is_visible_in_listing",
	conditionalfilter.KindHasCategory:        "has_category",
	conditionalfilter.KindGiftCard:           "gift_card",
}

// Build renders the completed elements as SQL. Incomplete elements are skipped,
// ErrNoCompletedRows is returned if none is left.
func (qb *QueryBuilder) Build(elements []*conditionalfilter.FilterElement) (string, error) {
	expressions := make([]goqu.Expression, 0, len(elements))

	for _, element := range elements {
		if !element.IsComplete() {
			continue
		}

		expression, err := qb.rowExpression(element)
		if err != nil {
			return "", errors.Join(conditionalfilter.ErrBuildingQueryFailed, err)
		}

		expressions = append(expressions, expression)
	}

	if len(expressions) == 0 {
		return "", conditionalfilter.ErrNoCompletedRows
	}

	selectColumns := make([]any, len(qb.selectColumns))
	for i, column := range qb.selectColumns {
		selectColumns[i] = column
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(qb.tableName).
		Select(selectColumns...).
		Where(goqu.And(expressions...))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(conditionalfilter.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (qb *QueryBuilder) rowExpression(element *conditionalfilter.FilterElement) (goqu.Expression, error) {
	operator := element.Condition.Selected.ConditionValue
	values, err := operandValues(operator, element.Condition.Selected.Value)
	if err != nil {
		return nil, err
	}

	if element.IsAttribute() {
		return qb.attributeExpression(element.Value.Value, operator, values)
	}

	column, ok := qb.columns[element.Value.Type]
	if !ok {
		column = element.Value.Type
	}

	expression, err := comparison(goqu.C(column), operator, values)
	if err != nil {
		return nil, err
	}

	if constraintColumn, ok := qb.constraintColumns[element.Value.Type]; ok && element.Constraint.IsSet() {
		return goqu.And(expression, goqu.C(constraintColumn).Eq(element.Constraint.Value)), nil
	}

	return expression, nil
}

// attributeExpression compares a value of the JSONB attributes column.
// Equality uses containment so that the column's GIN index applies.
func (qb *QueryBuilder) attributeExpression(slug string, operator conditionalfilter.ConditionOption, values []any) (goqu.Expression, error) {
	column := goqu.I(qb.attributesColumn)

	switch operator.Label {
	case conditionalfilter.OperatorIs, conditionalfilter.OperatorIn:
		if operator.Label == conditionalfilter.OperatorIs {
			values = values[:1]
		}

		containments := make([]goqu.Expression, 0, len(values))
		for _, value := range values {
			document, err := containmentJSON.Marshal(map[string]any{slug: value})
			if err != nil {
				return nil, err
			}

			containments = append(containments, goqu.L(castJsonb, column, string(document)))
		}

		return goqu.Or(containments...), nil

	default:
		cast := castAttributeText
		switch strings.TrimSuffix(operator.Type, widgetRangeSuffix) {
		case widgetNumber:
			cast = castAttributeNumeric
		case widgetDate:
			cast = castAttributeDate
		case widgetDateTime:
			cast = castAttributeTimestamp
		}

		return comparison(goqu.L(cast, column, slug), operator, values)
	}
}

// operandTarget is the part of goqu's identifier and literal expressions used for row comparisons.
type operandTarget interface {
	Eq(any) exp.BooleanExpression
	In(...any) exp.BooleanExpression
	Lt(any) exp.BooleanExpression
	Gt(any) exp.BooleanExpression
	Between(exp.RangeVal) exp.RangeExpression
}

func comparison(
	target operandTarget,
	operator conditionalfilter.ConditionOption,
	values []any,
) (goqu.Expression, error) {

	switch operator.Label {
	case conditionalfilter.OperatorIs:
		return target.Eq(values[0]), nil
	case conditionalfilter.OperatorIn:
		return target.In(values...), nil
	case conditionalfilter.OperatorLower:
		return target.Lt(values[0]), nil
	case conditionalfilter.OperatorGreater:
		return target.Gt(values[0]), nil
	case conditionalfilter.OperatorBetween:
		if len(values) != 2 {
			return nil, fmt.Errorf("operator %q needs a range", operator.Label)
		}

		return target.Between(goqu.Range(values[0], values[1])), nil
	default:
		return nil, errors.Join(conditionalfilter.ErrUnsupportedOperator, fmt.Errorf("operator %q", operator.Label))
	}
}

// operandValues extracts the entered value as SQL literals.
// Ranges yield two values, multiselects one per item, everything else a single value.
func operandValues(operator conditionalfilter.ConditionOption, value conditionalfilter.SelectedValue) ([]any, error) {
	var raw []string

	switch {
	case value.Range != nil:
		raw = []string{value.Range.From, value.Range.To}
	case len(value.Items) > 0:
		raw = make([]string, len(value.Items))
		for i, item := range value.Items {
			raw[i] = item.Value
		}
	default:
		raw = []string{value.Text}
	}

	values := make([]any, len(raw))
	for i, r := range raw {
		if operator.Type != widgetSelect {
			values[i] = r
			continue
		}

		b, err := strconv.ParseBool(r)
		if err != nil {
			return nil, fmt.Errorf("value %q is not a boolean", r)
		}

		values[i] = b
	}

	return values, nil
}
