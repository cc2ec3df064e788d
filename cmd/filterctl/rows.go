package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AntonStoeckl/conditional-filter-go/conditionalfilter"
)

var errMalformedRow = errors.New("malformed row, want kind:operator:value[,value]")

const (
	attributeSeparator = "@"
	rangeWidgetSuffix  = ".range"
	multiselectWidget  = "multiselect"
)

// rowSpec is one --row flag: a static slug or slug@INPUT_TYPE, an operator label and its values.
type rowSpec struct {
	operand  string
	operator string
	values   []string
}

func parseRowSpec(raw string) (rowSpec, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return rowSpec{}, fmt.Errorf("%w: %q", errMalformedRow, raw)
	}

	values := strings.Split(parts[2], ",")
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
		if values[i] == "" {
			return rowSpec{}, fmt.Errorf("%w: empty value in %q", errMalformedRow, raw)
		}
	}

	return rowSpec{operand: parts[0], operator: parts[1], values: values}, nil
}

// buildRows turns --row flags into filter rows. A non-empty constraint adds the rows a
// constrained kind needs and qualifies every constrained row with it.
func buildRows(catalog *conditionalfilter.Catalog, specs []string, constraint string) (*conditionalfilter.FilterRows, error) {
	rows := conditionalfilter.NewFilterRows(catalog)

	for _, raw := range specs {
		spec, err := parseRowSpec(raw)
		if err != nil {
			return nil, err
		}

		element, err := addRow(rows, catalog, spec)
		if err != nil {
			return nil, err
		}

		if !element.Condition.SelectOperatorByLabel(spec.operator) {
			return nil, fmt.Errorf("%w: %s %s", conditionalfilter.ErrUnsupportedOperator, spec.operand, spec.operator)
		}

		if err = setValues(element, spec.values); err != nil {
			return nil, fmt.Errorf("%s: %w", raw, err)
		}
	}

	if constraint != "" {
		applyConstraint(rows, constraint)
	}

	return rows, nil
}

func addRow(
	rows *conditionalfilter.FilterRows,
	catalog *conditionalfilter.Catalog,
	spec rowSpec,
) (*conditionalfilter.FilterElement, error) {

	slug, inputType, isAttribute := strings.Cut(spec.operand, attributeSeparator)
	if !isAttribute {
		row, ok := rows.AddStatic(slug)
		if !ok {
			return nil, fmt.Errorf("%w: %s", conditionalfilter.ErrUnknownOperandKind, slug)
		}

		return row.Element, nil
	}

	if slug == "" || !catalog.IsAttributeKind(inputType) {
		return nil, fmt.Errorf("%w: %s", conditionalfilter.ErrUnknownOperandKind, spec.operand)
	}

	row := rows.AddEmpty()
	row.Element.UpdateLeftOperator(conditionalfilter.AttributeOperand(inputType, slug, slug))

	return row.Element, nil
}

func setValues(element *conditionalfilter.FilterElement, values []string) error {
	widget := element.Condition.Selected.ConditionValue.Type

	switch {
	case strings.HasSuffix(widget, rangeWidgetSuffix):
		if len(values) != 2 {
			return fmt.Errorf("%w: range needs exactly two values", errMalformedRow)
		}

		element.Condition.SetValueRange(values[0], values[1])

	case widget == multiselectWidget:
		items := make([]conditionalfilter.ItemOption, len(values))
		for i, v := range values {
			items[i] = conditionalfilter.ItemOption{Label: v, Value: v}
		}

		element.Condition.SetValueItems(items...)

	default:
		if len(values) != 1 {
			return fmt.Errorf("%w: operator takes a single value", errMalformedRow)
		}

		element.Condition.SetValueText(values[0])
	}

	return nil
}

func applyConstraint(rows *conditionalfilter.FilterRows, constraint string) {
	for _, row := range rows.EnsureConstraints() {
		row.Element.Condition.SetValueText(constraint)
	}

	for _, row := range rows.Rows() {
		if row.Element.Constraint != nil && !row.Element.Constraint.IsSet() {
			row.Element.UpdateConstraintValue(constraint)
		}
	}
}
