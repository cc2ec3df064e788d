package conditionalfilter

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var submissionJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// SubmittedOperand is the JSON shape of a row's left operand.
type SubmittedOperand struct {
	Origin     string  `json:"origin"`
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Slug       string  `json:"slug,omitempty"`
	EntityType *string `json:"entityType"`
}

// SubmittedValue is the JSON shape of the value entered for the operator.
type SubmittedValue struct {
	Text  string       `json:"text,omitempty"`
	Items []ItemOption `json:"items,omitempty"`
	Range *ValueRange  `json:"range,omitempty"`
}

// SubmittedRow is the JSON shape of one completed row as read by the backend.
type SubmittedRow struct {
	Operand    SubmittedOperand `json:"operand"`
	Operator   ConditionOption  `json:"operator"`
	Value      SubmittedValue   `json:"value"`
	Constraint *string          `json:"constraint,omitempty"`
}

// ToSubmittedRow converts a row into its submission shape.
func ToSubmittedRow(fe *FilterElement) SubmittedRow {
	row := SubmittedRow{
		Operand: SubmittedOperand{
			Origin:     fe.Value.Origin.String(),
			Type:       fe.Value.Type,
			Label:      fe.Value.Label,
			Value:      fe.Value.Value,
			Slug:       fe.Value.Slug,
			EntityType: fe.Value.clone().EntityType,
		},
		Operator: fe.Condition.Selected.ConditionValue,
		Value: SubmittedValue{
			Text:  fe.Condition.Selected.Value.Text,
			Items: fe.Condition.Selected.Value.Items,
			Range: fe.Condition.Selected.Value.Range,
		},
	}

	if fe.Constraint.IsSet() {
		constraint := fe.Constraint.Value
		row.Constraint = &constraint
	}

	return row
}

// EncodeSubmission writes the completed elements as a JSON array. Incomplete elements are skipped.
func EncodeSubmission(elements []*FilterElement) ([]byte, error) {
	rows := make([]SubmittedRow, 0, len(elements))
	for _, element := range elements {
		if element.IsComplete() {
			rows = append(rows, ToSubmittedRow(element))
		}
	}

	return submissionJSON.Marshal(rows)
}

// DecodeSubmission rebuilds elements from a JSON array written by EncodeSubmission.
// Rows are replayed through the regular mutation API, so operators unknown to catalog are rejected.
func DecodeSubmission(data []byte, catalog *Catalog) ([]*FilterElement, error) {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	if !jsoniter.ConfigFastest.Valid(data) {
		return nil, errors.Join(ErrInvalidSubmission, errors.New("submission json is not valid"))
	}

	var rows []SubmittedRow
	if err := submissionJSON.Unmarshal(data, &rows); err != nil {
		return nil, errors.Join(ErrInvalidSubmission, err)
	}

	elements := make([]*FilterElement, 0, len(rows))
	for i, row := range rows {
		element, err := decodeRow(row, catalog)
		if err != nil {
			return nil, errors.Join(ErrInvalidSubmission, fmt.Errorf("row %d", i), err)
		}

		elements = append(elements, element)
	}

	return elements, nil
}

func decodeRow(row SubmittedRow, catalog *Catalog) (*FilterElement, error) {
	var operand ExpressionValue

	switch row.Operand.Origin {
	case OperandStatic.String():
		operand = StaticOperand(row.Operand.Type, row.Operand.Label, row.Operand.Value)
	case OperandAttribute.String():
		operand = AttributeOperand(row.Operand.Type, row.Operand.Label, row.Operand.Value)
	default:
		return nil, fmt.Errorf("unknown operand origin %q", row.Operand.Origin)
	}

	if row.Operand.Slug != "" {
		operand.Slug = row.Operand.Slug
	}

	if row.Operand.EntityType != nil {
		operand = operand.WithEntityType(*row.Operand.EntityType)
	}

	element := catalog.CreateEmpty()
	element.UpdateLeftOperator(operand)

	if element.IsEmpty() {
		return nil, errors.New("operand value is empty")
	}

	if !element.Condition.SelectOperator(row.Operator) {
		return nil, errors.Join(ErrUnsupportedOperator, fmt.Errorf("operator %q for kind %q", row.Operator.Value, operand.Type))
	}

	switch {
	case row.Value.Range != nil:
		element.Condition.SetValueRange(row.Value.Range.From, row.Value.Range.To)
	case len(row.Value.Items) > 0:
		element.Condition.SetValueItems(row.Value.Items...)
	default:
		element.Condition.SetValueText(row.Value.Text)
	}

	if row.Constraint != nil {
		element.UpdateConstraintValue(*row.Constraint)
	}

	return element, nil
}
