package conditionalfilter

import (
	"slices"
)

// FilterElement is one row of a conditional filter: a left operand, a condition and an optional constraint,
// plus the loading state of the attribute picker.
//
// A FilterElement is owned by exactly one row slot and must only be mutated by its owner,
// or through AttributeSearch.Mutate while attribute searches are in flight.
type FilterElement struct {
	Value                   ExpressionValue
	Condition               Condition
	Constraint              *Constraint
	Loading                 bool
	SelectedAttribute       *AttributeRef
	AvailableAttributesList []ExpressionValue
	AttributeLoading        bool

	catalog    *Catalog
	generation uint64
	searchSeq  uint64
}

// ElementOption defines a functional option for configuring a FilterElement.
type ElementOption func(*FilterElement)

// WithCatalog binds the element to a catalog other than DefaultCatalog.
func WithCatalog(catalog *Catalog) ElementOption {
	return func(fe *FilterElement) {
		if catalog != nil {
			fe.catalog = catalog
		}
	}
}

// NewFilterElement assembles an element from its parts.
func NewFilterElement(
	value ExpressionValue,
	condition Condition,
	loading bool,
	options ...ElementOption,
) *FilterElement {

	fe := &FilterElement{
		Value:                   value,
		Condition:               condition,
		Loading:                 loading,
		AvailableAttributesList: []ExpressionValue{},
		catalog:                 DefaultCatalog(),
	}

	for _, option := range options {
		option(fe)
	}

	fe.Value = fe.catalog.normalize(fe.Value)

	return fe
}

// CreateEmpty creates an empty element bound to DefaultCatalog.
func CreateEmpty() *FilterElement {
	return DefaultCatalog().CreateEmpty()
}

// CreateStaticBySlug creates an element for a static field of DefaultCatalog.
// An unknown slug yields an empty element.
func CreateStaticBySlug(slug string) *FilterElement {
	return DefaultCatalog().CreateStaticBySlug(slug)
}

// UpdateLeftOperator sets the left operand and resets everything that depends on it:
//   - the operator list is repopulated from the catalog and the first operator is selected
//   - the entered value and the value choices are cleared
//   - the constraint is created for constrained kinds and removed otherwise
//   - the selected attribute follows the operand
//
// Calling it repeatedly with the same operand yields the same state as calling it once.
func (fe *FilterElement) UpdateLeftOperator(operand ExpressionValue) {
	tables := fe.tables()
	operand = tables.normalize(operand)

	if !fe.Value.SameOperand(operand) {
		fe.generation++
	}

	fe.Value = operand
	fe.Condition.reset(tables.OptionsFor(operand.Type))
	fe.Constraint = nil
	fe.SelectedAttribute = nil

	switch operand.Origin {
	case OperandStatic:
		fe.Constraint = tables.ConstraintFor(operand.Type)

	case OperandAttribute:
		fe.SelectedAttribute = &AttributeRef{
			Slug:       operand.Value,
			InputType:  operand.Type,
			EntityType: operand.clone().EntityType,
		}
	}
}

// UpdateAvailableAttributesList replaces the attributes offered in the operand picker.
func (fe *FilterElement) UpdateAvailableAttributesList(attributes []ExpressionValue) {
	list := make([]ExpressionValue, len(attributes))
	for i, attribute := range attributes {
		list[i] = attribute.clone()
	}

	fe.AvailableAttributesList = list
}

// UpdateAttributeLoadingState toggles the loading flag of the attribute picker.
func (fe *FilterElement) UpdateAttributeLoadingState(loading bool) {
	fe.AttributeLoading = loading
}

// UpdateConstraintValue sets the qualifier of a constrained row. Rows without a constraint return false.
func (fe *FilterElement) UpdateConstraintValue(value string) bool {
	if fe.Constraint == nil {
		return false
	}

	fe.Constraint.Value = value

	return true
}

// IsEmpty reports whether no left operand was chosen yet.
func (fe *FilterElement) IsEmpty() bool {
	return fe.Value.IsEmpty()
}

// IsStatic reports whether the row filters on a static field.
func (fe *FilterElement) IsStatic() bool {
	return fe.Value.Origin == OperandStatic
}

// IsAttribute reports whether the row filters on a dynamic attribute.
func (fe *FilterElement) IsAttribute() bool {
	return fe.Value.Origin == OperandAttribute
}

// RowType classifies the row for value-editor dispatch. Empty rows report false.
func (fe *FilterElement) RowType() (RowType, bool) {
	switch fe.Value.Origin {
	case OperandStatic:
		return fe.Value.Type, true
	case OperandAttribute:
		return RowTypeAttribute, true
	default:
		return "", false
	}
}

// IsComplete reports whether the row can be submitted:
// an operand is chosen, the condition has an operator and a value, and a constraint, if any, is set.
func (fe *FilterElement) IsComplete() bool {
	if fe.IsEmpty() || !fe.Condition.IsComplete() {
		return false
	}

	return fe.Constraint == nil || fe.Constraint.IsSet()
}

// Generation is bumped whenever the left operand changes to a different operand.
func (fe *FilterElement) Generation() uint64 {
	return fe.generation
}

// Catalog returns the catalog the element resolves its tables from.
// A zero-value element resolves from DefaultCatalog.
func (fe *FilterElement) Catalog() *Catalog {
	return fe.tables()
}

func (fe *FilterElement) tables() *Catalog {
	if fe.catalog == nil {
		return DefaultCatalog()
	}

	return fe.catalog
}

// Clone returns a deep copy that shares nothing mutable with fe.
func (fe *FilterElement) Clone() *FilterElement {
	clone := *fe
	clone.Value = fe.Value.clone()
	clone.Condition.Options = cloneOptions(fe.Condition.Options)
	clone.Condition.Selected.Options = slices.Clone(fe.Condition.Selected.Options)
	clone.Condition.Selected.Value.Items = slices.Clone(fe.Condition.Selected.Value.Items)

	if r := fe.Condition.Selected.Value.Range; r != nil {
		rangeCopy := *r
		clone.Condition.Selected.Value.Range = &rangeCopy
	}

	clone.Constraint = fe.Constraint.clone()

	if fe.SelectedAttribute != nil {
		attributeCopy := *fe.SelectedAttribute
		if attributeCopy.EntityType != nil {
			entityType := *attributeCopy.EntityType
			attributeCopy.EntityType = &entityType
		}

		clone.SelectedAttribute = &attributeCopy
	}

	clone.UpdateAvailableAttributesList(fe.AvailableAttributesList)

	return &clone
}
