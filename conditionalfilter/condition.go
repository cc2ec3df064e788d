package conditionalfilter

import (
	"slices"
)

// ConditionSelected is the operator currently chosen for a row and the value entered for it.
type ConditionSelected struct {
	ConditionValue ConditionOption
	Loading        bool
	Options        []ItemOption
	Value          SelectedValue
}

// Condition owns the operator selection and value entry of one row.
//
// Selected.ConditionValue is always either empty or one of Options.
type Condition struct {
	Loading  bool
	Options  []ConditionOption
	Selected ConditionSelected
}

// NewEmptyCondition returns a Condition without options and without a selection.
func NewEmptyCondition() Condition {
	return Condition{
		Options: []ConditionOption{},
		Selected: ConditionSelected{
			ConditionValue: EmptyConditionOption(),
			Options:        []ItemOption{},
		},
	}
}

// SelectOperator makes option the active operator and clears the entered value and the value choices.
// Options not offered by the condition are rejected and leave the state untouched.
func (c *Condition) SelectOperator(option ConditionOption) bool {
	idx := c.indexOf(option.Value)
	if idx < 0 {
		return false
	}

	c.Selected.ConditionValue = c.Options[idx]
	c.resetSelectedValue()

	return true
}

// SelectOperatorByLabel selects the first option whose label matches, e.g. "in".
func (c *Condition) SelectOperatorByLabel(label string) bool {
	idx := slices.IndexFunc(c.Options, func(o ConditionOption) bool { return o.Label == label })
	if idx < 0 {
		return false
	}

	return c.SelectOperator(c.Options[idx])
}

// SetOptions replaces the available operators.
// A selection that is not part of the new list falls back to the first entry, or to the empty sentinel.
func (c *Condition) SetOptions(options []ConditionOption) {
	c.Options = cloneOptions(options)

	if !c.Selected.ConditionValue.IsEmpty() {
		if idx := c.indexOf(c.Selected.ConditionValue.Value); idx >= 0 {
			c.Selected.ConditionValue = c.Options[idx]
			return
		}
	}

	c.Selected.ConditionValue = EmptyConditionOption()
	if len(c.Options) > 0 {
		c.Selected.ConditionValue = c.Options[0]
	}

	c.resetSelectedValue()
}

// SetLoading toggles the loading flag of the operator list.
func (c *Condition) SetLoading(loading bool) {
	c.Loading = loading
}

// SetSelectedLoading toggles the loading flag of the value choices.
func (c *Condition) SetSelectedLoading(loading bool) {
	c.Selected.Loading = loading
}

// SetSelectedOptions replaces the value choices offered for the active operator.
func (c *Condition) SetSelectedOptions(options []ItemOption) {
	c.Selected.Options = slices.Clone(options)
	if c.Selected.Options == nil {
		c.Selected.Options = []ItemOption{}
	}
}

// SetValueText sets a single free-form value.
func (c *Condition) SetValueText(text string) {
	c.Selected.Value = SelectedValue{Text: text}
}

// SetValueItems sets the chosen items of a multiselect.
func (c *Condition) SetValueItems(items ...ItemOption) {
	c.Selected.Value = SelectedValue{Items: slices.Clone(items)}
}

// SetValueRange sets the bounds of a range operator.
func (c *Condition) SetValueRange(from, to string) {
	c.Selected.Value = SelectedValue{Range: &ValueRange{From: from, To: to}}
}

// IsComplete reports whether an operator is chosen and a value was entered.
func (c *Condition) IsComplete() bool {
	return !c.Selected.ConditionValue.IsEmpty() && !c.Selected.Value.IsZero()
}

// reset puts the condition back to the first option of options.
func (c *Condition) reset(options []ConditionOption) {
	c.Options = cloneOptions(options)
	c.Selected.ConditionValue = EmptyConditionOption()
	if len(c.Options) > 0 {
		c.Selected.ConditionValue = c.Options[0]
	}

	c.Selected.Loading = false
	c.resetSelectedValue()
}

func (c *Condition) resetSelectedValue() {
	c.Selected.Value = SelectedValue{}
	c.Selected.Options = []ItemOption{}
}

func (c *Condition) indexOf(operatorID string) int {
	return slices.IndexFunc(c.Options, func(o ConditionOption) bool { return o.Value == operatorID })
}
