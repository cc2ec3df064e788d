package conditionalfilter

// ConditionOption is one selectable operator for an operand kind.
type ConditionOption struct {
	Label string `yaml:"label" json:"label" validate:"required"`
	Type  string `yaml:"type" json:"type" validate:"required"`
	Value string `yaml:"value" json:"value" validate:"required"`
}

// EmptyConditionOption is the "no operator selected" sentinel.
func EmptyConditionOption() ConditionOption {
	return ConditionOption{}
}

// IsEmpty reports whether this is the unselected sentinel.
func (co ConditionOption) IsEmpty() bool {
	return co.Value == ""
}

// ItemOption is one value choice offered by a combobox or multiselect editor.
type ItemOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Slug  string `json:"slug,omitempty"`
}

// ValueRange is the value of a "between" operator.
type ValueRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// SelectedValue holds whatever the active value editor produced.
// Text is used by single-value editors, Items by multiselect editors and Range by range editors.
type SelectedValue struct {
	Text  string
	Items []ItemOption
	Range *ValueRange
}

// IsZero reports whether nothing was entered.
func (sv SelectedValue) IsZero() bool {
	return sv.Text == "" && len(sv.Items) == 0 && sv.Range == nil
}

func cloneOptions(options []ConditionOption) []ConditionOption {
	cloned := make([]ConditionOption, len(options))
	copy(cloned, options)

	return cloned
}
