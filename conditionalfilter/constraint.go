package conditionalfilter

import (
	"slices"
)

// Constraint is a secondary qualifier that a row of a constrained operand kind needs before it is complete,
// e.g. the channel a price filter applies to.
type Constraint struct {
	DependsOn []string
	Disabled  []string
	Removable bool
	Value     string
}

// IsSet reports whether a qualifier value was chosen.
func (c *Constraint) IsSet() bool {
	return c != nil && c.Value != ""
}

// Requires reports whether rows of the given kind depend on this constraint.
func (c *Constraint) Requires(kind string) bool {
	return c != nil && slices.Contains(c.DependsOn, kind)
}

func (c *Constraint) clone() *Constraint {
	if c == nil {
		return nil
	}

	return &Constraint{
		DependsOn: slices.Clone(c.DependsOn),
		Disabled:  slices.Clone(c.Disabled),
		Removable: c.Removable,
		Value:     c.Value,
	}
}
