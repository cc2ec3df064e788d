package conditionalfilter

// OperandOrigin tags where a left operand comes from.
type OperandOrigin int

const (
	// OperandUnset means no operand was chosen yet.
	OperandUnset OperandOrigin = iota

	// OperandStatic is a fixed field like "category" or "channel".
	OperandStatic

	// OperandAttribute is a dynamic product attribute, Type holds its input type.
	OperandAttribute
)

// String provides a string representation of OperandOrigin for logging and debugging.
func (o OperandOrigin) String() string {
	switch o {
	case OperandUnset:
		return "unset"
	case OperandStatic:
		return "static"
	case OperandAttribute:
		return "attribute"
	default:
		return "unknown"
	}
}

// ExpressionValue is the left-hand operand of a filter row.
//
// While its properties are exported, it should only be constructed with the supplied factory methods:
//   - EmptyExpressionValue
//   - NewExpressionValue
//   - StaticOperand
//   - AttributeOperand
//
// They guarantee that Origin is OperandUnset if and only if Value is empty.
type ExpressionValue struct {
	Type       string
	Label      string
	Value      string
	EntityType *string
	Slug       string
	Origin     OperandOrigin
}

// EmptyExpressionValue returns a fresh "nothing selected" operand.
func EmptyExpressionValue() ExpressionValue {
	return ExpressionValue{}
}

// NewExpressionValue builds a static-shaped operand. An empty value yields the unset operand.
func NewExpressionValue(value, label, kind string) ExpressionValue {
	return StaticOperand(kind, label, value)
}

// StaticOperand builds an operand for a static field.
func StaticOperand(kind, label, value string) ExpressionValue {
	ev := ExpressionValue{
		Type:  kind,
		Label: label,
		Value: value,
		Slug:  value,
	}

	return ev.withOrigin(OperandStatic)
}

// AttributeOperand builds an operand for a dynamic attribute identified by its slug.
func AttributeOperand(inputType, label, slug string) ExpressionValue {
	ev := ExpressionValue{
		Type:  inputType,
		Label: label,
		Value: slug,
		Slug:  slug,
	}

	return ev.withOrigin(OperandAttribute)
}

// WithEntityType returns a copy carrying the given reference entity type.
func (ev ExpressionValue) WithEntityType(entityType string) ExpressionValue {
	if entityType == "" {
		ev.EntityType = nil
		return ev
	}

	ev.EntityType = &entityType

	return ev
}

// IsEmpty reports whether no operand is chosen.
func (ev ExpressionValue) IsEmpty() bool {
	return ev.Origin == OperandUnset
}

// SameOperand reports whether both values identify the same operand.
func (ev ExpressionValue) SameOperand(other ExpressionValue) bool {
	return ev.Origin == other.Origin && ev.Type == other.Type && ev.Value == other.Value
}

func (ev ExpressionValue) withOrigin(origin OperandOrigin) ExpressionValue {
	if ev.Value == "" {
		ev.Origin = OperandUnset
		return ev
	}

	ev.Origin = origin

	return ev
}

func (ev ExpressionValue) clone() ExpressionValue {
	if ev.EntityType != nil {
		entityType := *ev.EntityType
		ev.EntityType = &entityType
	}

	return ev
}

// AttributeRef identifies the attribute a row filters on.
type AttributeRef struct {
	Slug       string
	InputType  string
	EntityType *string
}
