package conditionalfilter

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

// StaticField describes one static operand offered by CreateStaticBySlug.
type StaticField struct {
	Slug       string `yaml:"slug" validate:"required"`
	Label      string `yaml:"label" validate:"required"`
	Type       string `yaml:"type" validate:"required"`
	EntityType string `yaml:"entity_type,omitempty"`
}

// ConstraintSpec describes the constraint attached to a constrained operand kind.
type ConstraintSpec struct {
	DependsOn []string `yaml:"depends_on"`
	Disabled  []string `yaml:"disabled"`
	Removable bool     `yaml:"removable"`
}

// CatalogSpec is the raw table content a Catalog is built from.
type CatalogSpec struct {
	StaticFields []StaticField                `yaml:"static_fields" validate:"dive"`
	Conditions   map[string][]ConditionOption `yaml:"conditions" validate:"required,dive,keys,required,endkeys,dive"`
	Constraints  map[string]ConstraintSpec    `yaml:"constraints" validate:"dive,keys,required,endkeys"`
}

// Catalog holds the static lookup tables of the filter model:
//
//   - slug -> static operand descriptor
//   - operand kind -> ordered operator list
//   - constrained operand kind -> constraint template
//
// A Catalog is immutable once built, all lookups return fresh copies.
type Catalog struct {
	statics     map[string]ExpressionValue
	staticSlugs []string
	conditions  map[string][]ConditionOption
	constraints map[string]*Constraint
	staticKinds map[string]struct{}
}

var specValidator = validator.New()

// NewCatalog validates the spec and builds a Catalog from a deep copy of it.
func NewCatalog(spec CatalogSpec) (*Catalog, error) {
	if err := specValidator.Struct(spec); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	c := &Catalog{
		statics:     make(map[string]ExpressionValue, len(spec.StaticFields)),
		conditions:  make(map[string][]ConditionOption, len(spec.Conditions)),
		constraints: make(map[string]*Constraint, len(spec.Constraints)),
		staticKinds: make(map[string]struct{}, len(spec.StaticFields)),
	}

	for _, field := range spec.StaticFields {
		if _, exists := c.statics[field.Slug]; exists {
			return nil, errors.Join(ErrInvalidCatalog, fmt.Errorf("duplicate static field %q", field.Slug))
		}

		c.statics[field.Slug] = StaticOperand(field.Type, field.Label, field.Slug).WithEntityType(field.EntityType)
		c.staticKinds[field.Type] = struct{}{}
	}

	c.staticSlugs = slices.Sorted(maps.Keys(c.statics))

	for kind, options := range spec.Conditions {
		c.conditions[kind] = cloneOptions(options)
	}

	for kind, constraint := range spec.Constraints {
		if !c.IsStaticKind(kind) {
			return nil, errors.Join(ErrInvalidCatalog, ErrUnknownOperandKind, fmt.Errorf("constraint kind %q", kind))
		}

		for _, dependent := range constraint.DependsOn {
			if !c.IsStaticKind(dependent) {
				return nil, errors.Join(ErrInvalidCatalog, ErrUnknownOperandKind, fmt.Errorf("dependent kind %q", dependent))
			}
		}

		c.constraints[kind] = &Constraint{
			DependsOn: slices.Clone(constraint.DependsOn),
			Disabled:  slices.Clone(constraint.Disabled),
			Removable: constraint.Removable,
		}
	}

	return c, nil
}

// DefaultCatalog returns the built-in catalog. It is built once per process.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(DefaultCatalogSpec())
	if err != nil {
		panic(err)
	}

	return c
})

// OptionsFor returns the operators offered for an operand kind.
// Unknown kinds yield an empty list.
func (c *Catalog) OptionsFor(kind string) []ConditionOption {
	return cloneOptions(c.conditions[kind])
}

// StaticDescriptor returns the operand registered for a static slug.
func (c *Catalog) StaticDescriptor(slug string) (ExpressionValue, bool) {
	ev, ok := c.statics[slug]
	if !ok {
		return EmptyExpressionValue(), false
	}

	return ev.clone(), true
}

// StaticSlugs returns all registered static slugs, sorted.
func (c *Catalog) StaticSlugs() []string {
	return slices.Clone(c.staticSlugs)
}

// ConstraintFor returns a fresh, unset constraint for a constrained kind, or nil.
func (c *Catalog) ConstraintFor(kind string) *Constraint {
	return c.constraints[kind].clone()
}

// ConstraintKinds returns the constrained kinds, sorted.
func (c *Catalog) ConstraintKinds() []string {
	return slices.Sorted(maps.Keys(c.constraints))
}

// IsStaticKind reports whether kind belongs to a static field.
func (c *Catalog) IsStaticKind(kind string) bool {
	_, ok := c.staticKinds[kind]
	return ok
}

// IsAttributeKind reports whether kind is a registered attribute input type.
func (c *Catalog) IsAttributeKind(kind string) bool {
	if c.IsStaticKind(kind) {
		return false
	}

	_, ok := c.conditions[kind]

	return ok
}

// CreateEmpty creates an empty FilterElement bound to this catalog.
func (c *Catalog) CreateEmpty() *FilterElement {
	return NewFilterElement(EmptyExpressionValue(), NewEmptyCondition(), false, WithCatalog(c))
}

// CreateStaticBySlug creates a FilterElement for a static field.
// An unknown slug yields an element indistinguishable from CreateEmpty, callers check IsEmpty.
func (c *Catalog) CreateStaticBySlug(slug string) *FilterElement {
	element := c.CreateEmpty()

	descriptor, ok := c.StaticDescriptor(slug)
	if !ok {
		return element
	}

	element.UpdateLeftOperator(descriptor)

	return element
}

// normalize resolves the origin of an operand against the catalog.
// Known static kinds become static, known attribute kinds become attributes, unknown kinds keep the given origin.
func (c *Catalog) normalize(operand ExpressionValue) ExpressionValue {
	operand = operand.clone()

	switch {
	case operand.Value == "":
		operand.Origin = OperandUnset
	case c.IsStaticKind(operand.Type):
		operand.Origin = OperandStatic
	case c.IsAttributeKind(operand.Type):
		operand.Origin = OperandAttribute
	case operand.Origin == OperandUnset:
		operand.Origin = OperandAttribute
	}

	return operand
}
