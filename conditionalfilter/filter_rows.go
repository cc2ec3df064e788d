package conditionalfilter

import (
	"slices"

	"github.com/google/uuid"
)

// Row is one slot of a FilterRows list.
type Row struct {
	ID      uuid.UUID
	Element *FilterElement
}

// FilterRows is the ordered list of rows a user composes. Rows are combined with AND on submission.
type FilterRows struct {
	catalog *Catalog
	rows    []Row
}

// NewFilterRows creates an empty row list resolving its tables from catalog, or DefaultCatalog if nil.
func NewFilterRows(catalog *Catalog) *FilterRows {
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	return &FilterRows{catalog: catalog}
}

// AddEmpty appends an empty row.
func (fr *FilterRows) AddEmpty() Row {
	return fr.add(fr.catalog.CreateEmpty())
}

// AddStatic appends a row for a static field. Unknown slugs append nothing and report false.
func (fr *FilterRows) AddStatic(slug string) (Row, bool) {
	element := fr.catalog.CreateStaticBySlug(slug)
	if element.IsEmpty() {
		return Row{}, false
	}

	return fr.add(element), true
}

// Append adds an element built elsewhere, e.g. by DecodeSubmission.
func (fr *FilterRows) Append(element *FilterElement) Row {
	return fr.add(element)
}

func (fr *FilterRows) add(element *FilterElement) Row {
	row := Row{ID: uuid.New(), Element: element}
	fr.rows = append(fr.rows, row)

	return row
}

// Remove drops the row with the given id.
func (fr *FilterRows) Remove(id uuid.UUID) bool {
	before := len(fr.rows)
	fr.rows = slices.DeleteFunc(fr.rows, func(r Row) bool { return r.ID == id })

	return len(fr.rows) < before
}

// Get returns the row with the given id.
func (fr *FilterRows) Get(id uuid.UUID) (Row, bool) {
	idx := slices.IndexFunc(fr.rows, func(r Row) bool { return r.ID == id })
	if idx < 0 {
		return Row{}, false
	}

	return fr.rows[idx], true
}

// Rows returns the rows in presentation order.
func (fr *FilterRows) Rows() []Row {
	return slices.Clone(fr.rows)
}

// Len returns the number of rows.
func (fr *FilterRows) Len() int {
	return len(fr.rows)
}

// Completed returns the elements eligible for submission, in order.
func (fr *FilterRows) Completed() []*FilterElement {
	completed := make([]*FilterElement, 0, len(fr.rows))
	for _, row := range fr.rows {
		if row.Element.IsComplete() {
			completed = append(completed, row.Element)
		}
	}

	return completed
}

// MissingConstraints returns the constrained kinds some row depends on but no row provides, sorted.
// A price row, for example, needs a channel row.
func (fr *FilterRows) MissingConstraints() []string {
	missing := make([]string, 0)

	for _, kind := range fr.catalog.ConstraintKinds() {
		template := fr.catalog.ConstraintFor(kind)
		needed, present := false, false

		for _, row := range fr.rows {
			if !row.Element.IsStatic() {
				continue
			}

			if row.Element.Value.Type == kind {
				present = true
			}

			if template.Requires(row.Element.Value.Type) {
				needed = true
			}
		}

		if needed && !present {
			missing = append(missing, kind)
		}
	}

	return missing
}

// EnsureConstraints appends a static row for every missing constrained kind and returns the added rows.
func (fr *FilterRows) EnsureConstraints() []Row {
	added := make([]Row, 0)

	for _, kind := range fr.MissingConstraints() {
		for _, slug := range fr.catalog.StaticSlugs() {
			descriptor, _ := fr.catalog.StaticDescriptor(slug)
			if descriptor.Type != kind {
				continue
			}

			if row, ok := fr.AddStatic(slug); ok {
				added = append(added, row)
			}

			break
		}
	}

	return added
}
