package conditionalfilter

import (
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadCatalogYAML builds a Catalog from a YAML document shaped like CatalogSpec:
//
//	static_fields:
//	  - {slug: category, label: Category, type: category}
//	conditions:
//	  category:
//	    - {label: is, type: combobox, value: input-1}
//	constraints:
//	  channel: {depends_on: [price], disabled: [left, condition]}
//
// Unknown keys are rejected.
func LoadCatalogYAML(r io.Reader) (*Catalog, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var spec CatalogSpec
	if err := decoder.Decode(&spec); err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}

	return NewCatalog(spec)
}

// LoadCatalogFile reads a YAML catalog from path.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidCatalog, err)
	}
	defer f.Close()

	return LoadCatalogYAML(f)
}
