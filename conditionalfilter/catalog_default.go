package conditionalfilter

const (
	KindCategory           = "category"
	KindCollection         = "collection"
	KindChannel            = "channel"
	KindProductType        = "productType"
	KindPrice              = "price"
	KindIsAvailable        = "isAvailable"
	KindIsPublished        = "isPublished"
	KindIsVisibleInListing = "isVisibleInListing"
	KindHasCategory        = "hasCategory"
	KindGiftCard           = "giftCard"

	AttributeDropdown    = "DROPDOWN"
	AttributeMultiselect = "MULTISELECT"
	AttributeSwatch      = "SWATCH"
	AttributeReference   = "REFERENCE"
	AttributeBoolean     = "BOOLEAN"
	AttributeNumeric     = "NUMERIC"
	AttributeDate        = "DATE"
	AttributeDateTime    = "DATE_TIME"

	OperatorIs      = "is"
	OperatorIn      = "in"
	OperatorLower   = "lower"
	OperatorGreater = "greater"
	OperatorBetween = "between"
)

func option(label, widget, value string) ConditionOption {
	return ConditionOption{Label: label, Type: widget, Value: value}
}

func isOrIn() []ConditionOption {
	return []ConditionOption{
		option(OperatorIs, "combobox", "input-1"),
		option(OperatorIn, "multiselect", "input-2"),
	}
}

func onlyIn() []ConditionOption {
	return []ConditionOption{option(OperatorIn, "multiselect", "input-2")}
}

func onlyIsSelect() []ConditionOption {
	return []ConditionOption{option(OperatorIs, "select", "input-1")}
}

func ordered(widget string) []ConditionOption {
	return []ConditionOption{
		option(OperatorIs, widget, "input-1"),
		option(OperatorLower, widget, "input-2"),
		option(OperatorGreater, widget, "input-3"),
		option(OperatorBetween, widget+".range", "input-4"),
	}
}

// DefaultCatalogSpec returns the table content of DefaultCatalog.
// The returned value is a fresh copy and may be modified to derive custom catalogs.
func DefaultCatalogSpec() CatalogSpec {
	return CatalogSpec{
		StaticFields: []StaticField{
			{Slug: KindPrice, Label: "Price", Type: KindPrice},
			{Slug: KindCategory, Label: "Category", Type: KindCategory},
			{Slug: KindCollection, Label: "Collection", Type: KindCollection},
			{Slug: KindChannel, Label: "Channel", Type: KindChannel},
			{Slug: KindProductType, Label: "Product type", Type: KindProductType},
			{Slug: KindIsAvailable, Label: "Is available", Type: KindIsAvailable},
			{Slug: KindIsPublished, Label: "Is published", Type: KindIsPublished},
			{Slug: KindIsVisibleInListing, Label: "Visible in listing", Type: KindIsVisibleInListing},
			{Slug: KindHasCategory, Label: "Has category", Type: KindHasCategory},
			{Slug: KindGiftCard, Label: "Has gift card", Type: KindGiftCard},
		},
		Conditions: map[string][]ConditionOption{
			KindCategory:           isOrIn(),
			KindProductType:        isOrIn(),
			KindChannel:            isOrIn(),
			KindCollection:         onlyIn(),
			KindPrice:              ordered("price"),
			KindIsAvailable:        onlyIsSelect(),
			KindIsPublished:        onlyIsSelect(),
			KindIsVisibleInListing: onlyIsSelect(),
			KindHasCategory:        onlyIsSelect(),
			KindGiftCard:           onlyIsSelect(),

			AttributeDropdown:    isOrIn(),
			AttributeMultiselect: onlyIn(),
			AttributeSwatch:      onlyIn(),
			AttributeReference:   onlyIn(),
			AttributeBoolean:     onlyIsSelect(),
			AttributeNumeric:     ordered("number"),
			AttributeDate:        ordered("date"),
			AttributeDateTime:    ordered("datetime"),
		},
		Constraints: map[string]ConstraintSpec{
			KindChannel: {
				DependsOn: []string{KindPrice, KindIsVisibleInListing, KindIsAvailable, KindIsPublished},
				Disabled:  []string{"left", "condition"},
				Removable: false,
			},
		},
	}
}
