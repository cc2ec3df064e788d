package conditionalfilter

import (
	"errors"
)

var ErrInvalidCatalog = errors.New("invalid operand catalog")
var ErrUnknownOperandKind = errors.New("operand kind is not registered in the catalog")
var ErrNilAttributeSource = errors.New("nil attribute source supplied")
var ErrAttributeSearchFailed = errors.New("attribute search failed")
var ErrInvalidSubmission = errors.New("filter submission is not valid")
var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyTableName = errors.New("empty table name supplied")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingAttributesFailed = errors.New("querying attributes failed")
var ErrScanningDBRowFailed = errors.New("scanning db row failed")
var ErrUnsupportedOperator = errors.New("operator is not supported for this operand")
var ErrNoCompletedRows = errors.New("no completed filter rows")

// RowType classifies a non-empty row for value-editor dispatch.
type RowType = string

// RowTypeAttribute is the RowType of every row whose operand is a dynamic attribute.
const RowTypeAttribute RowType = "attribute"
