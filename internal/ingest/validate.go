package ingest

import (
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
)

// Column names every upload must carry.
const (
	ColumnFirstName = "FirstName"
	ColumnPhone     = "Phone"
	ColumnNotes     = "Notes"
)

// RequiredColumns is checked in this order; missing names are reported in the same order.
var RequiredColumns = []string{ColumnFirstName, ColumnPhone, ColumnNotes}

// Validate rejects tables with no data rows or a header lacking a required
// column. Only the header is inspected; short rows read as "" downstream.
func Validate(table Table) error {
	if len(table.Rows) == 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, ErrEmptyInput, "file is empty or invalid")
	}

	present := make(map[string]struct{}, len(table.Header))
	for _, name := range table.Header {
		present[name] = struct{}{}
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.Wrap(pkgerrors.CodeValidation,
			fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", ")),
			"missing required columns: "+strings.Join(missing, ", "),
		).WithDetails(map[string]any{"missing_columns": missing})
	}
	return nil
}
