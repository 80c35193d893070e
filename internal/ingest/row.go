package ingest

// Row is one data record keyed by the header's field names, in column order.
type Row struct {
	fields []string
	values []string
}

// NewRow pairs header names with cell values. Missing trailing cells read as "".
func NewRow(fields []string, values []string) Row {
	padded := make([]string, len(fields))
	copy(padded, values)
	return Row{fields: fields, values: padded}
}

// Get returns the value stored under name and whether the column exists.
func (r Row) Get(name string) (string, bool) {
	for i, field := range r.fields {
		if field == name {
			return r.values[i], true
		}
	}
	return "", false
}

// Value returns the value stored under name or "" when absent.
func (r Row) Value(name string) string {
	value, _ := r.Get(name)
	return value
}

// Fields lists the field names in header order.
func (r Row) Fields() []string {
	return r.fields
}

// Table is the parsed content of an uploaded file.
type Table struct {
	Format Format
	Header []string
	Rows   []Row
}
