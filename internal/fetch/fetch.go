// Package fetch converts tabular query results into the output shape a
// caller asks for: positional rows, name-keyed records, mapped objects,
// scalars, key-pair mappings or grouped buckets.
package fetch

// Column describes one column of an executed statement, in SELECT-list
// order. Ordering is significant: keyed and grouped modes treat the first
// column as the key.
type Column struct {
	Name    string
	Ordinal int
}

// Row is one result row, value-aligned with the column list.
type Row []any

// Result is the cursor surface the shaper consumes. Next returns the next
// row, or (nil, nil) once the result is exhausted. The cursor is
// forward-only and owned by a single consumer.
type Result interface {
	Columns() []Column
	Next() (Row, error)
}

// Record is a name-keyed view of one row. It keeps the original column
// order, which a plain map would lose.
type Record struct {
	cols   []Column
	values Row
}

func NewRecord(cols []Column, values Row) Record {
	return Record{cols: cols, values: values}
}

func (r Record) Len() int {
	return len(r.cols)
}

// Names returns the column names in SELECT-list order.
func (r Record) Names() []string {
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.Name
	}
	return names
}

func (r Record) Get(name string) (any, bool) {
	for i, c := range r.cols {
		if c.Name == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// Each visits the record's values in column order until fn returns false.
func (r Record) Each(fn func(name string, value any) bool) {
	for i, c := range r.cols {
		if !fn(c.Name, r.values[i]) {
			return
		}
	}
}

// Map materializes the record as a plain map, losing column order.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.cols))
	for i, c := range r.cols {
		m[c.Name] = r.values[i]
	}
	return m
}
