package db

import (
	"database/sql"
	"fmt"

	"github.com/D-Marc1/Simple-MySQLi/internal/fetch"
)

// Rows is the lazy cursor handed to the shaper. It owns the prepared
// statement and the driver rows; Close releases both. Single consumer,
// forward-only.
type Rows struct {
	stmt *sql.Stmt
	rows *sql.Rows
	meta []Column
	cols []fetch.Column
}

func newRows(stmt *sql.Stmt, rows *sql.Rows) (*Rows, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("error identifying columns: %w", err)
	}

	meta := make([]Column, len(types))
	cols := make([]fetch.Column, len(types))
	for i, ct := range types {
		nullable, _ := ct.Nullable()
		typeName := ""
		if st := ct.ScanType(); st != nil {
			typeName = st.Name()
		}
		meta[i] = Column{
			Ordinal:  i,
			Name:     ct.Name(),
			Type:     typeName,
			Nullable: nullable,
		}
		cols[i] = fetch.Column{Name: ct.Name(), Ordinal: i}
	}

	return &Rows{stmt: stmt, rows: rows, meta: meta, cols: cols}, nil
}

func (r *Rows) Columns() []fetch.Column {
	return r.cols
}

// Meta returns the driver column metadata, including scan type and
// nullability, for consumers like the export styler.
func (r *Rows) Meta() []Column {
	return r.meta
}

// Next scans one row, coercing []byte values to string the way the
// executed statement's text columns are expected to read. Returns
// (nil, nil) once the result is exhausted.
func (r *Rows) Next() (fetch.Row, error) {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return nil, fmt.Errorf("error reading rows: %w", err)
		}
		return nil, nil
	}

	values := make([]any, len(r.cols))
	pointers := make([]any, len(r.cols))
	for i := range values {
		pointers[i] = &values[i]
	}

	if err := r.rows.Scan(pointers...); err != nil {
		return nil, fmt.Errorf("error scanning row: %w", err)
	}

	row := make(fetch.Row, len(values))
	for i, v := range values {
		switch v := v.(type) {
		case []byte:
			row[i] = string(v)
		default:
			row[i] = v
		}
	}
	return row, nil
}

func (r *Rows) Close() error {
	err := r.rows.Close()
	if r.stmt != nil {
		if stmtErr := r.stmt.Close(); err == nil {
			err = stmtErr
		}
	}
	return err
}

// ExecResult carries the outcome of a statement that returns no rows.
type ExecResult struct {
	rowsAffected int64
	lastInsertID int64
}

// RowsAffected reports how many rows the statement changed.
func (r *ExecResult) RowsAffected() int64 {
	return r.rowsAffected
}

// LastInsertID reports the auto-generated id of the last inserted row, or
// zero when the driver does not supply one.
func (r *ExecResult) LastInsertID() int64 {
	return r.lastInsertID
}

// Info returns a short human-readable summary of the execution.
func (r *ExecResult) Info() string {
	return fmt.Sprintf("Rows affected: %d", r.rowsAffected)
}
