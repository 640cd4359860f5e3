package db

import (
	"time"

	"github.com/D-Marc1/Simple-MySQLi/internal/fetch"
)

type Column struct {
	Ordinal  int
	Name     string
	Type     string
	Nullable bool
}

// ResultSet is a fully materialized query result, used by the export path
// and the cache. Live fetching goes through the lazy Rows cursor instead.
type ResultSet struct {
	Columns  []Column
	Rows     [][]any
	RowCount int
	Duration time.Duration
}

func (rs *ResultSet) FetchColumns() []fetch.Column {
	cols := make([]fetch.Column, len(rs.Columns))
	for i, c := range rs.Columns {
		cols[i] = fetch.Column{Name: c.Name, Ordinal: c.Ordinal}
	}
	return cols
}

// Result returns a fresh forward-only cursor over the materialized rows.
// Each call is an independent replay; the shaper still sees a single-pass
// cursor.
func (rs *ResultSet) Result() fetch.Result {
	return &setCursor{set: rs}
}

type setCursor struct {
	set *ResultSet
	pos int
}

func (c *setCursor) Columns() []fetch.Column {
	return c.set.FetchColumns()
}

func (c *setCursor) Next() (fetch.Row, error) {
	if c.pos >= len(c.set.Rows) {
		return nil, nil
	}
	row := c.set.Rows[c.pos]
	c.pos++
	return fetch.Row(row), nil
}
