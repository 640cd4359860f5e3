package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type Connection struct {
	db  *sql.DB
	err error
}

func (c *Connection) Err() error {
	return c.err
}

// Tests the connection.
// Returns true if the connection is active.
// Will attempt up to maxAttempts to handle transient errors
func (c *Connection) TestConnection(name string, maxAttempts uint8) bool {
	var attempt uint8
	for attempt = 1; attempt <= maxAttempts; attempt++ {
		err := c.db.Ping()
		if err != nil {
			slog.Warn("Connection failed",
				"connection", name,
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"error", err,
			)
			time.Sleep(time.Second * time.Duration(attempt*2))
		} else {
			return true
		}
	}
	c.err = fmt.Errorf("connection to %s timeout", name)

	return false
}

// Query prepares and executes a statement with positional parameters,
// returning the lazy cursor. The caller owns the cursor and must Close it.
func (c *Connection) Query(ctx context.Context, query string, args ...any) (*Rows, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error preparing statement: %w", err)
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		stmt.Close()
		return nil, fmt.Errorf("error running query: %w", err)
	}

	cursor, err := newRows(stmt, rows)
	if err != nil {
		rows.Close()
		stmt.Close()
		return nil, err
	}
	return cursor, nil
}

// Exec prepares and executes a statement that returns no rows.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (*ExecResult, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing statement: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("error reading affected rows: %w", err)
	}

	// Not every driver supplies an insert id; pgx for one does not.
	insertID, err := res.LastInsertId()
	if err != nil {
		insertID = 0
	}

	return &ExecResult{rowsAffected: affected, lastInsertID: insertID}, nil
}

// QueryAll runs a query and drains the cursor into a materialized
// ResultSet, for consumers that need the whole result at once.
func (c *Connection) QueryAll(ctx context.Context, query string, args ...any) (*ResultSet, error) {
	start := time.Now()

	cursor, err := c.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	set := &ResultSet{
		Columns: cursor.Meta(),
		Rows:    make([][]any, 0, 100),
	}

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		row, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		if row == nil {
			break
		}
		set.Rows = append(set.Rows, row)
		set.RowCount++
	}

	set.Duration = time.Since(start)

	return set, nil
}
