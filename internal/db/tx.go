package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ScriptStmt is one step of a scripted transaction. MinAffected is the
// affected-row threshold below which the whole script rolls back; zero
// accepts any outcome.
type ScriptStmt struct {
	SQL         string `toml:"sql"`
	Args        []any  `toml:"args"`
	MinAffected int64  `toml:"min_affected"`
}

// TransactionError reports a transaction that was rolled back. Stmt is the
// zero-based index of the failing scripted statement, or -1 when the
// failure came from a callback.
type TransactionError struct {
	Stmt int
	Err  error
}

func (e *TransactionError) Error() string {
	if e.Stmt >= 0 {
		return fmt.Sprintf("db: transaction rolled back at statement %d: %v", e.Stmt, e.Err)
	}
	return fmt.Sprintf("db: transaction rolled back: %v", e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// RunScript executes the statements in order under one transaction.
// Autocommit is suspended for the whole span; the first failing statement,
// or one whose affected-row count is below its threshold, rolls everything
// back. Commit happens only after the last statement succeeds.
func (c *Connection) RunScript(ctx context.Context, stmts []ScriptStmt) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	for i, st := range stmts {
		res, err := tx.ExecContext(ctx, st.SQL, st.Args...)
		if err != nil {
			rollback(tx)
			return &TransactionError{Stmt: i, Err: err}
		}

		affected, err := res.RowsAffected()
		if err != nil {
			rollback(tx)
			return &TransactionError{Stmt: i, Err: err}
		}
		if affected < st.MinAffected {
			rollback(tx)
			return &TransactionError{
				Stmt: i,
				Err:  fmt.Errorf("affected %d rows, need at least %d", affected, st.MinAffected),
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

// Tx is the statement surface a WithinTx callback sees.
type Tx interface {
	Exec(query string, args ...any) (*ExecResult, error)
}

// WithinTx runs fn under one transaction boundary. A nil return commits;
// any error rolls back and comes back wrapped in a TransactionError. The
// connection is never left mid-transaction, panics included.
func (c *Connection) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(sqlTx)
			panic(p)
		}
	}()

	if err := fn(&boundTx{ctx: ctx, tx: sqlTx}); err != nil {
		rollback(sqlTx)
		return &TransactionError{Stmt: -1, Err: err}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	return nil
}

type boundTx struct {
	ctx context.Context
	tx  *sql.Tx
}

func (b *boundTx) Exec(query string, args ...any) (*ExecResult, error) {
	res, err := b.tx.ExecContext(b.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	insertID, err := res.LastInsertId()
	if err != nil {
		insertID = 0
	}
	return &ExecResult{rowsAffected: affected, lastInsertID: insertID}, nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		slog.Error("Error rolling back transaction", "error", err)
	}
}
