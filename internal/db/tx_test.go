package db

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunScriptCommitsWhenAllThresholdsMet(t *testing.T) {
	backend := &fakeBackend{
		failAfter: -1,
		execs: []execSpec{
			{affected: 1},
			{affected: 2},
		},
	}
	conn := newTestConnection(t, backend)

	err := conn.RunScript(context.Background(), []ScriptStmt{
		{SQL: "INSERT INTO audit (msg) VALUES (?)", Args: []any{"start"}, MinAffected: 1},
		{SQL: "UPDATE users SET active = 1", MinAffected: 2},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"begin", "exec", "exec", "commit"}, backend.journal)
}

func TestRunScriptRollsBackBelowThreshold(t *testing.T) {
	backend := &fakeBackend{
		failAfter: -1,
		execs: []execSpec{
			{affected: 1},
			{affected: 0},
			{affected: 5},
		},
	}
	conn := newTestConnection(t, backend)

	err := conn.RunScript(context.Background(), []ScriptStmt{
		{SQL: "INSERT INTO a VALUES (1)", MinAffected: 1},
		{SQL: "UPDATE b SET x = 1", MinAffected: 1},
		{SQL: "UPDATE c SET y = 1", MinAffected: 1},
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	require.Equal(t, 1, txErr.Stmt)

	// The third statement never ran; the rollback closed the boundary.
	require.Equal(t, []string{"begin", "exec", "exec", "rollback"}, backend.journal)
}

func TestRunScriptRollsBackOnExecError(t *testing.T) {
	boom := errors.New("duplicate key")
	backend := &fakeBackend{
		failAfter: -1,
		execs: []execSpec{
			{affected: 1},
			{err: boom},
		},
	}
	conn := newTestConnection(t, backend)

	err := conn.RunScript(context.Background(), []ScriptStmt{
		{SQL: "INSERT INTO a VALUES (1)"},
		{SQL: "INSERT INTO a VALUES (1)"},
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	require.Equal(t, 1, txErr.Stmt)
	require.ErrorIs(t, err, boom)
	require.Equal(t, "rollback", backend.journal[len(backend.journal)-1])
}

func TestWithinTxCommitsOnNil(t *testing.T) {
	backend := &fakeBackend{
		failAfter: -1,
		execs:     []execSpec{{affected: 1, insertID: 7}},
	}
	conn := newTestConnection(t, backend)

	err := conn.WithinTx(context.Background(), func(tx Tx) error {
		res, err := tx.Exec("INSERT INTO users (name) VALUES (?)", "ada")
		if err != nil {
			return err
		}
		require.Equal(t, int64(7), res.LastInsertID())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"begin", "exec", "commit"}, backend.journal)
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	backend := &fakeBackend{failAfter: -1}
	conn := newTestConnection(t, backend)

	boom := errors.New("validation failed")
	err := conn.WithinTx(context.Background(), func(tx Tx) error {
		if _, err := tx.Exec("DELETE FROM users"); err != nil {
			return err
		}
		return boom
	})

	var txErr *TransactionError
	require.ErrorAs(t, err, &txErr)
	require.Equal(t, -1, txErr.Stmt)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"begin", "exec", "rollback"}, backend.journal)
}

func TestWithinTxRollsBackOnPanic(t *testing.T) {
	backend := &fakeBackend{failAfter: -1}
	conn := newTestConnection(t, backend)

	require.Panics(t, func() {
		_ = conn.WithinTx(context.Background(), func(tx Tx) error {
			panic("boom")
		})
	})
	require.Equal(t, []string{"begin", "rollback"}, backend.journal)
}
