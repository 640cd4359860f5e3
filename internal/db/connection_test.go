package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/D-Marc1/Simple-MySQLi/internal/fetch"
)

func newTestConnection(t *testing.T, b *fakeBackend) *Connection {
	t.Helper()
	return &Connection{db: openFakeDB(t, b)}
}

func TestQueryCursorDeliversRowsInOrder(t *testing.T) {
	conn := newTestConnection(t, &fakeBackend{
		cols: []string{"id", "name"},
		rows: [][]driver.Value{
			{int64(1), []byte("ada")},
			{int64(2), []byte("grace")},
		},
		failAfter: -1,
	})

	cursor, err := conn.Query(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)
	defer cursor.Close()

	require.Equal(t, []fetch.Column{
		{Name: "id", Ordinal: 0},
		{Name: "name", Ordinal: 1},
	}, cursor.Columns())

	row, err := cursor.Next()
	require.NoError(t, err)
	require.Equal(t, fetch.Row{int64(1), "ada"}, row) // []byte coerced to string

	row, err = cursor.Next()
	require.NoError(t, err)
	require.Equal(t, fetch.Row{int64(2), "grace"}, row)

	row, err = cursor.Next()
	require.NoError(t, err)
	require.Nil(t, row)
}

func TestQueryCursorFeedsShaper(t *testing.T) {
	conn := newTestConnection(t, &fakeBackend{
		cols: []string{"dept", "name"},
		rows: [][]driver.Value{
			{[]byte("eng"), []byte("ada")},
			{[]byte("eng"), []byte("grace")},
			{[]byte("ops"), []byte("lin")},
		},
		failAfter: -1,
	})

	cursor, err := conn.Query(context.Background(), "SELECT dept, name FROM users")
	require.NoError(t, err)
	defer cursor.Close()

	out, err := fetch.NewShaper().FetchAll(cursor, "groupCol")
	require.NoError(t, err)

	grouped := out.(*fetch.OrderedMap)
	require.Equal(t, []any{"eng", "ops"}, grouped.Keys())
	v, _ := grouped.Get("eng")
	require.Equal(t, []any{"ada", "grace"}, v.([]any))
}

func TestQueryCursorReadFailure(t *testing.T) {
	driverErr := errors.New("server has gone away")
	conn := newTestConnection(t, &fakeBackend{
		cols: []string{"id"},
		rows: [][]driver.Value{
			{int64(1)},
			{int64(2)},
		},
		failAfter: 1,
		failErr:   driverErr,
	})

	cursor, err := conn.Query(context.Background(), "SELECT id FROM users")
	require.NoError(t, err)
	defer cursor.Close()

	row, err := cursor.Next()
	require.NoError(t, err)
	require.NotNil(t, row)

	_, err = cursor.Next()
	require.Error(t, err)
}

func TestQueryAllMaterializes(t *testing.T) {
	conn := newTestConnection(t, &fakeBackend{
		cols: []string{"id", "name"},
		rows: [][]driver.Value{
			{int64(1), []byte("ada")},
			{int64(2), []byte("grace")},
		},
		failAfter: -1,
	})

	set, err := conn.QueryAll(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)
	require.Equal(t, 2, set.RowCount)
	require.Len(t, set.Columns, 2)
	require.Equal(t, "name", set.Columns[1].Name)
	require.Equal(t, 1, set.Columns[1].Ordinal)

	// Materialized sets hand out fresh single-pass cursors.
	out, err := fetch.NewShaper().FetchAll(set.Result(), "col")
	require.Error(t, err) // two columns

	out, err = fetch.NewShaper().FetchAll(set.Result(), "keyPair")
	require.NoError(t, err)
	pairs := out.(*fetch.OrderedMap)
	v, _ := pairs.Get(int64(1))
	require.Equal(t, "ada", v)
}

func TestQueryAllEmptyResult(t *testing.T) {
	conn := newTestConnection(t, &fakeBackend{
		cols:      []string{"id"},
		failAfter: -1,
	})

	set, err := conn.QueryAll(context.Background(), "SELECT id FROM users WHERE 1=0")
	require.NoError(t, err)
	require.Zero(t, set.RowCount)
	require.Empty(t, set.Rows)

	_, ok, err := fetch.NewShaper().FetchOne(set.Result(), "assoc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestQueryCancelledContext(t *testing.T) {
	conn := newTestConnection(t, &fakeBackend{cols: []string{"id"}, failAfter: -1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Query(ctx, "SELECT 1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecReportsAffectedAndInsertID(t *testing.T) {
	conn := newTestConnection(t, &fakeBackend{
		failAfter: -1,
		execs:     []execSpec{{affected: 3, insertID: 42}},
	})

	res, err := conn.Exec(context.Background(), "UPDATE users SET active = 1")
	require.NoError(t, err)
	require.Equal(t, int64(3), res.RowsAffected())
	require.Equal(t, int64(42), res.LastInsertID())
	require.Equal(t, "Rows affected: 3", res.Info())
}

func TestCacheRoundTrip(t *testing.T) {
	cache := NewCache(time.Hour)
	set := &ResultSet{RowCount: 1, Rows: [][]any{{int64(1)}}}

	cache.Set("primary", "SELECT 1", nil, set)

	got, ok := cache.Get("primary", "SELECT 1", nil)
	require.True(t, ok)
	require.Same(t, set, got)

	_, ok = cache.Get("primary", "SELECT 2", nil)
	require.False(t, ok)

	// Distinct parameters are distinct entries.
	_, ok = cache.Get("primary", "SELECT 1", []any{int64(7)})
	require.False(t, ok)

	cache.Clear()
	_, ok = cache.Get("primary", "SELECT 1", nil)
	require.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache(-time.Nanosecond)
	cache.Set("primary", "SELECT 1", nil, &ResultSet{})

	_, ok := cache.Get("primary", "SELECT 1", nil)
	require.False(t, ok)
}
