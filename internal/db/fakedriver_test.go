package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"sync"
	"testing"
)

// A minimal database/sql driver so connection, cursor and transaction
// behavior can be tested without a running server. Each test registers its
// own backend under a unique DSN.
type execSpec struct {
	affected int64
	insertID int64
	err      error
}

type fakeBackend struct {
	cols      []string
	rows      [][]driver.Value
	failAfter int // row index at which Next fails; -1 disables
	failErr   error

	execs    []execSpec
	execPos  int
	journal  []string
	journalM sync.Mutex
}

func (b *fakeBackend) record(op string) {
	b.journalM.Lock()
	defer b.journalM.Unlock()
	b.journal = append(b.journal, op)
}

var fakeBackends = struct {
	mu   sync.Mutex
	next int
	m    map[string]*fakeBackend
}{m: make(map[string]*fakeBackend)}

func openFakeDB(t *testing.T, b *fakeBackend) *sql.DB {
	t.Helper()

	fakeBackends.mu.Lock()
	fakeBackends.next++
	dsn := fmt.Sprintf("backend-%d", fakeBackends.next)
	fakeBackends.m[dsn] = b
	fakeBackends.mu.Unlock()

	d, err := sql.Open("simplefake", dsn)
	if err != nil {
		t.Fatalf("open fake db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

type fakeDriver struct{}

func (fakeDriver) Open(dsn string) (driver.Conn, error) {
	fakeBackends.mu.Lock()
	b := fakeBackends.m[dsn]
	fakeBackends.mu.Unlock()
	if b == nil {
		return nil, fmt.Errorf("unknown fake backend %q", dsn)
	}
	return &fakeConn{backend: b}, nil
}

func init() {
	sql.Register("simplefake", fakeDriver{})
}

type fakeConn struct {
	backend *fakeBackend
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{backend: c.backend}, nil
}

func (c *fakeConn) Close() error {
	return nil
}

func (c *fakeConn) Begin() (driver.Tx, error) {
	c.backend.record("begin")
	return &fakeTx{backend: c.backend}, nil
}

type fakeTx struct {
	backend *fakeBackend
}

func (t *fakeTx) Commit() error {
	t.backend.record("commit")
	return nil
}

func (t *fakeTx) Rollback() error {
	t.backend.record("rollback")
	return nil
}

type fakeStmt struct {
	backend *fakeBackend
}

func (s *fakeStmt) Close() error {
	return nil
}

func (s *fakeStmt) NumInput() int {
	return -1
}

func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return &fakeRows{backend: s.backend}, nil
}

func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	b := s.backend
	b.record("exec")
	if b.execPos >= len(b.execs) {
		return fakeResult{affected: 1}, nil
	}
	spec := b.execs[b.execPos]
	b.execPos++
	if spec.err != nil {
		return nil, spec.err
	}
	return fakeResult{affected: spec.affected, insertID: spec.insertID}, nil
}

type fakeResult struct {
	affected int64
	insertID int64
}

func (r fakeResult) LastInsertId() (int64, error) {
	return r.insertID, nil
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.affected, nil
}

type fakeRows struct {
	backend *fakeBackend
	pos     int
}

func (r *fakeRows) Columns() []string {
	return r.backend.cols
}

func (r *fakeRows) Close() error {
	return nil
}

func (r *fakeRows) Next(dest []driver.Value) error {
	b := r.backend
	if b.failAfter >= 0 && r.pos == b.failAfter {
		return b.failErr
	}
	if r.pos >= len(b.rows) {
		return io.EOF
	}
	copy(dest, b.rows[r.pos])
	r.pos++
	return nil
}
