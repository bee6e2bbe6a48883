package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"

	"github.com/jmoiron/sqlx"
)

// fakeServer scripts the results of statements and commits for every connection opened
// through newFakeDB.
type fakeServer struct {
	tx *fakeTx

	mu        sync.Mutex
	execErrs  []error // consumed one per exec, nil or exhausted means success
	queryErr  error
	queryRows [][]driver.Value
	beginErr  error
	execs     int
	queries   int
}

func newFakeDB(s *fakeServer) *sqlx.DB {
	if s.tx == nil {
		s.tx = &fakeTx{}
	}
	return sqlx.NewDb(sql.OpenDB(fakeConnector{s: s}), "mysql")
}

func (s *fakeServer) exec() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execs++
	if len(s.execErrs) == 0 {
		return nil
	}
	err := s.execErrs[0]
	s.execErrs = s.execErrs[1:]
	return err
}

func (s *fakeServer) counts() (execs, queries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execs, s.queries
}

type fakeConnector struct {
	driver.Connector
	s *fakeServer
}

func (c fakeConnector) Connect(context.Context) (driver.Conn, error) {
	return fakeConn{s: c.s}, nil
}

type fakeConn struct {
	driver.Conn
	s *fakeServer
}

func (c fakeConn) Begin() (driver.Tx, error) {
	if c.s.beginErr != nil {
		return nil, c.s.beginErr
	}
	// to simulate the transaction lifecycle
	// will be unlocked in Commit or Rollback
	c.s.tx.mu.Lock()
	return c.s.tx, nil
}

func (c fakeConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	if err := c.s.exec(); err != nil {
		return nil, err
	}
	return driver.RowsAffected(1), nil
}

func (c fakeConn) QueryContext(context.Context, string, []driver.NamedValue) (driver.Rows, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.queries++
	if c.s.queryErr != nil {
		return nil, c.s.queryErr
	}
	return &fakeRows{rows: c.s.queryRows}, nil
}

func (c fakeConn) Close() error {
	return nil
}

type fakeRows struct {
	rows [][]driver.Value
}

func (r *fakeRows) Columns() []string {
	return []string{"v"}
}

func (r *fakeRows) Close() error {
	return nil
}

func (r *fakeRows) Next(dest []driver.Value) error {
	if len(r.rows) == 0 {
		return io.EOF
	}
	copy(dest, r.rows[0])
	r.rows = r.rows[1:]
	return nil
}

type fakeTx struct {
	// to simulate a transaction a bit and because the
	// actual rollback calls are async in the stdlib (or sqlx) code
	mu            sync.Mutex
	commitErrs    []error
	commitCount   int
	rollBackCount int
}

func (tx *fakeTx) Commit() error {
	tx.commitCount++
	defer tx.mu.Unlock()
	if len(tx.commitErrs) == 0 {
		return nil
	}
	err := tx.commitErrs[0]
	tx.commitErrs = tx.commitErrs[1:]
	return err
}

func (tx *fakeTx) Rollback() error {
	tx.rollBackCount++
	tx.mu.Unlock()
	return nil
}

// settled waits for any in flight transaction to finish and returns the commit and rollback counts
func (tx *fakeTx) settled() (commits, rollbacks int) {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.commitCount, tx.rollBackCount
}
