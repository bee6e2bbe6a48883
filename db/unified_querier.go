package db

import (
	"context"
	"database/sql"
)

// unifiedQuerier runs every statement of the wrapped Querier through Translate. The same
// wrapper is used for the pool and for transactions.
type unifiedQuerier struct {
	q Querier
}

func (u unifiedQuerier) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return Run(func() (sql.Result, error) {
		return u.q.ExecContext(ctx, query, args...)
	})
}

func (u unifiedQuerier) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return Translate(u.q.GetContext(ctx, dest, query, args...))
}

func (u unifiedQuerier) NamedGetContext(ctx context.Context, dest interface{}, query string, arg interface{}) error {
	return Translate(u.q.NamedGetContext(ctx, dest, query, arg))
}

func (u unifiedQuerier) NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error) {
	return Run(func() (sql.Result, error) {
		return u.q.NamedExecContext(ctx, query, arg)
	})
}

func (u unifiedQuerier) SelectContext(ctx context.Context,
	dest interface{}, query string, args ...interface{}) error {

	return Translate(u.q.SelectContext(ctx, dest, query, args...))
}

func (u unifiedQuerier) NamedSelectContext(ctx context.Context,
	dest interface{}, query string, arg interface{}) error {

	return Translate(u.q.NamedSelectContext(ctx, dest, query, arg))
}
