package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// binder is the part of sqlx.DB and sqlx.Tx needed to expand named queries.
type binder interface {
	BindNamed(query string, arg interface{}) (string, []interface{}, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

func namedGet(ctx context.Context, b binder, dest interface{}, query string, arg interface{}) error {
	namedQuery, args, err := b.BindNamed(query, arg)
	if err != nil {
		return fmt.Errorf("could not map named: %w", err)
	}
	return b.GetContext(ctx, dest, namedQuery, args...)
}

func namedSelect(ctx context.Context, b binder, dest interface{}, query string, arg interface{}) error {
	namedQuery, args, err := b.BindNamed(query, arg)
	if err != nil {
		return fmt.Errorf("could not map named: %w", err)
	}
	return b.SelectContext(ctx, dest, namedQuery, args...)
}

// eDB and eTx add the named get and select that sqlx does not provide
type eDB struct {
	*sqlx.DB
}

func (e eDB) NamedGetContext(ctx context.Context, dest interface{}, query string, arg interface{}) error {
	return namedGet(ctx, e.DB, dest, query, arg)
}

func (e eDB) NamedSelectContext(ctx context.Context, dest interface{}, query string, arg interface{}) error {
	return namedSelect(ctx, e.DB, dest, query, arg)
}

type eTx struct {
	*sqlx.Tx
}

func (e eTx) NamedGetContext(ctx context.Context, dest interface{}, query string, arg interface{}) error {
	return namedGet(ctx, e.Tx, dest, query, arg)
}

func (e eTx) NamedSelectContext(ctx context.Context, dest interface{}, query string, arg interface{}) error {
	return namedSelect(ctx, e.Tx, dest, query, arg)
}
