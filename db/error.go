package db

import (
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/circleci/mysqlex/mysqlerr"
)

// Translate maps a MySQL server error to the typed error registered for its code, keeping
// err as the cause. Errors with an unregistered code, and errors that did not come from the
// MySQL server, are returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	e := &mysql.MySQLError{}
	if !errors.As(err, &e) {
		return err
	}
	kind, ok := mysqlerr.Classify(int(e.Number))
	if !ok {
		return err
	}
	return mysqlerr.New(kind, e.Message, err)
}

// Run performs a single driver call and translates its error. A successful result is
// returned untouched.
func Run[T any](op func() (T, error)) (T, error) {
	res, err := op()
	if err != nil {
		return res, Translate(err)
	}
	return res, nil
}
