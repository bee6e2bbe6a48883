package db

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/circleci/mysqlex/mysqlerr"
	"github.com/circleci/mysqlex/o11y"
)

func TestTranslate_Classified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind mysqlerr.Kind
		msg  string
	}{
		{
			name: "deadlock",
			err:  &mysql.MySQLError{Number: 1213, Message: "Deadlock found"},
			kind: mysqlerr.LockDeadlock,
			msg:  "Deadlock found",
		},
		{
			name: "lock wait timeout",
			err:  &mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded; try restarting transaction"},
			kind: mysqlerr.LockWaitTimeout,
			msg:  "Lock wait timeout exceeded; try restarting transaction",
		},
		{
			name: "table access denied",
			err:  &mysql.MySQLError{Number: 1142, Message: "SELECT command denied to user"},
			kind: mysqlerr.TableAccessDenied,
			msg:  "SELECT command denied to user",
		},
		{
			name: "wrapped driver error",
			err:  fmt.Errorf("select widgets: %w", &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}),
			kind: mysqlerr.LockDeadlock,
			msg:  "Deadlock found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(tt.err)

			e := &mysqlerr.Error{}
			assert.Assert(t, errors.As(err, &e))
			assert.Check(t, cmp.Equal(e.Kind(), tt.kind))
			assert.Check(t, cmp.Equal(e.Code(), tt.kind.Code()))
			assert.Check(t, cmp.Equal(e.Message(), tt.msg))
			assert.Check(t, errors.Is(err, tt.kind))
			assert.Check(t, errors.Is(err, tt.err), "the driver error should be kept as the cause")
		})
	}
}

func TestTranslate_Unchanged(t *testing.T) {
	unknown := &mysql.MySQLError{Number: 9999, Message: "Unknown"}
	tests := []struct {
		name string
		err  error
	}{
		{name: "nil", err: nil},
		{name: "unregistered code", err: unknown},
		{name: "wrapped unregistered code", err: fmt.Errorf("exec: %w", unknown)},
		{name: "no rows", err: sql.ErrNoRows},
		{name: "bad conn", err: driver.ErrBadConn},
		{name: "plain", err: errors.New("Error 1213: Deadlock found")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(tt.err)
			assert.Check(t, err == tt.err, "got %v", err)
			_, ok := mysqlerr.KindOf(err)
			assert.Check(t, !ok)
		})
	}

	_, ok := mysqlerr.Classify(9999)
	assert.Check(t, !ok)
}

func TestTranslate_Warning(t *testing.T) {
	err := Translate(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'PRIMARY'"})
	assert.Check(t, errors.Is(err, mysqlerr.DuplicateEntry))
	assert.Check(t, o11y.IsWarning(err))

	err = Translate(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	assert.Check(t, !o11y.IsWarning(err))
}

func TestRun(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		res, err := Run(func() (int, error) {
			return 42, nil
		})
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(res, 42))
	})

	t.Run("classified", func(t *testing.T) {
		_, err := Run(func() (int, error) {
			return 0, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		})
		e := &mysqlerr.Error{}
		assert.Assert(t, errors.As(err, &e))
		assert.Check(t, cmp.Equal(e.Code(), 1213))
		assert.Check(t, cmp.Equal(e.Message(), "Deadlock found"))
	})

	t.Run("unclassified", func(t *testing.T) {
		orig := &mysql.MySQLError{Number: 9999, Message: "Unknown"}
		_, err := Run(func() (int, error) {
			return 0, orig
		})
		assert.Check(t, err == error(orig))
	})
}
