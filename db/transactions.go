package db

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/circleci/mysqlex/o11y"
	"github.com/circleci/mysqlex/retry"
)

type TxManager struct {
	DB *sqlx.DB
}

func NewTxManager(db *sqlx.DB) *TxManager {
	return &TxManager{DB: db}
}

// NoTx returns a Querier that runs each statement directly on the pool.
func (s *TxManager) NoTx() Querier {
	return unifiedQuerier{q: eDB{DB: s.DB}}
}

// WithTransaction runs f in a transaction which is committed when f returns no error and
// rolled back otherwise. Begin and commit errors are translated like statement errors,
// and returned without further wrapping.
func (s *TxManager) WithTransaction(ctx context.Context, f func(context.Context, Querier) error) (err error) {
	ctx, span := o11y.StartSpan(ctx, "tx-manager: with-transaction")
	defer o11y.End(span, &err)

	tx, err := s.DB.BeginTxx(ctx, nil)
	if err != nil {
		// unwrapped, so an exhausted retry returns exactly the typed error
		span.AddRawField("begin_error", err)
		return Translate(err)
	}

	defer func() {
		p := recover()
		switch {
		case p != nil:
			// a panic occurred, record it, rollback and re-panic
			_ = o11y.HandlePanic(ctx, span, p)
			_ = tx.Rollback()
			panic(p)
		case err != nil:
			// never commit on an error
			// but don't rollback if the transaction context has been canceled
			// (the library code already handles rollback in the context canceled cases)
			if errors.Is(ctx.Err(), context.Canceled) {
				return
			}
			if rErr := tx.Rollback(); rErr != nil {
				o11y.AddField(ctx, "rollback_error", rErr)
			}
		case errors.Is(ctx.Err(), context.Canceled):
			// f may have suppressed an error but the transaction has still been cancelled
			// so report the cancellation, the library has rolled back
			err = ctx.Err()
			return
		default:
			// all good, commit
			err = Translate(tx.Commit())
		}
	}()

	err = f(ctx, unifiedQuerier{q: eTx{Tx: tx}})

	// Note that the above defer can reassign err
	return err
}

// WithRetryTransaction runs the whole transaction, from begin to commit, under the retry
// policy. A deadlock reported by any statement or by the commit replays f in a new
// transaction, so f must be safe to run more than once.
func (s *TxManager) WithRetryTransaction(ctx context.Context, p retry.Policy,
	f func(context.Context, Querier) error) error {

	if p.Name == "" {
		p.Name = "transaction"
	}
	return retry.Do(ctx, p, func(ctx context.Context) error {
		return s.WithTransaction(ctx, f)
	})
}
