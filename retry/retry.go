package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/circleci/mysqlex/mysqlerr"
	"github.com/circleci/mysqlex/o11y"
)

const (
	DefaultMaxRetries = 3
	DefaultWait       = 5 * time.Second
)

var ErrInvalidPolicy = errors.New("invalid retry policy")

type Policy struct {
	// Name identifies the unit of work in spans and metrics
	Name string
	// MaxRetries is the number of attempts allowed after the first, zero means the work runs once
	MaxRetries int
	// Wait is the fixed pause between attempts
	Wait time.Duration
	// Retryable lists the kinds that may be retried, anything else fails immediately
	Retryable []mysqlerr.Kind
	// OnRetry is called before each wait. It observes the failure, a panic in it is logged
	// and otherwise ignored.
	OnRetry func(ctx context.Context, attempt int, err error)

	// timer is only for tests
	timer backoff.Timer
}

// Default retries lock wait timeouts and deadlocks three times, five seconds apart,
// logging each retry at debug level.
func Default() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Wait:       DefaultWait,
		Retryable:  []mysqlerr.Kind{mysqlerr.LockWaitTimeout, mysqlerr.LockDeadlock},
		OnRetry:    LogRetry,
	}
}

func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries %d is negative", ErrInvalidPolicy, p.MaxRetries)
	}
	if p.Wait < 0 {
		return fmt.Errorf("%w: wait %s is negative", ErrInvalidPolicy, p.Wait)
	}
	return nil
}

// IsRetryable reports whether err is one of the kinds the policy retries.
func (p Policy) IsRetryable(err error) bool {
	for _, k := range p.Retryable {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}

// LogRetry is the default OnRetry observer.
func LogRetry(ctx context.Context, attempt int, err error) {
	o11y.LogDebug(ctx, "retry: retrying",
		o11y.Field("attempt", attempt),
		o11y.Field("error", err),
	)
}

// Do runs work, retrying it as described by the policy. Attempts never overlap and the
// wait only happens between attempts.
func Do(ctx context.Context, p Policy, work func(ctx context.Context) error) (err error) {
	if err := p.Validate(); err != nil {
		return err
	}

	name := p.Name
	if name == "" {
		name = "work"
	}
	ctx, span := o11y.StartSpan(ctx, "retry: "+name)
	defer o11y.End(span, &err)
	span.RecordMetric(o11y.Timing("retry", "retry.name", "result"))
	span.RecordMetric(o11y.Count("retry.attempts", "retry.attempts", "retry.name"))
	span.AddRawField("retry.name", name)
	span.AddRawField("retry.max_retries", p.MaxRetries)

	attempts := 0
	op := func() error {
		attempts++
		err := work(ctx)
		if err != nil && !p.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, _ time.Duration) {
		p.notify(ctx, attempts, err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ConstantBackOff{Interval: p.Wait}, uint64(p.MaxRetries)),
		ctx,
	)
	err = backoff.RetryNotifyWithTimer(op, b, notify, p.timer)
	span.AddRawField("retry.attempts", attempts)
	return err
}

// Wrap returns work wrapped in Do, keeping its signature.
func Wrap[T any](p Policy, work func(ctx context.Context) (T, error)) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		var res T
		err := Do(ctx, p, func(ctx context.Context) error {
			var err error
			res, err = work(ctx)
			return err
		})
		return res, err
	}
}

func (p Policy) notify(ctx context.Context, attempt int, err error) {
	if p.OnRetry == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			_, span := o11y.StartSpan(ctx, "retry: on-retry panic")
			span.AddField("attempt", attempt)
			err := o11y.HandlePanic(ctx, span, r)
			o11y.End(span, &err)
		}
	}()
	p.OnRetry(ctx, attempt, err)
}
