/*
Package retry re-runs a unit of work when it fails with a transient MySQL error.

A Policy names the mysqlerr kinds that are worth another attempt, how many retries are
allowed and how long to wait between attempts. Any other failure is returned to the caller
straight away. When the retries are used up the error from the final attempt is returned
unchanged, so callers can still test it with errors.Is.

	err := retry.Do(ctx, retry.Default(), func(ctx context.Context) error {
		return store.UpdateWidget(ctx, w)
	})
*/
package retry
