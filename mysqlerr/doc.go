/*
Package mysqlerr classifies MySQL server error codes into a small set of typed errors.

The registry of recognised codes is fixed at build time. Use Classify to look up a code
and errors.Is with one of the Kind values to test an error chain:

	if errors.Is(err, mysqlerr.LockDeadlock) {
		// try the transaction again
	}

See https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
*/
package mysqlerr
