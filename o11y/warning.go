package o11y

import (
	"errors"
)

// sentinel warning to use with errors.Is in IsWarning
var errWarning = errors.New("")

// IsWarning returns true if any error in the chain is a warning. Errors opt in by
// matching the sentinel in their Is method, see IsWarningNoUnwrap.
func IsWarning(err error) bool {
	return errors.Is(err, errWarning)
}

// IsWarningNoUnwrap returns true if err itself is the warning sentinel.
// It does not check wrapped errors, so it can be used in the Is method of other errors
// to check if they are being directly tested for warning.
func IsWarningNoUnwrap(err error) bool {
	// nolint: errorlint // This is intentionally not unwrapping, because of how it is expected to be used
	return err == errWarning
}
