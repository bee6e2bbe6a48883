// Package secret holds credentials so that they are not leaked through logs, spans or CLI help.
package secret

type String string

const redacted = "REDACTED"

// String implements fmt.Stringer and redacts the sensitive value.
func (s String) String() string {
	return redacted
}

// GoString implements fmt.GoStringer and redacts the sensitive value.
func (s String) GoString() string {
	return redacted
}

// Raw returns the sensitive value as a string, for building a DSN for example.
func (s String) Raw() string {
	return string(s)
}

// MarshalJSON redacts the value from span logs.
func (s String) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
