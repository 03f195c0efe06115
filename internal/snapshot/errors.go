package snapshot

import "fmt"

// SchemaError reports a structurally invalid or referentially inconsistent
// snapshot record. A SchemaError always indicates an upstream data problem;
// callers surface it unmodified rather than attempting recovery.
type SchemaError struct {
	Field  string // dotted path to the offending field, when known
	Reason string
	Err    error // underlying decode error, if any
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid snapshot: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid snapshot: %s", e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

func schemaErrorf(field, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
