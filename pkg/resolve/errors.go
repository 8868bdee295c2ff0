package resolve

import "fmt"

// UnknownReferenceError reports a natural key with no matching record that
// the resolver is not allowed to create.
type UnknownReferenceError struct {
	Kind Kind
	Key  string
}

func (e *UnknownReferenceError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}
