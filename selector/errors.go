package selector

import "fmt"

// ValidationError reports a missing or malformed input detected before any
// metric computation. Field names the offending scenario field or flag.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// LookupError reports a key that is absent from a registry or calibration
// table. Kind is one of "candidate", "node", "vdd" or "qcrit".
type LookupError struct {
	Kind string
	Key  string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Key)
}
