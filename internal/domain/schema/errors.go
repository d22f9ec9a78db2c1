package schema

import (
	"fmt"
	"strings"
)

// Violation is one field-level problem found in an inbound payload. The shape
// follows the `detail` entries Meta and FastAPI-style services return.
type Violation struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError is returned when a webhook body does not match the expected shape.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Violations) == 0 {
		return "schema validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(v.Loc, "."), v.Msg))
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(msg, kind string, loc ...string) {
	e.Violations = append(e.Violations, Violation{Loc: loc, Msg: msg, Type: kind})
}
