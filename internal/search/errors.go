package search

import "fmt"

// ToolError reports a failed nearby search. Status is zero when no HTTP response was
// received.
type ToolError struct {
	Status int
	Detail string
	Err    error
}

func (e *ToolError) Error() string {
	msg := e.Detail
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Status > 0 {
		return fmt.Sprintf("nearby search returned %d: %s", e.Status, msg)
	}
	return "nearby search failed: " + msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}
