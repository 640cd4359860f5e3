package fetch

import (
	"fmt"
	"strings"
)

// InvalidModeError reports a mode tag outside the operation's allowed set,
// or a mapper supplied for a mode that does not produce objects. It is
// always raised before the cursor is touched.
type InvalidModeError struct {
	Tag     string
	Op      Op
	Allowed []string
	Reason  string
}

func (e *InvalidModeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("fetch: invalid mode %q for %s: %s", e.Tag, e.Op, e.Reason)
	}
	return fmt.Sprintf("fetch: unknown mode %q for %s (allowed: %s)",
		e.Tag, e.Op, strings.Join(e.Allowed, ", "))
}

func newUnknownModeError(tag string, op Op) *InvalidModeError {
	return &InvalidModeError{Tag: tag, Op: op, Allowed: allowedTags(op)}
}

func newMapperModeError(mode Mode, op Op) *InvalidModeError {
	return &InvalidModeError{
		Tag:    mode.String(),
		Op:     op,
		Reason: "row mapper is only valid with an object fetch mode",
	}
}

// ColumnArityError reports a statement whose column count does not satisfy
// the requested mode. It is raised before any row is consumed.
type ColumnArityError struct {
	Mode  Mode
	Want  int
	Exact bool
	Got   int
}

func (e *ColumnArityError) Error() string {
	bound := "at least"
	if e.Exact {
		bound = "exactly"
	}
	noun := "columns"
	if e.Want == 1 {
		noun = "column"
	}
	return fmt.Sprintf("fetch: mode %q requires %s %d %s, statement returned %d",
		e.Mode, bound, e.Want, noun, e.Got)
}

// ExecutionError wraps a driver-level failure surfaced while reading the
// cursor. The shaper never retries; the wrapped error is preserved for
// errors.Is/As.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("fetch: cursor read failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
