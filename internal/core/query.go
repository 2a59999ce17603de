package core

import (
	"fmt"
	"strings"
)

// WhereBuilder accumulates WHERE conditions with positional arguments for
// the dynamic listing queries. Conditions use %d for the placeholder index;
// the builder numbers them as they are added.
type WhereBuilder struct {
	conds []string
	args  []any
}

// Add appends a condition. The condition string must contain exactly one
// %d verb for the argument's placeholder.
func (w *WhereBuilder) Add(cond string, arg any) {
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)+1))
	w.args = append(w.args, arg)
}

// Clause returns the assembled " WHERE ..." fragment, or "" when no
// conditions were added.
func (w *WhereBuilder) Clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// Args returns the accumulated arguments, with extra values appended after
// the conditions (for LIMIT/OFFSET placeholders).
func (w *WhereBuilder) Args(extra ...any) []any {
	return append(append([]any{}, w.args...), extra...)
}

// NextIndex is the placeholder index the next argument would take, used to
// number LIMIT/OFFSET placeholders after the conditions.
func (w *WhereBuilder) NextIndex() int {
	return len(w.args) + 1
}
