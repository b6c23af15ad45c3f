// Package encoder attaches the constraint catalog (components C–F) to a
// shared CP-SAT model: one function per rule family, each reading only
// the Constraint categories/fields it owns (pkg/model's field contract)
// and appending hard clauses or (var, weight) objective terms.
package encoder

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/paiban/rostergen/internal/config"
	"github.com/paiban/rostergen/pkg/model"
	"github.com/paiban/rostergen/pkg/notify"
	"github.com/paiban/rostergen/pkg/scheduler/cpsat"
)

// Context is the shared state every encoder function reads: the CP-SAT
// model, the resolved staff list (with a stable name→index map, per
// Design Notes §9 — "resolve names to stable staff indices at
// model-assembly entry"), the month/global-rule context, hope entries,
// weight configuration, and the diagnostic sink.
type Context struct {
	M        *cpsat.Model
	Staff    []*model.Staff
	StaffIdx map[string]int
	Global   *model.GlobalRule
	Month    *model.Month
	Hopes    []model.HopeEntry
	Weights  config.WeightConfig
	Sink     *notify.Sink
	RunID    string
}

// NewContext builds an encoder Context, resolving the staff name→index
// map once.
func NewContext(m *cpsat.Model, staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry, weights config.WeightConfig, sink *notify.Sink, runID string) *Context {
	idx := make(map[string]int, len(staff))
	for i, s := range staff {
		idx[s.Name] = i
	}
	return &Context{
		M: m, Staff: staff, StaffIdx: idx, Global: global, Month: month,
		Hopes: hopes, Weights: weights, Sink: sink, RunID: runID,
	}
}

// Var returns the assignment variable for staff i, day d, code c.
func (c *Context) Var(i, d int, code model.Code) cpmodel.BoolVar {
	return c.M.Var(i, d, string(code))
}

// StaffVars returns the assignment variable for every day in the month
// for staff i and code c, in day order.
func (c *Context) StaffVars(i int, code model.Code) []cpmodel.BoolVar {
	out := make([]cpmodel.BoolVar, c.Month.Days)
	for d := 1; d <= c.Month.Days; d++ {
		out[d-1] = c.Var(i, d, code)
	}
	return out
}

// StaffVarsIn returns, per day, the assignment variables for staff i
// over a set of codes (used for "出勤"-style any-of-{▲,日,▼} checks).
func (c *Context) StaffVarsIn(i, d int, codes []model.Code) []cpmodel.BoolVar {
	out := make([]cpmodel.BoolVar, len(codes))
	for j, code := range codes {
		out[j] = c.Var(i, d, code)
	}
	return out
}

// ResolveStaff resolves a staff name to its index, warning (never
// failing) on an unknown name — the same "skip with a warning, never
// fatal" failure mode spec §4.C specifies for unknown labels.
func (c *Context) ResolveStaff(name string) (int, bool) {
	i, ok := c.StaffIdx[name]
	if !ok && c.Sink != nil {
		c.Sink.Warning(fmt.Sprintf("unknown staff name %q referenced by a constraint", name))
	}
	return i, ok
}

// NormalizeCode resolves a label to a known code, warning and reporting
// ok=false if the literal isn't in the alphabet.
func (c *Context) NormalizeCode(label string) (model.Code, bool) {
	code := model.NormalizeLabel(label)
	if !model.KnownCode(code) {
		if c.Sink != nil {
			c.Sink.Warning(fmt.Sprintf("unknown shift label %q, skipping constraint", label))
		}
		return "", false
	}
	return code, true
}
