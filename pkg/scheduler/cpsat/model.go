// Package cpsat is a thin, domain-agnostic wrapper over
// github.com/google/or-tools' ortools/sat/go/cpmodel: it owns the
// CpModelBuilder, the x[staff,day,code] boolean-variable cube, and the
// flat objective-term list the encoders append to. Nothing here knows
// about shift codes, staff, or constraint categories — that belongs to
// pkg/scheduler/encoder, which is the only caller.
package cpsat

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

// Term is one (boolVar, weight) pair in the flat objective list — the
// shape Design Notes §9 calls for so encoders can append independently
// without a shared mutable aggregator.
type Term struct {
	Var    cpmodel.BoolVar
	Weight int64
}

// Model owns the CP-SAT builder, the assignment-variable cube, and the
// accumulated objective terms for one generation run.
type Model struct {
	builder *cpmodel.CpModelBuilder

	// vars[staffIndex][day][code] — day is 1-based, indexed [1..days].
	vars map[varKey]cpmodel.BoolVar

	objective []Term
}

type varKey struct {
	staff int
	day   int
	code  string
}

// New allocates an empty Model.
func New() *Model {
	return &Model{
		builder: cpmodel.NewCpModelBuilder(),
		vars:    make(map[varKey]cpmodel.BoolVar),
	}
}

// NewAssignmentVar creates (and remembers) the boolean variable for
// staff/day/code. Callers build the full x[s,d,c] cube once, up front,
// at model-assembly entry (spec §3, "Assignment variable lifecycle").
func (m *Model) NewAssignmentVar(staffIndex, day int, code, name string) cpmodel.BoolVar {
	v := m.builder.NewBoolVar().WithName(name)
	m.vars[varKey{staffIndex, day, code}] = v
	return v
}

// Var returns the assignment variable for (staffIndex, day, code). It
// panics on an unknown key — every encoder runs after the full variable
// cube exists, so a miss is a programming error, not a data error.
func (m *Model) Var(staffIndex, day int, code string) cpmodel.BoolVar {
	v, ok := m.vars[varKey{staffIndex, day, code}]
	if !ok {
		panic(fmt.Sprintf("cpsat: no assignment variable for staff=%d day=%d code=%q", staffIndex, day, code))
	}
	return v
}

// Builder exposes the underlying CpModelBuilder for constraint shapes
// this wrapper doesn't bother pre-packaging (reified boundary checks in
// the sequence encoder, for instance).
func (m *Model) Builder() *cpmodel.CpModelBuilder {
	return m.builder
}

// ExactlyOne requires exactly one of vars to be true.
func (m *Model) ExactlyOne(vars ...cpmodel.BoolVar) {
	m.builder.AddExactlyOne(vars...)
}

// AtMostOne requires at most one of vars to be true.
func (m *Model) AtMostOne(vars ...cpmodel.BoolVar) {
	m.builder.AddAtMostOne(vars...)
}

// Sum builds a linear expression over a set of boolean variables.
func Sum(vars ...cpmodel.BoolVar) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, v := range vars {
		expr.Add(v)
	}
	return expr
}

// WeightedVar is one (var, coefficient) pair in a weighted linear sum —
// the daily-reliability sum's `r_s * x[s,d,code]` terms.
type WeightedVar struct {
	Var   cpmodel.BoolVar
	Coeff int64
}

// WeightedSum builds a linear expression sum(coeff_i * var_i).
func WeightedSum(terms ...WeightedVar) *cpmodel.LinearExpr {
	expr := cpmodel.NewLinearExpr()
	for _, t := range terms {
		expr.AddTerm(t.Var, t.Coeff)
	}
	return expr
}

// NewIntVar creates a bounded integer variable — used for the
// daily-reliability sum, which ranges over [0, sum(r_s)].
func (m *Model) NewIntVar(lb, ub int64, name string) cpmodel.IntVar {
	return m.builder.NewIntVar(lb, ub).WithName(name)
}

// AddEqualityToExpr constrains an IntVar to equal a linear expression —
// used to bind the daily-reliability IntVar to its weighted staff sum.
func (m *Model) AddEqualityToExpr(v cpmodel.IntVar, expr *cpmodel.LinearExpr) {
	m.builder.AddEquality(v, expr)
}

// AddGreaterOrEqualConst constrains an IntVar >= n.
func (m *Model) AddGreaterOrEqualConst(v cpmodel.IntVar, n int64) {
	m.builder.AddGreaterOrEqual(v, cpmodel.NewConstant(n))
}

// ReifyAllTrue sets indicator ⟺ (every var in conds is true) — the
// "is_pattern"/"is_exact_pattern" reification the sequence encoder's
// consecutive-run detection repeats for every candidate window.
func (m *Model) ReifyAllTrue(conds []cpmodel.BoolVar, indicator cpmodel.BoolVar) {
	m.builder.AddBoolAnd(conds...).OnlyEnforceIf(indicator)
	negs := make([]cpmodel.BoolVar, len(conds))
	for i, v := range conds {
		negs[i] = v.Not()
	}
	m.builder.AddBoolOr(negs...).OnlyEnforceIf(indicator.Not())
}

// NotEqualConst constrains v != n, via a forced choice between "v <= n-1"
// and "v >= n+1" (CP-SAT has no direct inequality constraint in this
// binding's confirmed surface).
func (m *Model) NotEqualConst(v cpmodel.IntVar, n int64) {
	below := m.builder.NewBoolVar()
	above := m.builder.NewBoolVar()
	m.builder.AddLessOrEqual(v, cpmodel.NewConstant(n-1)).OnlyEnforceIf(below)
	m.builder.AddGreaterOrEqual(v, cpmodel.NewConstant(n+1)).OnlyEnforceIf(above)
	m.builder.AddBoolOr(below, above)
}

// ReifyBelowThreshold sets up the two-sided reification the Python
// original uses for a soft reliability floor: `v < n` holds exactly when
// `indicator` is true.
func (m *Model) ReifyBelowThreshold(v cpmodel.IntVar, n int64, indicator cpmodel.BoolVar) {
	m.builder.AddLessThan(v, cpmodel.NewConstant(n)).OnlyEnforceIf(indicator)
	m.builder.AddGreaterOrEqual(v, cpmodel.NewConstant(n)).OnlyEnforceIf(indicator.Not())
}

// Implies adds `if ⇒ then`: the hard implication used throughout the
// pattern and sequence encoders (night macro-pattern, shift-pattern
// transitions, interval look-back/look-ahead).
func (m *Model) Implies(if_, then cpmodel.BoolVar) {
	m.builder.AddImplication(if_, then)
}

// ImpliesFalse adds `if ⇒ ¬then`.
func (m *Model) ImpliesFalse(if_, then cpmodel.BoolVar) {
	m.builder.AddImplication(if_, then.Not())
}

// Forbid adds the unit clause `¬v` — v is never true in any solution.
func (m *Model) Forbid(v cpmodel.BoolVar) {
	m.builder.AddBoolOr(v.Not())
}

// Fix adds the unit clause `v` — v is true in every solution (hope-entry
// pinning).
func (m *Model) Fix(v cpmodel.BoolVar) {
	m.builder.AddBoolOr(v)
}

// Equal constrains sum(vars) == n.
func (m *Model) Equal(vars []cpmodel.BoolVar, n int64) {
	expr := Sum(vars...)
	m.builder.AddEquality(expr, cpmodel.NewConstant(n))
}

// AtLeast constrains sum(vars) >= n.
func (m *Model) AtLeast(vars []cpmodel.BoolVar, n int64) {
	expr := Sum(vars...)
	m.builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(n))
}

// AtMost constrains sum(vars) <= n.
func (m *Model) AtMost(vars []cpmodel.BoolVar, n int64) {
	expr := Sum(vars...)
	m.builder.AddLessOrEqual(expr, cpmodel.NewConstant(n))
}

// Between constrains lo <= sum(vars) <= hi.
func (m *Model) Between(vars []cpmodel.BoolVar, lo, hi int64) {
	expr := Sum(vars...)
	m.builder.AddGreaterOrEqual(expr, cpmodel.NewConstant(lo))
	m.builder.AddLessOrEqual(expr, cpmodel.NewConstant(hi))
}

// AddObjectiveTerm appends a (var, weight) pair to the flat objective
// list. Weight may be negative (a penalty).
func (m *Model) AddObjectiveTerm(v cpmodel.BoolVar, weight int64) {
	if weight == 0 {
		return
	}
	m.objective = append(m.objective, Term{Var: v, Weight: weight})
}

// ObjectiveTerms returns the accumulated objective list, for the driver
// to sum into a single Maximize call once every encoder has run.
func (m *Model) ObjectiveTerms() []Term {
	return m.objective
}

// finalizeObjective composes the Maximize objective from the accumulated
// term list, once, right before instantiation — encoders never call
// Maximize themselves.
func (m *Model) finalizeObjective() {
	if len(m.objective) == 0 {
		return
	}
	expr := cpmodel.NewLinearExpr()
	for _, t := range m.objective {
		expr.AddTerm(t.Var, t.Weight)
	}
	m.builder.Maximize(expr)
}
