package cpsat

import (
	"testing"
	"time"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
)

func TestNewAssignmentVar_RoundTrips(t *testing.T) {
	m := New()
	v := m.NewAssignmentVar(0, 1, "▲", "x_0_1_▲")
	if got := m.Var(0, 1, "▲"); got != v {
		t.Error("Var() did not return the variable registered by NewAssignmentVar()")
	}
}

func TestVar_PanicsOnUnknownKey(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Var() should panic on an unregistered (staff,day,code) key")
		}
	}()
	m := New()
	m.Var(9, 9, "nope")
}

func TestAddObjectiveTerm_SkipsZeroWeight(t *testing.T) {
	m := New()
	v := m.NewAssignmentVar(0, 1, "日", "x")
	m.AddObjectiveTerm(v, 0)
	if len(m.ObjectiveTerms()) != 0 {
		t.Error("AddObjectiveTerm() with weight 0 should not be recorded")
	}
	m.AddObjectiveTerm(v, 200)
	if len(m.ObjectiveTerms()) != 1 {
		t.Fatal("AddObjectiveTerm() with a nonzero weight should be recorded")
	}
	if m.ObjectiveTerms()[0].Weight != 200 {
		t.Errorf("ObjectiveTerms()[0].Weight = %d, want 200", m.ObjectiveTerms()[0].Weight)
	}
}

func TestOneCodePerDay_Solvable(t *testing.T) {
	// Three codes for one staff/day, exactly one must be true — the
	// basic encoder's core invariant in miniature.
	m := New()
	a := m.NewAssignmentVar(0, 1, "▲", "a")
	b := m.NewAssignmentVar(0, 1, "日", "b")
	c := m.NewAssignmentVar(0, 1, "▼", "c")
	m.Equal([]cpmodel.BoolVar{a, b, c}, 1)

	result, err := m.Solve(Params{MaxSearchTime: 5 * time.Second, NumWorkers: 1})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != StatusOptimal && result.Status != StatusFeasible {
		t.Fatalf("Solve() status = %v, want OPTIMAL or FEASIBLE", result.Status)
	}

	count := 0
	for _, v := range []cpmodel.BoolVar{a, b, c} {
		if result.BooleanValue(v) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("exactly one of a/b/c should be true, got %d", count)
	}
}
