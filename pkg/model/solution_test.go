package model

import "testing"

func TestSolution_CodeAt(t *testing.T) {
	sol := &Solution{Assignments: []Assignment{
		{Staff: "田中", Day: 1, Code: CodeEarly},
		{Staff: "田中", Day: 2, Code: CodeRest},
	}}
	code, ok := sol.CodeAt("田中", 2)
	if !ok || code != CodeRest {
		t.Errorf("CodeAt(田中,2) = (%q, %v), want (%q, true)", code, ok, CodeRest)
	}
	if _, ok := sol.CodeAt("田中", 3); ok {
		t.Error("CodeAt() should report ok=false for a day with no assignment")
	}
}

func TestSolution_ToHopeEntries(t *testing.T) {
	sol := &Solution{Assignments: []Assignment{
		{Staff: "田中", Day: 1, Code: CodeEarly},
		{Staff: "鈴木", Day: 1, Code: CodeDay},
	}}
	hopes := sol.ToHopeEntries()
	if len(hopes) != 2 {
		t.Fatalf("ToHopeEntries() returned %d entries, want 2", len(hopes))
	}
	if hopes[0].Staff != "田中" || hopes[0].Code != CodeEarly {
		t.Errorf("ToHopeEntries()[0] = %+v, want Staff=田中 Code=%q", hopes[0], CodeEarly)
	}
}
