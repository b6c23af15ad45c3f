package model

import "testing"

func TestHopesForStaff(t *testing.T) {
	hopes := []HopeEntry{
		{Staff: "田中", Day: 1, Code: CodeEarly},
		{Staff: "鈴木", Day: 1, Code: CodeDay},
		{Staff: "田中", Day: 2, Code: CodeLate},
	}
	got := HopesForStaff(hopes, "田中")
	if len(got) != 2 {
		t.Fatalf("HopesForStaff() returned %d entries, want 2", len(got))
	}
	if got[0].Day != 1 || got[1].Day != 2 {
		t.Errorf("HopesForStaff() did not preserve input order: %+v", got)
	}
}

func TestHopeAt(t *testing.T) {
	hopes := []HopeEntry{{Staff: "田中", Day: 3, Code: CodeNightIn}}
	h, ok := HopeAt(hopes, "田中", 3)
	if !ok || h.Code != CodeNightIn {
		t.Errorf("HopeAt() = (%+v, %v), want a match on CodeNightIn", h, ok)
	}
	if _, ok := HopeAt(hopes, "田中", 4); ok {
		t.Error("HopeAt() should report ok=false for an unpinned day")
	}
	if _, ok := HopeAt(hopes, "鈴木", 3); ok {
		t.Error("HopeAt() should report ok=false for a different staff")
	}
}
