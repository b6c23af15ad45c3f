package adapter

import (
	"testing"

	"github.com/paiban/rostergen/pkg/model"
)

func outputTestMonth(t *testing.T) *model.Month {
	t.Helper()
	m, err := model.NewMonth(2026, 7, model.Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	return m
}

func TestBuildOutput_RejectsNilSolution(t *testing.T) {
	month := outputTestMonth(t)
	_, aerr := BuildOutput(nil, month, nil)
	if aerr == nil {
		t.Fatal("BuildOutput(nil, ...) should fail")
	}
}

func TestBuildOutput_RejectsDayOutOfRange(t *testing.T) {
	month := outputTestMonth(t)
	staff := []*model.Staff{{Name: "田中"}}
	sol := &model.Solution{Assignments: []model.Assignment{
		{Staff: "田中", Day: month.Days + 1, Code: model.CodeDay},
	}}
	_, aerr := BuildOutput(sol, month, staff)
	if aerr == nil {
		t.Fatal("BuildOutput() with an out-of-range day should fail")
	}
}

func TestBuildOutput_RejectsUnknownStaff(t *testing.T) {
	month := outputTestMonth(t)
	staff := []*model.Staff{{Name: "田中"}}
	sol := &model.Solution{Assignments: []model.Assignment{
		{Staff: "佐藤", Day: 1, Code: model.CodeDay},
	}}
	_, aerr := BuildOutput(sol, month, staff)
	if aerr == nil {
		t.Fatal("BuildOutput() referencing a staff member absent from staff should fail")
	}
}

func TestBuildOutput_FillsGridAndRows(t *testing.T) {
	month := outputTestMonth(t)
	staff := []*model.Staff{
		{Name: "田中", Role: "正社員", PartTime: false},
		{Name: "鈴木", Role: "パート", PartTime: true},
	}
	sol := &model.Solution{
		Status: model.StatusOptimal,
		Assignments: []model.Assignment{
			{Staff: "田中", Day: 1, Code: model.CodeEarly},
			{Staff: "田中", Day: 2, Code: model.CodeRest},
			{Staff: "鈴木", Day: 1, Code: model.CodeLate},
		},
	}

	out, aerr := BuildOutput(sol, month, staff)
	if aerr != nil {
		t.Fatalf("BuildOutput() error = %s", aerr.Error())
	}
	if out.Year != 2026 || out.Month != 7 {
		t.Errorf("BuildOutput() year/month = %d/%d, want 2026/7", out.Year, out.Month)
	}

	tanakaGrid, ok := out.Shifts["田中"]
	if !ok {
		t.Fatal("BuildOutput() output has no grid for 田中")
	}
	if tanakaGrid[0] != string(model.CodeEarly) {
		t.Errorf("田中 day 1 = %q, want %q", tanakaGrid[0], model.CodeEarly)
	}
	if tanakaGrid[1] != string(model.CodeRest) {
		t.Errorf("田中 day 2 = %q, want %q", tanakaGrid[1], model.CodeRest)
	}
	for day := 2; day < len(tanakaGrid); day++ {
		if tanakaGrid[day] != "" {
			t.Errorf("田中 day %d should be empty (no assignment produced), got %q", day+1, tanakaGrid[day])
		}
	}

	suzukiGrid, ok := out.Shifts["鈴木"]
	if !ok {
		t.Fatal("BuildOutput() output has no grid for 鈴木 even with no assignments beyond day 1")
	}
	if suzukiGrid[0] != string(model.CodeLate) {
		t.Errorf("鈴木 day 1 = %q, want %q", suzukiGrid[0], model.CodeLate)
	}

	if len(out.Assignments) != 3 {
		t.Fatalf("len(Assignments) = %d, want 3", len(out.Assignments))
	}
	var sawPartTimeRow bool
	for _, row := range out.Assignments {
		if row.StaffName == "鈴木" {
			sawPartTimeRow = true
			if !row.IsPartTime {
				t.Error("鈴木's row should carry is_part_time=true from the staff record")
			}
			if row.Role != "パート" {
				t.Errorf("鈴木's row role = %q, want パート", row.Role)
			}
		}
	}
	if !sawPartTimeRow {
		t.Fatal("expected an assignment row for 鈴木")
	}
}
