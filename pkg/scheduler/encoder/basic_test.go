package encoder

import (
	"testing"
	"time"

	"github.com/paiban/rostergen/internal/config"
	"github.com/paiban/rostergen/pkg/model"
	"github.com/paiban/rostergen/pkg/notify"
	"github.com/paiban/rostergen/pkg/scheduler/cpsat"
)

func tinyMonth(t *testing.T) *model.Month {
	t.Helper()
	m, err := model.NewMonth(2026, 7, model.Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	return m
}

func buildContext(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) (*cpsat.Model, *Context) {
	m := cpsat.New()
	BuildAssignmentVariables(m, staff, month)
	c := NewContext(m, staff, global, month, hopes, config.DefaultWeightConfig(), notify.NewSink(), "test-run")
	return m, c
}

func TestBasic_OneCodePerDayIsSatisfiable(t *testing.T) {
	month := tinyMonth(t)
	global := &model.GlobalRule{
		HolidayCount: 0,
		RequiredPerDay: model.RequiredPerDay{
			Early:      model.Range{Min: 0, Max: 1},
			DayWeekday: model.Range{Min: 0, Max: 1},
			DaySunday:  model.Range{Min: 0, Max: 1},
			Late:       model.Range{Min: 0, Max: 1},
			Night:      model.Range{Min: 0, Max: 0},
		},
	}
	staff := []*model.Staff{
		{Name: "田中", ShiftCounts: map[model.Code]model.Range{
			model.CodeEarly: {Min: 0, Max: month.Days},
			model.CodeDay:   {Min: 0, Max: month.Days},
			model.CodeLate:  {Min: 0, Max: month.Days},
		}},
	}

	m, c := buildContext(staff, global, month, nil)
	Basic(c)

	result, err := m.Solve(cpsat.Params{MaxSearchTime: 5 * time.Second, NumWorkers: 1})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != cpsat.StatusOptimal && result.Status != cpsat.StatusFeasible {
		t.Fatalf("Solve() status = %v, want a usable solution", result.Status)
	}

	for d := 1; d <= month.Days; d++ {
		count := 0
		for _, code := range model.FullAlphabet() {
			if result.BooleanValue(c.Var(0, d, code)) {
				count++
			}
		}
		if count != 1 {
			t.Errorf("day %d: %d codes are true, want exactly 1", d, count)
		}
	}
}

func TestBasic_HopeEntryFixesAssignment(t *testing.T) {
	month := tinyMonth(t)
	global := &model.GlobalRule{
		HolidayCount: 1,
		RequiredPerDay: model.RequiredPerDay{
			Early:      model.Range{Min: 0, Max: 1},
			DayWeekday: model.Range{Min: 0, Max: 1},
			DaySunday:  model.Range{Min: 0, Max: 1},
			Late:       model.Range{Min: 0, Max: 1},
		},
	}
	staff := []*model.Staff{
		{Name: "田中", ShiftCounts: map[model.Code]model.Range{
			model.CodeEarly: {Min: 0, Max: month.Days},
			model.CodeDay:   {Min: 0, Max: month.Days},
			model.CodeLate:  {Min: 0, Max: month.Days},
			model.CodeRest:  {Min: 0, Max: month.Days},
		}},
	}
	hopes := []model.HopeEntry{{Staff: "田中", Day: 2, Code: model.CodeRest}}

	m, c := buildContext(staff, global, month, hopes)
	Basic(c)

	result, err := m.Solve(cpsat.Params{MaxSearchTime: 5 * time.Second, NumWorkers: 1})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if result.Status != cpsat.StatusOptimal && result.Status != cpsat.StatusFeasible {
		t.Fatalf("Solve() status = %v, want a usable solution", result.Status)
	}
	if !result.BooleanValue(c.Var(0, 2, model.CodeRest)) {
		t.Error("hope entry pinning day 2 to 公 was not honored by the solution")
	}
}

func TestUnderscoreDiscipline_ForbidsUnset(t *testing.T) {
	month := tinyMonth(t)
	global := &model.GlobalRule{
		RequiredPerDay: model.RequiredPerDay{
			Early: model.Range{Min: 0, Max: 1}, DayWeekday: model.Range{Min: 0, Max: 1},
			DaySunday: model.Range{Min: 0, Max: 1}, Late: model.Range{Min: 0, Max: 1},
		},
	}
	staff := []*model.Staff{{Name: "田中", ShiftCounts: map[model.Code]model.Range{
		model.CodeEarly: {Min: 0, Max: month.Days}, model.CodeDay: {Min: 0, Max: month.Days},
		model.CodeLate: {Min: 0, Max: month.Days}, model.CodeRest: {Min: 0, Max: month.Days},
	}}}

	m, c := buildContext(staff, global, month, nil)
	Basic(c)

	result, err := m.Solve(cpsat.Params{MaxSearchTime: 5 * time.Second, NumWorkers: 1})
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	for d := 1; d <= month.Days; d++ {
		if result.BooleanValue(c.Var(0, d, model.CodeUnset)) {
			t.Errorf("day %d: CodeUnset is true, underscoreDiscipline should forbid it", d)
		}
	}
}
