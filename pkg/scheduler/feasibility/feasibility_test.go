package feasibility

import (
	"testing"

	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/model"
)

func newTestMonth(t *testing.T) *model.Month {
	t.Helper()
	m, err := model.NewMonth(2026, 7, model.Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	return m
}

func wantCheck(t *testing.T, err *apperrors.AppError, wantCode string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Check() = nil, want a rejection tagged %q", wantCode)
	}
	if got, _ := err.Fields["check"].(string); got != wantCode {
		t.Errorf("Check() tagged %q, want %q (details: %s)", got, wantCode, err.Details)
	}
}

func TestCheck_EmptyStaff(t *testing.T) {
	month := newTestMonth(t)
	global := &model.GlobalRule{}
	err := Check(nil, global, month, nil)
	wantCheck(t, err, "B1")
}

func TestCheck_MinMaxInverted(t *testing.T) {
	month := newTestMonth(t)
	global := &model.GlobalRule{}
	staff := []*model.Staff{
		{Name: "田中", ShiftCounts: map[model.Code]model.Range{
			model.CodeEarly: {Min: 10, Max: 2},
		}},
	}
	err := Check(staff, global, month, nil)
	wantCheck(t, err, "B2")
}

func TestCheck_PairingReferencesUnknownStaff(t *testing.T) {
	month := newTestMonth(t)
	global := boundedGlobal()
	tanaka := wideBoundedStaff("田中", month)
	tanaka.Constraints = []model.Constraint{
		{Kind: model.Mandatory, Category: model.CategoryPairing, SubCategory: "存在しない人", Weight: 100},
	}
	staff := []*model.Staff{tanaka, wideBoundedStaff("鈴木", month)}
	err := Check(staff, global, month, nil)
	wantCheck(t, err, "P4")
}

func wideBoundedStaff(name string, month *model.Month) *model.Staff {
	return &model.Staff{
		Name: name,
		ShiftCounts: map[model.Code]model.Range{
			model.CodeEarly:   {Min: 0, Max: month.Days},
			model.CodeDay:     {Min: 0, Max: month.Days},
			model.CodeLate:    {Min: 0, Max: month.Days},
			model.CodeNightIn: {Min: 0, Max: 0},
		},
	}
}

// boundedGlobal is a global rule loose enough that the B1-B7 checks pass
// for the wideBoundedStaff fixtures, so a test reaches the P check it
// targets (with a zero RequiredPerDay, B4 rejects any working day).
func boundedGlobal() *model.GlobalRule {
	return &model.GlobalRule{
		HolidayCount:         8,
		ConsecutiveWorkLimit: 5,
		RequiredPerDay: model.RequiredPerDay{
			Early:      model.Range{Min: 0, Max: 1},
			DayWeekday: model.Range{Min: 0, Max: 1},
			DaySunday:  model.Range{Min: 0, Max: 1},
			Late:       model.Range{Min: 0, Max: 1},
			Night:      model.Range{Min: 0, Max: 1},
		},
	}
}

func TestCheck_NightMaxZeroVsPinnedNightOut(t *testing.T) {
	month := newTestMonth(t)
	global := boundedGlobal()
	staff := []*model.Staff{wideBoundedStaff("田中", month)}
	hopes := []model.HopeEntry{{Staff: "田中", Day: 3, Code: model.CodeNightOut}}
	err := Check(staff, global, month, hopes)
	wantCheck(t, err, "P6")
}

func TestCheck_NightPatternBrokenInHopes(t *testing.T) {
	month := newTestMonth(t)
	global := boundedGlobal()
	staff := []*model.Staff{wideBoundedStaff("田中", month)}
	staff[0].ShiftCounts[model.CodeNightIn] = model.Range{Min: 0, Max: month.Days}
	// Night-in on day 5 demands night-out on day 6; pin something else instead.
	hopes := []model.HopeEntry{
		{Staff: "田中", Day: 5, Code: model.CodeNightIn},
		{Staff: "田中", Day: 6, Code: model.CodeDay},
	}
	err := Check(staff, global, month, hopes)
	wantCheck(t, err, "P5")
}

// A generously-bounded single-staff, full-month scenario that should
// clear every static check — the "nothing to reject" control case.
func TestCheck_FeasibleScenarioPasses(t *testing.T) {
	month, err := model.NewMonth(2026, 7, model.Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	global := &model.GlobalRule{
		HolidayCount:         8,
		ConsecutiveWorkLimit: 5,
		RequiredPerDay: model.RequiredPerDay{
			Early:      model.Range{Min: 0, Max: 1},
			DayWeekday: model.Range{Min: 0, Max: 1},
			DaySunday:  model.Range{Min: 0, Max: 1},
			Late:       model.Range{Min: 0, Max: 1},
			Night:      model.Range{Min: 0, Max: 1},
		},
	}
	staff := []*model.Staff{
		{
			Name: "田中",
			ShiftCounts: map[model.Code]model.Range{
				model.CodeEarly: {Min: 0, Max: month.Days},
				model.CodeDay:   {Min: 0, Max: month.Days},
				model.CodeLate:  {Min: 0, Max: month.Days},
			},
		},
	}
	if aerr := Check(staff, global, month, nil); aerr != nil {
		t.Errorf("Check() rejected a feasible scenario: %s", aerr.Error())
	}
}
