package adapter

import (
	"testing"

	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/model"
)

func baseRequest() Request {
	return Request{
		StaffList: []RawStaff{
			{Name: "田中", Role: "正社員", IsGlobalRule: true},
		},
		Rule: RawRule{
			HolidayCount: 8, WeekdayStaff: 2, SundayStaff: 1,
			EarlyStaff: 1, LateStaff: 1, NightStaff: 0,
		},
		Year: 2026, Month: 7, Mode: "turbo",
	}
}

func TestBuildInput_RejectsEmptyStaffList(t *testing.T) {
	req := baseRequest()
	req.StaffList = nil
	_, aerr := BuildInput(req)
	if aerr == nil || aerr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("BuildInput() with no staff = %v, want INVALID_INPUT", aerr)
	}
}

func TestBuildInput_RejectsUnknownMode(t *testing.T) {
	req := baseRequest()
	req.Mode = "fast"
	_, aerr := BuildInput(req)
	if aerr == nil || aerr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("BuildInput() with mode=fast = %v, want INVALID_INPUT", aerr)
	}
}

func TestBuildInput_RejectsUnknownConstraintCategory(t *testing.T) {
	req := baseRequest()
	req.StaffList[0].Constraints = []RawConstraint{
		{Type: "必須", Category: "存在しないカテゴリ"},
	}
	_, aerr := BuildInput(req)
	if aerr == nil || aerr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("BuildInput() with an unknown category = %v, want INVALID_INPUT", aerr)
	}
}

func TestBuildInput_RejectsUnknownHopeShiftType(t *testing.T) {
	req := baseRequest()
	req.HopeEntries = []RawHopeEntry{{StaffName: "田中", Day: 1, ShiftType: "存在しない"}}
	_, aerr := BuildInput(req)
	if aerr == nil || aerr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("BuildInput() with an unknown hope shift type = %v, want INVALID_INPUT", aerr)
	}
}

func TestBuildInput_RejectsUnknownWeightKey(t *testing.T) {
	req := baseRequest()
	req.Weights = map[string]int{"no-such-weight": 5}
	_, aerr := BuildInput(req)
	if aerr == nil || aerr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("BuildInput() with an unknown weight key = %v, want INVALID_INPUT", aerr)
	}
}

func TestBuildInput_HappyPath(t *testing.T) {
	req := baseRequest()
	req.HopeEntries = []RawHopeEntry{{StaffName: "田中", Day: 1, ShiftType: "早番"}}
	req.Weights = map[string]int{"weekday-wish": 250}

	in, aerr := BuildInput(req)
	if aerr != nil {
		t.Fatalf("BuildInput() error = %s", aerr.Error())
	}
	if len(in.Staff) != 1 || in.Staff[0].Name != "田中" {
		t.Fatalf("BuildInput() staff = %+v, want one entry named 田中", in.Staff)
	}
	if in.Month.Year != 2026 || in.Month.MonthNumber != 7 {
		t.Errorf("BuildInput() month = %d-%d, want 2026-07", in.Month.Year, in.Month.MonthNumber)
	}
	if len(in.Hopes) != 1 || in.Hopes[0].Code != model.CodeEarly {
		t.Fatalf("BuildInput() hopes = %+v, want one resolved to CodeEarly", in.Hopes)
	}
	if in.Weights.WeekdayWish != 250 {
		t.Errorf("BuildInput() weights.WeekdayWish = %d, want 250 (override applied)", in.Weights.WeekdayWish)
	}
	if in.Weights.ShiftWish == 0 {
		t.Error("BuildInput() should leave un-overridden weights at their catalog default, not zero")
	}
	if in.Global.RequiredPerDay.DayWeekday.Exact() == false {
		t.Errorf("BuildInput() integer weekday_staff should resolve to an exact range, got %+v", in.Global.RequiredPerDay.DayWeekday)
	}
}

func TestFirstWeekdayOf_MatchesKnownDate(t *testing.T) {
	// 2026-07-01 is a Wednesday.
	if got := firstWeekdayOf(2026, 7); got != model.Wednesday {
		t.Errorf("firstWeekdayOf(2026,7) = %v, want %v", got, model.Wednesday)
	}
	// 2026-02-01 is a Sunday.
	if got := firstWeekdayOf(2026, 2); got != model.Sunday {
		t.Errorf("firstWeekdayOf(2026,2) = %v, want %v", got, model.Sunday)
	}
}
