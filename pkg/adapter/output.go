package adapter

import (
	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/model"
)

// AssignmentRow is one flat output row — from_dict.py's ShiftEntry shape,
// reused verbatim at the output boundary (convert.py's convert_shiftdata
// builds exactly this tuple: staff_name/day/shift_type/role/is_part_time).
type AssignmentRow struct {
	StaffName  string `json:"staff_name"`
	Day        int    `json:"day"`
	ShiftType  string `json:"shift_type"`
	Role       string `json:"role"`
	IsPartTime bool   `json:"is_part_time"`
}

// Output is the §6 output document: the per-staff day-indexed grid plus
// the flat, role-annotated assignment list §4.I's output adapter also
// produces.
type Output struct {
	Year        int                  `json:"year"`
	Month       int                  `json:"month"`
	Shifts      map[string][31]string `json:"shifts"`
	Assignments []AssignmentRow      `json:"assignments"`
}

// BuildOutput converts a completed solution back to the wire document.
// Every staff in staff gets a row in Shifts even if the solver produced
// no assignment for them (31 empty strings) — a defensive floor, since
// §8's "total assignment" invariant guarantees this never actually
// happens for a FEASIBLE/OPTIMAL solution.
func BuildOutput(sol *model.Solution, month *model.Month, staff []*model.Staff) (*Output, *apperrors.AppError) {
	if sol == nil {
		return nil, apperrors.InternalFault("BuildOutput called with a nil solution", nil)
	}

	meta := make(map[string]*model.Staff, len(staff))
	shifts := make(map[string][31]string, len(staff))
	for _, s := range staff {
		meta[s.Name] = s
		shifts[s.Name] = [31]string{}
	}

	rows := make([]AssignmentRow, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		if a.Day < 1 || a.Day > month.Days {
			return nil, apperrors.InternalFault("solution assignment day out of range", nil).
				WithField("staff", a.Staff).WithField("day", a.Day)
		}
		grid, ok := shifts[a.Staff]
		if !ok {
			return nil, apperrors.InternalFault("solution references unknown staff", nil).WithField("staff", a.Staff)
		}
		grid[a.Day-1] = string(a.Code)
		shifts[a.Staff] = grid

		s := meta[a.Staff]
		rows = append(rows, AssignmentRow{
			StaffName:  a.Staff,
			Day:        a.Day,
			ShiftType:  string(a.Code),
			Role:       s.Role,
			IsPartTime: s.PartTime,
		})
	}

	return &Output{
		Year:        month.Year,
		Month:       month.MonthNumber,
		Shifts:      shifts,
		Assignments: rows,
	}, nil
}
