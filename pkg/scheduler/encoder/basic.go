package encoder

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/paiban/rostergen/pkg/model"
	"github.com/paiban/rostergen/pkg/scheduler/cpsat"
)

// Basic attaches every component-C clause: one code per day, required
// staffing per shift, monthly rest count, hope entries, per-staff count
// bounds, reliability, the ☆/_ discipline, and the shift-wish preference
// pass. Grounded on
// original_source/app/generator/basic_library.py's BasicLibrary, whose
// method order this function preserves.
func Basic(c *Context) {
	oneCodePerDay(c)
	requiredStaffing(c)
	monthlyHolidays(c)
	hopeEntries(c)
	perStaffCountBounds(c)
	reliability(c)
	starDiscipline(c)
	underscoreDiscipline(c)
	shiftWishPreference(c)
}

// oneCodePerDay: Σ_code x[s,d,c] = 1 for every (staff, day).
func oneCodePerDay(c *Context) {
	for i := range c.Staff {
		for d := 1; d <= c.Month.Days; d++ {
			var vars []cpmodel.BoolVar
			for _, code := range model.FullAlphabet() {
				vars = append(vars, c.Var(i, d, code))
			}
			c.M.ExactlyOne(vars...)
		}
	}
}

// requiredStaffing: early/late/night-in/night-out exact counts per day,
// and day-count (weekday or Sunday range, half-integer tolerant).
func requiredStaffing(c *Context) {
	req := c.Global.RequiredPerDay
	for d := 1; d <= c.Month.Days; d++ {
		c.M.Equal(allStaffVars(c, d, model.CodeEarly), int64(req.Early.Min))
		c.M.Equal(allStaffVars(c, d, model.CodeLate), int64(req.Late.Min))
		c.M.Equal(allStaffVars(c, d, model.CodeNightIn), int64(req.Night.Min))
		c.M.Equal(allStaffVars(c, d, model.CodeNightOut), int64(req.Night.Min))

		dayRange := req.DayRangeFor(c.Month, d)
		dayVars := allStaffVars(c, d, model.CodeDay)
		if dayRange.Exact() {
			c.M.Equal(dayVars, int64(dayRange.Min))
		} else {
			c.M.Between(dayVars, int64(dayRange.Min), int64(dayRange.Max))
		}
	}
}

func allStaffVars(c *Context, d int, code model.Code) []cpmodel.BoolVar {
	vars := make([]cpmodel.BoolVar, len(c.Staff))
	for i := range c.Staff {
		vars[i] = c.Var(i, d, code)
	}
	return vars
}

// monthlyHolidays: per staff, Σ_day x[s,d,公] = holiday_override ?? global.holiday_count.
func monthlyHolidays(c *Context) {
	for i, s := range c.Staff {
		target := s.HolidayTarget(c.Global)
		c.M.Equal(c.StaffVars(i, model.CodeRest), int64(target))
	}
}

// hopeEntries: each fixes x[s,d,code]=1.
func hopeEntries(c *Context) {
	for _, h := range c.Hopes {
		i, ok := c.ResolveStaff(h.Staff)
		if !ok {
			continue
		}
		if h.Day < 1 || h.Day > c.Month.Days {
			continue
		}
		c.M.Fix(c.Var(i, h.Day, h.Code))
	}
}

// perStaffCountBounds: for each (label, {min,max}) in staff.shift_counts,
// min ≤ Σ_day x[s,d,code] ≤ max.
func perStaffCountBounds(c *Context) {
	for i, s := range c.Staff {
		for code, r := range s.ShiftCounts {
			if !model.KnownCode(code) {
				if c.Sink != nil {
					c.Sink.Warning(fmt.Sprintf("staff %q: unknown shift-count code %q skipped", s.Name, code))
				}
				continue
			}
			c.M.Between(c.StaffVars(i, code), int64(r.Min), int64(r.Max))
		}
	}
}

// reliability implements both the mandatory floor and the
// "reliability-target"/"shift-aptitude" preference category, sharing one
// per-day IntVar per dailyReliabilitySum (the original's
// calculate_reliability helper).
func reliability(c *Context) {
	if c.Global.WeekdayReliability != nil || c.Global.SundayReliability != nil {
		for d := 1; d <= c.Month.Days; d++ {
			sum := dailyReliabilitySum(c, d)
			target := c.Global.WeekdayReliability
			if c.Month.IsSunday(d) {
				target = c.Global.SundayReliability
			}
			if target != nil {
				c.M.AddGreaterOrEqualConst(sum, int64(*target))
			}
		}
	}

	for _, pref := range c.Global.PreferenceConstraints {
		if pref.Category != model.CategoryReliabilityTarget && pref.Category != model.CategoryShiftAptitude {
			continue
		}
		reliabilityPreference(c, pref)
	}
}

// dailyReliabilitySum builds (once per call site) the bounded IntVar
// equal to Σ_s r_s * (x[s,d,▲]+x[s,d,日]+x[s,d,▼]). Callers that need
// the same day's sum more than once should cache the result themselves —
// kept simple here since the mandatory floor and the preference pass
// each only need one day's sum at a time.
func dailyReliabilitySum(c *Context, d int) cpmodel.IntVar {
	var maxSum int64
	var terms []cpsat.WeightedVar
	for i, s := range c.Staff {
		r := int64(s.Reliability())
		maxSum += r
		for _, code := range model.DayShiftCodes() {
			terms = append(terms, cpsat.WeightedVar{Var: c.Var(i, d, code), Coeff: r})
		}
	}
	v := c.M.NewIntVar(0, maxSum, fmt.Sprintf("daily_reliability_%d", d))
	c.M.AddEqualityToExpr(v, cpsat.WeightedSum(terms...))
	return v
}

// reliabilityPreference handles one "shift-aptitude"/"reliability-target"
// preference constraint: sub_category filters to Sunday-only or
// weekday-only days (original: "日曜"/"通常"); Mandatory forces the floor,
// Preference penalizes days that fall short.
func reliabilityPreference(c *Context, pref model.Constraint) {
	target, err := parseInt(pref.Target)
	if err != nil {
		if c.Sink != nil {
			c.Sink.Warning(fmt.Sprintf("reliability-target: invalid target %q, skipping", pref.Target))
		}
		return
	}
	for d := 1; d <= c.Month.Days; d++ {
		isSunday := c.Month.IsSunday(d)
		switch pref.SubCategory {
		case "日曜":
			if !isSunday {
				continue
			}
		case "通常":
			if isSunday {
				continue
			}
		}

		sum := dailyReliabilitySum(c, d)
		if pref.Kind == model.Mandatory {
			c.M.AddGreaterOrEqualConst(sum, int64(target))
			continue
		}
		indicator := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("reliability_penalty_%d_%s", d, pref.SubCategory))
		c.M.ReifyBelowThreshold(sum, int64(target), indicator)
		c.M.AddObjectiveTerm(indicator, -int64(pref.Weight))
	}
}

// starDiscipline: ☆ may appear at (s,d) iff a hope entry pins it there —
// hopeEntries already fixes x[s,d,☆]=1 for pinned cells, and
// oneCodePerDay's ExactlyOne already forbids every other code there, so
// this only needs to forbid ☆ at every cell that ISN'T pinned.
func starDiscipline(c *Context) {
	for i, s := range c.Staff {
		for d := 1; d <= c.Month.Days; d++ {
			if h, pinned := model.HopeAt(c.Hopes, s.Name, d); pinned && h.Code == model.CodeStar {
				continue
			}
			c.M.Forbid(c.Var(i, d, model.CodeStar))
		}
	}
}

// underscoreDiscipline: forbid `_` everywhere and attach the dominating
// negative preference term.
func underscoreDiscipline(c *Context) {
	for i := range c.Staff {
		for d := 1; d <= c.Month.Days; d++ {
			v := c.Var(i, d, model.CodeUnset)
			c.M.Forbid(v)
			c.M.AddObjectiveTerm(v, int64(c.Weights.UnsetPenalty))
		}
	}
}

// shiftWishPreference: category "shift-wish", target=<code>,
// sub_category like/dislike.
func shiftWishPreference(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryShiftWish {
				continue
			}
			code, ok := c.NormalizeCode(cons.Target)
			if !ok {
				continue
			}
			bound, hasBound := s.CountRange(code)
			total := c.StaffVars(i, code)

			if cons.Kind == model.Mandatory {
				if !hasBound {
					continue
				}
				switch cons.SubCategory {
				case "愛好", "like":
					c.M.Equal(total, int64(bound.Max))
				case "嫌悪", "dislike":
					c.M.Equal(total, int64(bound.Min))
				}
				continue
			}

			sign := int64(1)
			if cons.SubCategory == "嫌悪" || cons.SubCategory == "dislike" {
				sign = -1
			}
			// ±weight * count: one objective term per day-var sums to
			// weight * Σ_day x[s,d,code], matching the "count" the
			// original computes via an explicit IntVar.
			for _, v := range total {
				c.M.AddObjectiveTerm(v, sign*int64(cons.Weight))
			}
		}
	}
}

func parseInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	return n, err
}
