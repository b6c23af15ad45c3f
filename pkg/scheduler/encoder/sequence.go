package encoder

import (
	"fmt"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/paiban/rostergen/pkg/model"
)

// Sequence attaches every component-E clause: the global consecutive-work
// ceiling, consecutive-holiday patterns, consecutive-work patterns (both
// the full-alphabet and day-shift-only variants), and the global
// consecutive-shift run counter. Grounded on
// original_source/app/generator/sequence_library.py's SequenceLibrary.
func Sequence(c *Context) {
	consecutiveWorkLimit(c)
	consecutiveHolidayPattern(c)
	consecutiveWorkPattern(c)
	globalConsecutiveShift(c)
}

// consecutiveWorkLimit forbids any run of consecutiveWorkLimit+1 working
// days (every code but 公), per staff, via a sliding sum window —
// add_consecutive_work_limit's constraint #4.
func consecutiveWorkLimit(c *Context) {
	limit := c.Global.ConsecutiveWorkLimit
	if limit <= 0 {
		return
	}
	working := model.WorkingCodes()
	days := c.Month.Days
	for i := range c.Staff {
		for start := 1; start+limit <= days; start++ {
			var vars []cpmodel.BoolVar
			for d := start; d <= start+limit; d++ {
				for _, code := range working {
					vars = append(vars, c.Var(i, d, code))
				}
			}
			c.M.AtMost(vars, int64(limit))
		}
	}
}

// consecutiveRunIndicator reifies "at(day)..at(day+length-1) are all
// true, and the day before (if any) and the day after the run (if any)
// are false" — the is_pattern/is_exact_pattern construction
// add_holiday_pattern_constraint and add_consecutive_work_pattern both
// repeat per candidate window.
func consecutiveRunIndicator(c *Context, at func(d int) cpmodel.BoolVar, day, length, days int, name string) cpmodel.BoolVar {
	conds := make([]cpmodel.BoolVar, 0, length+2)
	for k := 0; k < length; k++ {
		conds = append(conds, at(day+k))
	}
	if day > 1 {
		conds = append(conds, at(day-1).Not())
	}
	if day+length <= days {
		conds = append(conds, at(day+length).Not())
	}
	ind := c.M.Builder().NewBoolVar().WithName(name)
	c.M.ReifyAllTrue(conds, ind)
	return ind
}

// consecutiveHolidayPattern handles per-staff "consecutive-holiday" plus
// the global variant (times=="全員", applied to every staff not excluded
// from the global rule — add_global_holiday_pattern_constraint converts
// 推奨/回避 to 愛好/嫌悪 before delegating to the same per-staff logic).
func consecutiveHolidayPattern(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryConsecutiveHoliday {
				continue
			}
			applyHolidayPattern(c, i, cons)
		}
	}
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryConsecutiveHoliday || cons.Times != "全員" {
			continue
		}
		converted := cons
		if converted.SubCategory == "推奨" {
			converted.SubCategory = "愛好"
		} else {
			converted.SubCategory = "嫌悪"
		}
		for i, s := range c.Staff {
			if s.GlobalRuleExcluded {
				continue
			}
			applyHolidayPattern(c, i, converted)
		}
	}
}

func applyHolidayPattern(c *Context, i int, cons model.Constraint) {
	baseDays, ok := model.KanjiToInt(cons.Count)
	if !ok {
		baseDays = 1
	}
	like := cons.SubCategory == "愛好" || cons.SubCategory == "推奨"
	at := func(d int) cpmodel.BoolVar { return c.Var(i, d, model.CodeRest) }
	days := c.Month.Days

	if cons.Kind == model.Mandatory {
		switch cons.Target {
		case "丁度":
			if !like {
				for d := 1; d+baseDays-1 <= days; d++ {
					ind := consecutiveRunIndicator(c, at, d, baseDays, days, fmt.Sprintf("holiday_exact_ban_%d_d%d_n%d", i, d, baseDays))
					c.M.Forbid(ind)
				}
				return
			}
			var patternVars []cpmodel.BoolVar
			for d := 1; d+baseDays-1 <= days; d++ {
				ind := consecutiveRunIndicator(c, at, d, baseDays, days, fmt.Sprintf("holiday_exact_%d_d%d_n%d", i, d, baseDays))
				patternVars = append(patternVars, ind)
			}
			target := c.Staff[i].HolidayTarget(c.Global) / baseDays
			if target > 0 {
				c.M.Equal(patternVars, int64(target))
			}
		case "以下":
			if !like {
				for length := 1; length <= baseDays; length++ {
					for d := 1; d+length-1 <= days; d++ {
						ind := consecutiveRunIndicator(c, at, d, length, days, fmt.Sprintf("holiday_atmost_ban_%d_d%d_n%d", i, d, length))
						c.M.Forbid(ind)
					}
				}
				return
			}
			for d := 1; d+baseDays <= days; d++ {
				var run []cpmodel.BoolVar
				for k := 0; k <= baseDays; k++ {
					run = append(run, at(d+k))
				}
				c.M.AtMost(run, int64(baseDays))
			}
		case "以上":
			if !like {
				for d := 1; d+baseDays-1 <= days; d++ {
					var run []cpmodel.BoolVar
					for k := 0; k < baseDays; k++ {
						run = append(run, at(d+k))
					}
					c.M.AtMost(run, int64(baseDays-1))
				}
				return
			}
			for length := 1; length < baseDays; length++ {
				for d := 1; d+length-1 <= days; d++ {
					ind := consecutiveRunIndicator(c, at, d, length, days, fmt.Sprintf("holiday_short_%d_d%d_n%d", i, d, length))
					c.M.Forbid(ind)
				}
			}
		}
		return
	}

	sign := int64(1)
	if !like {
		sign = -1
	}
	for _, n := range patternLengthRange(cons.Target, baseDays, 7) {
		for d := 1; d+n-1 <= days; d++ {
			ind := consecutiveRunIndicator(c, at, d, n, days, fmt.Sprintf("holiday_pref_%d_d%d_n%d", i, d, n))
			c.M.AddObjectiveTerm(ind, sign*int64(cons.Weight))
		}
	}
}

// patternLengthRange resolves a comparator ("以下"/"以上"/"丁度") and a
// kanji base-length into the concrete run lengths a Preference pass
// rewards/penalizes, capped at maxLength (the original's
// MAX_HOLIDAY_CONSECUTIVE/consecutive_work_limit ceiling).
func patternLengthRange(comparator string, base, maxLength int) []int {
	switch comparator {
	case "以下":
		out := make([]int, base)
		for k := range out {
			out[k] = k + 1
		}
		return out
	case "以上":
		if base > maxLength {
			return []int{base}
		}
		out := make([]int, 0, maxLength-base+1)
		for n := base; n <= maxLength; n++ {
			out = append(out, n)
		}
		return out
	default:
		return []int{base}
	}
}

// consecutiveWorkPattern handles both "consecutive-work" (over
// WorkingCodes, i.e. every code but 公) and "day-only-consecutive-work"
// (over {▲,日,▼} only) — add_consecutive_work_pattern, dispatched per
// category for its own target-shift set.
func consecutiveWorkPattern(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			switch cons.Category {
			case model.CategoryConsecutiveWork:
				applyWorkPattern(c, i, cons, model.WorkingCodes())
			case model.CategoryDayOnlyConsecutive:
				applyWorkPattern(c, i, cons, model.DayShiftCodes())
			}
		}
	}
}

func applyWorkPattern(c *Context, i int, cons model.Constraint, targetCodes []model.Code) {
	baseDays, ok := model.KanjiToInt(cons.Count)
	if !ok {
		baseDays = 1
	}
	like := cons.SubCategory == "愛好" || cons.SubCategory == "推奨"
	at := func(d int) cpmodel.BoolVar {
		return workDayIndicator(c, i, d, targetCodes)
	}
	days := c.Month.Days
	maxConsecutive := c.Global.ConsecutiveWorkLimit
	if maxConsecutive <= 0 {
		maxConsecutive = baseDays
	}

	if cons.Kind == model.Mandatory {
		switch cons.Target {
		case "丁度":
			if like {
				var patternVars []cpmodel.BoolVar
				for d := 1; d+baseDays-1 <= days; d++ {
					ind := consecutiveRunIndicator(c, at, d, baseDays, days, fmt.Sprintf("work_exact_%d_d%d_n%d", i, d, baseDays))
					patternVars = append(patternVars, ind)
				}
				workDays := days - c.Staff[i].HolidayTarget(c.Global)
				if target := workDays / baseDays; target > 0 {
					c.M.Equal(patternVars, int64(target))
				}
			} else {
				for d := 1; d+baseDays-1 <= days; d++ {
					ind := consecutiveRunIndicator(c, at, d, baseDays, days, fmt.Sprintf("work_exact_ban_%d_d%d_n%d", i, d, baseDays))
					c.M.Forbid(ind)
				}
			}
		case "以下":
			if like {
				for d := 1; d+baseDays <= days; d++ {
					var run []cpmodel.BoolVar
					for k := 0; k <= baseDays; k++ {
						run = append(run, at(d+k))
					}
					c.M.AtMost(run, int64(baseDays))
				}
			} else {
				for length := 1; length <= baseDays; length++ {
					for d := 1; d+length-1 <= days; d++ {
						ind := consecutiveRunIndicator(c, at, d, length, days, fmt.Sprintf("work_atmost_ban_%d_d%d_n%d", i, d, length))
						c.M.Forbid(ind)
					}
				}
			}
		case "以上":
			if !like {
				for d := 1; d+baseDays-1 <= days; d++ {
					var run []cpmodel.BoolVar
					for k := 0; k < baseDays; k++ {
						run = append(run, at(d+k))
					}
					c.M.AtMost(run, int64(baseDays-1))
				}
			} else {
				for length := 1; length < baseDays; length++ {
					for d := 1; d+length-1 <= days; d++ {
						ind := consecutiveRunIndicator(c, at, d, length, days, fmt.Sprintf("work_short_ban_%d_d%d_n%d", i, d, length))
						c.M.Forbid(ind)
					}
				}
			}
		}
		return
	}

	sign := int64(1)
	if !like {
		sign = -1
	}
	for _, n := range patternLengthRange(cons.Target, baseDays, maxConsecutive) {
		for d := 1; d+n-1 <= days; d++ {
			ind := consecutiveRunIndicator(c, at, d, n, days, fmt.Sprintf("work_pref_%d_d%d_n%d", i, d, n))
			c.M.AddObjectiveTerm(ind, sign*int64(cons.Weight))
		}
	}
}

// workDayIndicator reifies "staff i is on one of targetCodes on day d".
// Every call builds a fresh indicator; calls for the same (staff, day)
// from overlapping windows do not share one. The name is keyed by the
// first code in the set plus day/staff.
func workDayIndicator(c *Context, i, d int, codes []model.Code) cpmodel.BoolVar {
	vars := make([]cpmodel.BoolVar, len(codes))
	for k, code := range codes {
		vars[k] = c.Var(i, d, code)
	}
	ind := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("work_day_%d_d%d_%s", i, d, codes[0]))
	c.M.Builder().AddBoolOr(vars...).OnlyEnforceIf(ind)
	negs := make([]cpmodel.BoolVar, len(vars))
	for k, v := range vars {
		negs[k] = v.Not()
	}
	c.M.Builder().AddBoolAnd(negs...).OnlyEnforceIf(ind.Not())
	return ind
}

// globalConsecutiveShift handles "consecutive-shift": a global rule
// bounding (or rewarding) runs of a single code (commonly 夜勤/／, hence
// "global night consecutive-shift"), mirroring add_global_consecutive_shift.
func globalConsecutiveShift(c *Context) {
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryConsecutiveShift {
			continue
		}
		code, ok := c.NormalizeCode(cons.Target)
		if !ok {
			continue
		}
		n, ok := model.KanjiToInt(cons.Count)
		if !ok {
			continue
		}
		atLeast := cons.Final == "以上"
		days := c.Month.Days
		for i := range c.Staff {
			if c.Staff[i].GlobalRuleExcluded {
				continue
			}
			at := func(d int) cpmodel.BoolVar { return c.Var(i, d, code) }
			if cons.Kind == model.Mandatory {
				if atLeast {
					for length := 1; length < n; length++ {
						for d := 1; d+length-1 <= days; d++ {
							ind := consecutiveRunIndicator(c, at, d, length, days, fmt.Sprintf("global_shift_short_ban_%d_d%d_n%d", i, d, length))
							c.M.Forbid(ind)
						}
					}
				} else {
					for d := 1; d+n-1 <= days; d++ {
						ind := consecutiveRunIndicator(c, at, d, n, days, fmt.Sprintf("global_shift_exact_ban_%d_d%d_n%d", i, d, n))
						c.M.Forbid(ind)
					}
				}
				continue
			}
			for d := 1; d+n-1 <= days; d++ {
				ind := consecutiveRunIndicator(c, at, d, n, days, fmt.Sprintf("global_shift_pref_%d_d%d_n%d", i, d, n))
				c.M.AddObjectiveTerm(ind, int64(cons.Weight))
			}
		}
	}
}
