package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/paiban/rostergen/pkg/model"
)

// Alternative attaches component-F's two rule families: shift-interval
// recurrence constraints and the day-specific-shift restriction.
// Grounded on original_source/app/generator/alternative_library.py's
// AlternativeLibrary.add_alternative_constraint.
func Alternative(c *Context) {
	shiftInterval(c)
	daySpecificShift(c)
}

// shiftInterval dispatches per-staff CategoryShiftInterval constraints
// plus the global variant (times=="全員", applied to every staff not
// excluded from the global rule) — add_local_shift_interval_constraint
// and add_global_shift_interval_constraint.
func shiftInterval(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category == model.CategoryShiftInterval {
				applyShiftInterval(c, i, cons)
			}
		}
	}
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryShiftInterval || cons.Times != "全員" {
			continue
		}
		for i, s := range c.Staff {
			if s.GlobalRuleExcluded {
				continue
			}
			applyShiftInterval(c, i, cons)
		}
	}
}

// applyShiftInterval implements add_shift_interval_constraint: for a
// target code and an interval length n, "嫌悪" forbids the code
// recurring within n days of its own occurrence; "愛好" requires every
// occurrence after the first to have been preceded by one within the
// last n days.
func applyShiftInterval(c *Context, i int, cons model.Constraint) {
	code, ok := c.NormalizeCode(cons.Count)
	if !ok {
		return
	}
	n, err := strconv.Atoi(cons.Target)
	if err != nil || n <= 0 {
		return
	}
	days := c.Month.Days
	at := func(d int) cpmodel.BoolVar { return c.Var(i, d, code) }
	dislike := cons.SubCategory == "嫌悪"

	if cons.Kind == model.Mandatory {
		if dislike {
			for start := 1; start <= days; start++ {
				end := start + n
				if end > days {
					end = days
				}
				for check := start + 1; check <= end; check++ {
					c.M.Implies(at(start), at(check).Not())
				}
			}
			return
		}
		for d := 1; d <= days; d++ {
			var pastAll []cpmodel.BoolVar
			for p := 1; p < d; p++ {
				pastAll = append(pastAll, at(p))
			}
			hasAnyPast := reifyOr(c, pastAll, fmt.Sprintf("interval_any_past_%d_d%d", i, d))

			windowStart := d - n
			if windowStart < 1 {
				windowStart = 1
			}
			var pastWindow []cpmodel.BoolVar
			for p := windowStart; p < d; p++ {
				pastWindow = append(pastWindow, at(p))
			}
			hasPastInterval := reifyOr(c, pastWindow, fmt.Sprintf("interval_past_window_%d_d%d", i, d))

			needs := reifyAnd(c, []cpmodel.BoolVar{at(d), hasAnyPast}, fmt.Sprintf("interval_needs_%d_d%d", i, d))
			c.M.Implies(needs, hasPastInterval)
		}
		return
	}

	for start := 1; start <= days; start++ {
		end := start + n
		if end > days {
			end = days
		}
		if end <= start {
			continue
		}
		var window []cpmodel.BoolVar
		for check := start + 1; check <= end; check++ {
			window = append(window, at(check))
		}
		hasInterval := reifyOr(c, window, fmt.Sprintf("interval_window_%d_d%d", i, start))
		flag := reifyAnd(c, []cpmodel.BoolVar{at(start), hasInterval}, fmt.Sprintf("interval_flag_%d_d%d", i, start))
		if dislike {
			c.M.AddObjectiveTerm(flag, -int64(cons.Weight))
		} else {
			c.M.AddObjectiveTerm(flag, int64(cons.Weight))
		}
	}
}

// reifyOr builds a boolean var bidirectionally reified to "at least one
// of vars is true". An empty vars list reifies to permanently false.
func reifyOr(c *Context, vars []cpmodel.BoolVar, name string) cpmodel.BoolVar {
	ind := c.M.Builder().NewBoolVar().WithName(name)
	if len(vars) == 0 {
		c.M.Forbid(ind)
		return ind
	}
	c.M.Builder().AddBoolOr(vars...).OnlyEnforceIf(ind)
	negs := make([]cpmodel.BoolVar, len(vars))
	for k, v := range vars {
		negs[k] = v.Not()
	}
	c.M.Builder().AddBoolAnd(negs...).OnlyEnforceIf(ind.Not())
	return ind
}

// reifyAnd builds a boolean var bidirectionally reified to "every var in
// conds is true".
func reifyAnd(c *Context, conds []cpmodel.BoolVar, name string) cpmodel.BoolVar {
	ind := c.M.Builder().NewBoolVar().WithName(name)
	c.M.ReifyAllTrue(conds, ind)
	return ind
}

// daySpecificShift implements add_specific_day_shift_constraint: on a
// named day, a staff's assignment is restricted to the day-shift codes
// {▲,日,▼} — every other code is forbidden and one of the three is
// required.
func daySpecificShift(c *Context) {
	dayShift := model.DayShiftCodes()
	full := model.FullAlphabet()
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory || cons.Category != model.CategoryDaySpecificShift || cons.Target != "出勤" {
				continue
			}
			day, ok := parseDayLabel(cons.SubCategory)
			if !ok || day < 1 || day > c.Month.Days {
				if c.Sink != nil {
					c.Sink.Warning(fmt.Sprintf("day-specific-shift: out-of-range day %q for staff %q, skipping", cons.SubCategory, s.Name))
				}
				continue
			}
			for _, code := range full {
				if !containsCode(dayShift, code) {
					c.M.Forbid(c.Var(i, day, code))
				}
			}
			c.M.AtLeast(c.StaffVarsIn(i, day, dayShift), 1)
		}
	}
}

// parseDayLabel parses a "N日" sub-category label into its day number.
func parseDayLabel(label string) (int, bool) {
	trimmed := strings.TrimSuffix(label, "日")
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsCode(codes []model.Code, code model.Code) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
