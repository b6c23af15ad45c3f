// Package feasibility runs the static pre-solve contradiction checks
// component G owns: a fixed sequence of predicates over staff, the
// global rule, and hope entries, each returning on the first violation
// it finds. None of it touches CP-SAT — every check here is arithmetic
// or set-membership over the domain model, run before a model is ever
// built.
//
// Grounded on original_source/app/generator/{basic_prefix,pattern_prefix,
// sequence_prefix}.py's PrefixManager/BasicPrefix/PatternPrefix/
// SequencePrefix — the original's pre-solve "does this contradict
// itself" pass, rewritten as a flat ordered check list instead of three
// class instances calling each other.
package feasibility

import (
	"fmt"

	apperrors "github.com/paiban/rostergen/pkg/errors"
	"github.com/paiban/rostergen/pkg/model"
)

// Check runs every B/P/S predicate in the declared order and returns the
// first violation as an infeasible-input AppError, nil if every check
// passes.
func Check(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	checks := []func([]*model.Staff, *model.GlobalRule, *model.Month, []model.HopeEntry) *apperrors.AppError{
		checkNonEmptyStaff,
		checkMinMaxPerStaff,
		checkPerStaffWorkingDaysEnvelope,
		checkMonthlyTotalEnvelope,
		checkPerShiftFeasibility,
		checkPerDayFeasibility,
		checkPerStaffConfirmedFeasibility,

		checkWeekdayWishCapacity,
		checkWeekdayWishVsHope,
		checkPairingSatisfiable,
		checkStaffReferencesExist,
		checkNightPatternInHopes,
		checkNightMaxZeroVsHopes,
		checkPairOverlapVsHopes,
		checkSeparationFeasible,
		checkShiftPatternContradictions,
		checkShiftPatternFromMinToMax,
		checkGlobalShiftPatternRecommendMandatory,

		checkConsecutiveWorkInHopes,
		checkConsecutiveHolidayRangesIntersect,
		checkNightMinVsHolidayBudget,
		checkGlobalConsecutiveShiftNightPreference,
		checkConsecutiveWorkRangesIntersect,
		checkHopesVsMandatoryWorkPattern,
	}
	for _, check := range checks {
		if err := check(staff, global, month, hopes); err != nil {
			return err
		}
	}
	return nil
}

func infeasible(check, format string, args ...interface{}) *apperrors.AppError {
	return apperrors.InfeasibleInput(check, fmt.Sprintf(format, args...))
}

// --- helpers shared across checks -----------------------------------

func starCount(hopes []model.HopeEntry, staffName string) int {
	n := 0
	for _, h := range hopes {
		if h.Staff == staffName && h.Code == model.CodeStar {
			n++
		}
	}
	return n
}

// workingDays is the month's days minus the staff's holiday target minus
// its pinned ☆ days — the denominator basic_prefix.py's
// _check_shift_count_conflicts calls 出勤日数.
func workingDays(s *model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) int {
	return month.Days - s.HolidayTarget(global) - starCount(hopes, s.Name)
}

func hopesForStaffByDay(hopes []model.HopeEntry, staffName string) map[int]model.Code {
	out := make(map[int]model.Code)
	for _, h := range hopes {
		if h.Staff == staffName {
			out[h.Day] = h.Code
		}
	}
	return out
}

// --- B. Basic ---------------------------------------------------------

// B1: non-empty staff list.
func checkNonEmptyStaff(staff []*model.Staff, _ *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	if len(staff) == 0 {
		return infeasible("B1", "staff list is empty, generation cannot proceed")
	}
	return nil
}

// B2/B3: per-staff min<=max for every shift label, and the total
// min/max envelope (night counted twice) against working days —
// _check_shift_count_conflicts.
func checkMinMaxPerStaff(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		for code, r := range s.ShiftCounts {
			if r.Min > r.Max {
				return infeasible("B2", "staff %q: min(%d) > max(%d) for code %q", s.Name, r.Min, r.Max, code)
			}
		}
	}
	return checkPerStaffWorkingDaysEnvelope(staff, global, month, hopes)
}

func checkPerStaffWorkingDaysEnvelope(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		wd := workingDays(s, global, month, hopes)
		totalMin, totalMax := 0, 0
		for code, r := range s.ShiftCounts {
			weight := 1
			if code == model.CodeNightIn {
				weight = 2
			}
			totalMin += r.Min * weight
			totalMax += r.Max * weight
		}
		if totalMin > wd {
			return infeasible("B3", "staff %q: minimum shift counts sum to %d, exceeding %d working days", s.Name, totalMin, wd)
		}
		if totalMax < wd {
			return infeasible("B3", "staff %q: maximum shift counts sum to %d, short of %d working days", s.Name, totalMax, wd)
		}
	}
	return nil
}

// dayRequirement returns the [min,max] staffing envelope for a given day
// across the four fixed shift types, night counted twice (a night fills
// a ／ cell and a × cell).
func dayRequirement(global *model.GlobalRule, month *model.Month, day int) (min, max int) {
	r := global.RequiredPerDay
	d := r.DayRangeFor(month, day)
	min = r.Early.Min + r.Late.Min + 2*r.Night.Min + d.Min
	max = r.Early.Max + r.Late.Max + 2*r.Night.Max + d.Max
	return
}

// B4: monthly-total slots match required staffing within the
// half-integer tolerance — check_total_shifts.
func checkMonthlyTotalEnvelope(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	total := 0
	for _, s := range staff {
		total += workingDays(s, global, month, hopes)
	}
	minReq, maxReq := 0, 0
	for d := 1; d <= month.Days; d++ {
		dmin, dmax := dayRequirement(global, month, d)
		minReq += dmin
		maxReq += dmax
	}
	if total < minReq {
		return infeasible("B4", "total working slots (%d) are short of the minimum monthly requirement (%d)", total, minReq)
	}
	if total > maxReq {
		return infeasible("B4", "total working slots (%d) exceed the maximum monthly requirement (%d)", total, maxReq)
	}
	return nil
}

// B5: per-shift feasibility — sum-of-max across staff >= required,
// sum-of-min <= required, for Early/Late/Night-in/Day —
// _check_shift_type_requirements.
func checkPerShiftFeasibility(staff []*model.Staff, global *model.GlobalRule, month *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	type bound struct {
		code        model.Code
		reqMin      int
		reqMax      int
		doubleNight bool
	}
	r := global.RequiredPerDay
	weekdayCount, sundayCount := 0, 0
	for d := 1; d <= month.Days; d++ {
		if month.IsSunday(d) {
			sundayCount++
		} else {
			weekdayCount++
		}
	}
	dayMin := r.DayWeekday.Min*weekdayCount + r.DaySunday.Min*sundayCount
	dayMax := r.DayWeekday.Max*weekdayCount + r.DaySunday.Max*sundayCount
	bounds := []bound{
		{model.CodeEarly, r.Early.Min * month.Days, r.Early.Max * month.Days, false},
		{model.CodeLate, r.Late.Min * month.Days, r.Late.Max * month.Days, false},
		{model.CodeNightIn, r.Night.Min * month.Days, r.Night.Max * month.Days, true},
		{model.CodeDay, dayMin, dayMax, false},
	}
	for _, b := range bounds {
		sumMin, sumMax := 0, 0
		for _, s := range staff {
			cr, ok := s.CountRange(b.code)
			if !ok {
				continue
			}
			sumMin += cr.Min
			sumMax += cr.Max
		}
		if sumMax < b.reqMin {
			return infeasible("B5", "code %q: staff max counts sum to %d, short of the required %d", b.code, sumMax, b.reqMin)
		}
		if sumMin > b.reqMax {
			return infeasible("B5", "code %q: staff min counts sum to %d, exceeding the required %d", b.code, sumMin, b.reqMax)
		}
	}
	return nil
}

// B6: per-day feasibility over confirmed hope entries —
// _check_shift_constraints.
func checkPerDayFeasibility(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	r := global.RequiredPerDay
	for d := 1; d <= month.Days; d++ {
		var early, late, nightIn, nightOut, day, rest int
		for _, h := range hopes {
			if h.Day != d {
				continue
			}
			switch h.Code {
			case model.CodeEarly:
				early++
			case model.CodeLate:
				late++
			case model.CodeNightIn:
				nightIn++
			case model.CodeNightOut:
				nightOut++
			case model.CodeDay:
				day++
			case model.CodeRest, model.CodeLeave:
				rest++
			}
		}
		dayRange := r.DayRangeFor(month, d)

		if early > r.Early.Max {
			return infeasible("B6", "day %d: confirmed early-shift count (%d) exceeds required max (%d)", d, early, r.Early.Max)
		}
		if late > r.Late.Max {
			return infeasible("B6", "day %d: confirmed late-shift count (%d) exceeds required max (%d)", d, late, r.Late.Max)
		}
		if nightIn > r.Night.Max {
			return infeasible("B6", "day %d: confirmed night-in count (%d) exceeds required max (%d)", d, nightIn, r.Night.Max)
		}
		if nightOut > r.Night.Max {
			return infeasible("B6", "day %d: confirmed night-out count (%d) exceeds required max (%d)", d, nightOut, r.Night.Max)
		}
		if day > dayRange.Max {
			return infeasible("B6", "day %d: confirmed day-shift count (%d) exceeds max (%d)", d, day, dayRange.Max)
		}

		neededEarly := max0(r.Early.Min - early)
		neededLate := max0(r.Late.Min - late)
		neededNightIn := max0(r.Night.Min - nightIn)
		neededNightOut := max0(r.Night.Min - nightOut)
		neededDay := 0
		if day < dayRange.Min {
			neededDay = dayRange.Min - day
		}
		totalNeeded := neededEarly + neededLate + neededNightIn + neededNightOut + neededDay

		confirmed := early + late + nightIn + nightOut + day + rest
		remaining := len(staff) - confirmed
		if totalNeeded > remaining {
			return infeasible("B6", "day %d: remaining %d open slots cannot cover the %d still-required assignments", d, remaining, totalNeeded)
		}
	}
	return nil
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// B7: per-staff confirmed-entry feasibility — _check_staff_constraints.
func checkPerStaffConfirmedFeasibility(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		byDay := hopesForStaffByDay(hopes, s.Name)
		confirmed := make(map[model.Code]int)
		rest := 0
		for _, code := range byDay {
			confirmed[code]++
			if code == model.CodeRest || code == model.CodeLeave {
				rest++
			}
		}
		holidayLimit := s.HolidayTarget(global)

		for code, r := range s.ShiftCounts {
			if confirmed[code] > r.Max {
				return infeasible("B7", "staff %q: confirmed count for %q (%d) exceeds max (%d)", s.Name, code, confirmed[code], r.Max)
			}
		}
		if rest > holidayLimit {
			return infeasible("B7", "staff %q: confirmed rests (%d) exceed the holiday limit (%d)", s.Name, rest, holidayLimit)
		}

		remaining := month.Days - len(byDay)
		if rest+remaining < holidayLimit {
			return infeasible("B7", "staff %q: %d remaining open cells cannot cover the %d still-needed holidays", s.Name, remaining, holidayLimit-rest)
		}
		availableForWork := remaining - (holidayLimit - rest)
		for code, r := range s.ShiftCounts {
			if r.Min <= 0 {
				continue
			}
			need := r.Min - confirmed[code]
			if need <= 0 {
				continue
			}
			cost := need
			if code == model.CodeNightIn {
				cost = 2 * need
			}
			if availableForWork < cost {
				return infeasible("B7", "staff %q: %d remaining work-usable cells cannot cover %d more of code %q", s.Name, availableForWork, need, code)
			}
		}
	}
	return nil
}

// --- P. Pattern ---------------------------------------------------------

// weekdayWishDays resolves a weekday-wish constraint's Count/Target into
// the concrete days it governs — the same resolution
// encoder.weekdayWishDays performs, duplicated here in its minimal form
// since the pre-analyzer runs before any Context exists.
func weekdayWishDays(month *model.Month, cons model.Constraint) []int {
	var match func(d int) bool
	if cons.Target == "土／日" {
		match = func(d int) bool {
			wd := month.WeekdayOf(d)
			return wd == model.Saturday || wd == model.Sunday
		}
	} else if wd, ok := model.WeekdayFromLabel(cons.Target); ok {
		match = func(d int) bool { return month.WeekdayOf(d) == wd }
	} else {
		return nil
	}
	var all []int
	for d := 1; d <= month.Days; d++ {
		if match(d) {
			all = append(all, d)
		}
	}
	if cons.Count == "全て" || cons.Count == "" {
		return all
	}
	n, ok := parseOrdinalLabel(cons.Count)
	if !ok || n < 1 || n > len(all) {
		return nil
	}
	return []int{all[n-1]}
}

func parseOrdinalLabel(s string) (int, bool) {
	trimmed := s
	if len(s) > 0 {
		trimmed = trimPrefixDi(s)
	}
	return model.KanjiToInt(trimmed)
}

func trimPrefixDi(s string) string {
	const prefix = "第"
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}

// P1: weekday-wish mandatory obligations per day do not exceed that
// day's required-per-shift — one more confirmed cell than the day's max
// for the target code is a contradiction before the solver ever runs.
func checkWeekdayWishCapacity(staff []*model.Staff, global *model.GlobalRule, month *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	type dayCode struct {
		day  int
		code model.Code
	}
	counts := make(map[dayCode]int)
	for _, s := range staff {
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory || cons.Category != model.CategoryWeekdayWish || cons.SubCategory != "愛好" {
				continue
			}
			for _, d := range weekdayWishDays(month, cons) {
				code := model.NormalizeLabel(cons.Times)
				if code == "出勤" || cons.Times == "出勤" {
					continue // any-of-{▲,日,▼} obligations aren't a single-code capacity check
				}
				counts[dayCode{d, code}]++
			}
		}
	}
	for dc, n := range counts {
		_, max := dayRequirementForCode(global, month, dc.day, dc.code)
		if max >= 0 && n > max {
			return infeasible("P1", "day %d: %d mandatory weekday-wish obligations for code %q exceed the required max (%d)", dc.day, n, dc.code, max)
		}
	}
	return nil
}

func dayRequirementForCode(global *model.GlobalRule, month *model.Month, day int, code model.Code) (min, max int) {
	r := global.RequiredPerDay
	switch code {
	case model.CodeEarly:
		return r.Early.Min, r.Early.Max
	case model.CodeLate:
		return r.Late.Min, r.Late.Max
	case model.CodeNightIn, model.CodeNightOut:
		return r.Night.Min, r.Night.Max
	case model.CodeDay:
		dr := r.DayRangeFor(month, day)
		return dr.Min, dr.Max
	default:
		return 0, -1
	}
}

// P2: weekday-wish mandatory contradicts a hope entry already pinned on
// the same day.
func checkWeekdayWishVsHope(staff []*model.Staff, _ *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		byDay := hopesForStaffByDay(hopes, s.Name)
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory || cons.Category != model.CategoryWeekdayWish {
				continue
			}
			wantDislike := cons.SubCategory == "嫌悪"
			code := model.NormalizeLabel(cons.Times)
			for _, d := range weekdayWishDays(month, cons) {
				hoped, ok := byDay[d]
				if !ok {
					continue
				}
				if wantDislike && hoped == code {
					return infeasible("P2", "staff %q: day %d is pinned to %q, contradicting a mandatory weekday-wish dislike", s.Name, d, code)
				}
				if !wantDislike && code != "出勤" && hoped != code && hoped != model.CodeRest {
					return infeasible("P2", "staff %q: day %d is pinned to %q, contradicting a mandatory weekday-wish requiring %q", s.Name, d, hoped, code)
				}
			}
		}
	}
	return nil
}

// P3: pairing mandatory is satisfiable by both staff's max counts —
// neither side can hold the source/target code at all if its own max is 0.
func checkPairingSatisfiable(staff []*model.Staff, _ *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	index := make(map[string]*model.Staff, len(staff))
	for _, s := range staff {
		index[s.Name] = s
	}
	for _, s := range staff {
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory || cons.Category != model.CategoryPairing {
				continue
			}
			peer, ok := index[cons.SubCategory]
			if !ok {
				continue // P4 reports the missing-peer case
			}
			sourceCode := model.NormalizeLabel(cons.Count)
			targetCode := model.NormalizeLabel(cons.Target)
			if r, ok := s.CountRange(sourceCode); ok && r.Max == 0 {
				return infeasible("P3", "staff %q: mandatory pairing with %q requires code %q, but its own max is 0", s.Name, peer.Name, sourceCode)
			}
			if r, ok := peer.CountRange(targetCode); ok && r.Max == 0 {
				return infeasible("P3", "staff %q: mandatory pairing requires %q to hold code %q, but their max is 0", s.Name, peer.Name, targetCode)
			}
		}
	}
	return nil
}

// P4: referenced staff names in pairing/separation/preset exist —
// _check_staff_exists.
func checkStaffReferencesExist(staff []*model.Staff, _ *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	index := make(map[string]bool, len(staff))
	for _, s := range staff {
		index[s.Name] = true
	}
	for _, s := range staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryPairing && cons.Category != model.CategorySeparation && cons.Category != model.CategoryCustomPreset {
				continue
			}
			if !index[cons.SubCategory] {
				return infeasible("P4", "staff %q: %s constraint references unknown staff %q", s.Name, cons.Category, cons.SubCategory)
			}
		}
	}
	return nil
}

// P5/P6: night macro-pattern holds in hope entries, and a staff with
// night-max=0 carries no pinned × — _check_night_shift_pattern.
func checkNightPatternInHopes(staff []*model.Staff, _ *model.GlobalRule, _ *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		byDay := hopesForStaffByDay(hopes, s.Name)
		if code, ok := byDay[1]; ok && code == model.CodeNightOut {
			if next, ok := byDay[2]; ok && next != model.CodeRest {
				return infeasible("P5", "staff %q: day 1 is pinned × (carried-in night), but day 2 is pinned %q instead of 公", s.Name, next)
			}
		}
		for day, code := range byDay {
			switch code {
			case model.CodeNightIn:
				if next, ok := byDay[day+1]; ok && next != model.CodeNightOut {
					return infeasible("P5", "staff %q: day %d is pinned ／, but day %d is pinned %q instead of ×", s.Name, day, day+1, next)
				}
				if after, ok := byDay[day+2]; ok && after != model.CodeRest {
					return infeasible("P5", "staff %q: day %d is pinned ／, but day %d is pinned %q instead of 公", s.Name, day, day+2, after)
				}
			case model.CodeNightOut:
				if prev, ok := byDay[day-1]; ok && prev != model.CodeNightIn {
					return infeasible("P5", "staff %q: day %d is pinned ×, but day %d is pinned %q instead of ／", s.Name, day, day-1, prev)
				}
			}
		}
	}
	return checkNightMaxZeroVsHopes(staff, nil, nil, hopes)
}

func checkNightMaxZeroVsHopes(staff []*model.Staff, _ *model.GlobalRule, _ *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		if s.NightMax() != 0 {
			continue
		}
		for _, h := range hopes {
			if h.Staff == s.Name && h.Code == model.CodeNightOut {
				return infeasible("P6", "staff %q: night max is 0, but day %d is pinned × (night-out)", s.Name, h.Day)
			}
		}
	}
	return nil
}

// P7: pair-overlap mandatory is not already violated by hope entries.
func checkPairOverlapVsHopes(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	target := make([]*model.Staff, 0, len(staff))
	for _, s := range staff {
		if !s.GlobalRuleExcluded {
			target = append(target, s)
		}
	}
	for _, cons := range global.PreferenceConstraints {
		if cons.Kind != model.Mandatory || cons.Category != model.CategoryPairOverlap {
			continue
		}
		code := model.NormalizeLabel(cons.Count)
		threshold, ok := model.KanjiToInt(cons.Final)
		if !ok {
			continue
		}
		for d := 1; d <= month.Days; d++ {
			n := 0
			for _, s := range target {
				if h, ok := model.HopeAt(hopes, s.Name, d); ok && h.Code == code {
					n++
				}
			}
			if cons.Target == "以上" && n >= threshold {
				return infeasible("P7", "day %d: %d staff already pinned to %q, meeting the forbidden pair-overlap threshold (%d)", d, n, code, threshold)
			}
			if cons.Target == "丁度" && n == threshold {
				return infeasible("P7", "day %d: %d staff already pinned to %q, matching the forbidden exact pair-overlap count (%d)", d, n, code, threshold)
			}
		}
	}
	return nil
}

// P8: separation mandatory is not already violated by hope entries
// (both pinned to the target/source pair on the same day). Only days
// pinned by hope entries are examined; the staff's working-day envelope
// is not checked.
func checkSeparationFeasible(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	index := make(map[string]*model.Staff, len(staff))
	for _, s := range staff {
		index[s.Name] = s
	}
	for _, s := range staff {
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory || cons.Category != model.CategorySeparation {
				continue
			}
			peer, ok := index[cons.SubCategory]
			if !ok {
				continue
			}
			sourceCode := model.NormalizeLabel(cons.Count)
			targetCode := model.NormalizeLabel(cons.Target)
			if cons.Times != "all" {
				continue
			}
			for d := 1; d <= month.Days; d++ {
				a, aok := model.HopeAt(hopes, s.Name, d)
				b, bok := model.HopeAt(hopes, peer.Name, d)
				if aok && bok && a.Code == sourceCode && b.Code == targetCode {
					return infeasible("P8", "staff %q and %q are both already pinned on day %d, violating a mandatory separation", s.Name, peer.Name, d)
				}
			}
		}
	}
	_ = global
	_ = month
	return nil
}

// shiftPatternTriple is the (from, to, subCategory) tuple
// _check_shift_pattern_constraints compares pairwise.
type shiftPatternTriple struct {
	from, to, sub string
}

func mandatoryShiftPatterns(cons []model.Constraint) []shiftPatternTriple {
	var out []shiftPatternTriple
	for _, c := range cons {
		if c.Kind == model.Mandatory && c.Category == model.CategoryShiftPattern {
			out = append(out, shiftPatternTriple{c.Count, c.Target, c.SubCategory})
		}
	}
	return out
}

// P9: shift-pattern-transition mandatory contradictions — same
// from→to pattern asserted as both like/recommend and dislike/avoid,
// at the global level, within one staff, or between global and staff —
// _check_shift_pattern_constraints.
func checkShiftPatternContradictions(staff []*model.Staff, global *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	globalPatterns := mandatoryShiftPatterns(global.PreferenceConstraints)
	for i, g1 := range globalPatterns {
		for _, g2 := range globalPatterns[i+1:] {
			if g1.from == g2.from && g1.to == g2.to && g1.sub != g2.sub {
				return infeasible("P9", "global shift-pattern %q→%q is asserted as both %q and %q", g1.from, g1.to, g1.sub, g2.sub)
			}
		}
	}
	for _, s := range staff {
		local := mandatoryShiftPatterns(s.Constraints)
		for i, c1 := range local {
			for _, c2 := range local[i+1:] {
				if c1.from == c2.from && c1.to == c2.to && c1.sub != c2.sub {
					return infeasible("P9", "staff %q: shift-pattern %q→%q is asserted as both %q and %q", s.Name, c1.from, c1.to, c1.sub, c2.sub)
				}
			}
		}
		if s.GlobalRuleExcluded {
			continue
		}
		for _, g := range globalPatterns {
			for _, l := range local {
				if g.from != l.from || g.to != l.to {
					continue
				}
				if (g.sub == "回避" && l.sub == "愛好") || (g.sub == "推奨" && l.sub == "嫌悪") {
					return infeasible("P9", "staff %q: shift-pattern %q→%q is %q individually but %q globally", s.Name, l.from, l.to, l.sub, g.sub)
				}
			}
		}
	}
	return nil
}

// P10: per-staff from-min > to-max infeasibility for like-shift-patterns
// — a like/recommend from→to pattern can never fire if from's own min
// exceeds to's own max (the implied "every from needs a to" can't be
// covered).
func checkShiftPatternFromMinToMax(staff []*model.Staff, _ *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory || cons.Category != model.CategoryShiftPattern {
				continue
			}
			if cons.SubCategory != "愛好" && cons.SubCategory != "推奨" {
				continue
			}
			from := model.NormalizeLabel(cons.Count)
			to := model.NormalizeLabel(cons.Target)
			fromRange, fok := s.CountRange(from)
			toRange, tok := s.CountRange(to)
			if fok && tok && fromRange.Min > toRange.Max {
				return infeasible("P10", "staff %q: like-pattern %q→%q needs at least %d %q but at most %d %q", s.Name, from, to, fromRange.Min, from, toRange.Max, to)
			}
		}
	}
	return nil
}

// P11: global shift-pattern "recommend" with Mandatory kind is
// disallowed — only "avoid" / Preference forms are accepted globally.
func checkGlobalShiftPatternRecommendMandatory(_ []*model.Staff, global *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	for _, cons := range global.PreferenceConstraints {
		if cons.Category == model.CategoryShiftPattern && cons.Kind == model.Mandatory && cons.SubCategory == "推奨" {
			return infeasible("P11", "global shift-pattern %q→%q uses mandatory 推奨, which is only valid as avoid/Preference globally", cons.Count, cons.Target)
		}
	}
	return nil
}

// --- S. Sequence ---------------------------------------------------------

// S1: hope entries already containing a confirmed run exceeding the
// consecutive-work limit, or a span (including blanks) whose minimal
// rest insertion exceeds the remaining holiday budget —
// _check_consecutive_work_limit.
func checkConsecutiveWorkInHopes(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	limit := global.ConsecutiveWorkLimit
	if limit <= 0 {
		return nil
	}
	for _, s := range staff {
		byDay := hopesForStaffByDay(hopes, s.Name)
		remainingHolidays := s.HolidayTarget(global)
		for _, code := range byDay {
			if code == model.CodeRest || code == model.CodeLeave {
				remainingHolidays--
			}
		}

		d := 1
		for d <= month.Days {
			code, has := byDay[d]
			if has && (code == model.CodeRest || code == model.CodeLeave) {
				d++
				continue
			}
			start := d
			maxRun, run := 0, 0
			blanks, work := 0, 0
			for d <= month.Days {
				code, has = byDay[d]
				if has && (code == model.CodeRest || code == model.CodeLeave) {
					break
				}
				if !has {
					blanks++
					run = 0
				} else {
					work++
					run++
					if run > maxRun {
						maxRun = run
					}
				}
				d++
			}
			span := blanks + work
			if maxRun > limit {
				return infeasible("S1", "staff %q: a confirmed run of %d consecutive work days starting day %d exceeds the limit (%d)", s.Name, maxRun, start, limit)
			}
			if span > limit {
				needed := span / (limit + 1)
				if needed > remainingHolidays {
					return infeasible("S1", "staff %q: the %d-day span starting day %d needs %d more rest days but only %d remain", s.Name, span, start, needed, remainingHolidays)
				}
			}
		}
	}
	return nil
}

// holidayRunRange mirrors calculate_holiday_range: the [min,max] run
// length a consecutive-holiday constraint admits, nil if the
// combination is invalid.
func holidayRunRange(kind model.Kind, sub, target string, base int) (int, int, bool) {
	const maxRun = 7
	like := sub == "愛好" || sub == "推奨"
	switch {
	case like && target == "以上":
		return base, maxRun, true
	case like && target == "丁度":
		return base, base, true
	case like && target == "以下":
		return 1, base, true
	case !like && target == "以上":
		return 1, base - 1, true
	case !like && target == "丁度":
		if base == 1 {
			return 2, maxRun, true
		}
		return 1, maxRun, true
	case !like && target == "以下":
		return base + 1, maxRun, true
	}
	_ = kind
	return 0, 0, false
}

func overlaps(min1, max1, min2, max2 int) bool {
	lo := min1
	if min2 > lo {
		lo = min2
	}
	hi := max1
	if max2 < hi {
		hi = max2
	}
	return lo <= hi
}

// S2: consecutive-holiday mandatory ranges are non-empty and intersect
// — global vs local, and pairwise within a staff —
// check_holiday_constraints_conflict / calculate_holiday_range /
// has_overlap.
func checkConsecutiveHolidayRangesIntersect(staff []*model.Staff, global *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	type rangeCons struct {
		model.Constraint
		min, max int
	}
	rangeOf := func(c model.Constraint) (rangeCons, bool) {
		base, ok := model.KanjiToInt(c.Count)
		if !ok {
			base = 1
		}
		lo, hi, ok := holidayRunRange(c.Kind, c.SubCategory, c.Target, base)
		if !ok {
			return rangeCons{}, false
		}
		if lo > hi {
			return rangeCons{}, false
		}
		return rangeCons{c, lo, hi}, true
	}

	var globalRanges []rangeCons
	for _, c := range global.PreferenceConstraints {
		if c.Kind != model.Mandatory || c.Category != model.CategoryConsecutiveHoliday || c.Times != "全員" {
			continue
		}
		if r, ok := rangeOf(c); ok {
			globalRanges = append(globalRanges, r)
		} else {
			return infeasible("S2", "global consecutive-holiday constraint (%s %s, base %s) admits no valid run length", c.SubCategory, c.Target, c.Count)
		}
	}

	for _, s := range staff {
		var local []rangeCons
		for _, c := range s.Constraints {
			if c.Kind != model.Mandatory || c.Category != model.CategoryConsecutiveHoliday {
				continue
			}
			r, ok := rangeOf(c)
			if !ok {
				return infeasible("S2", "staff %q: consecutive-holiday constraint (%s %s) admits no valid run length", s.Name, c.SubCategory, c.Target)
			}
			local = append(local, r)
		}
		for i, c1 := range local {
			for _, c2 := range local[i+1:] {
				if !overlaps(c1.min, c1.max, c2.min, c2.max) {
					return infeasible("S2", "staff %q: consecutive-holiday constraints [%d,%d] and [%d,%d] do not intersect", s.Name, c1.min, c1.max, c2.min, c2.max)
				}
			}
			if s.GlobalRuleExcluded {
				continue
			}
			for _, g := range globalRanges {
				if !overlaps(c1.min, c1.max, g.min, g.max) {
					return infeasible("S2", "staff %q: local consecutive-holiday [%d,%d] does not intersect the global [%d,%d]", s.Name, c1.min, c1.max, g.min, g.max)
				}
			}
		}
	}
	return nil
}

// S3: night-min combined with a minimum post-night rest length exceeds
// the holiday budget.
func checkNightMinVsHolidayBudget(staff []*model.Staff, global *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	for _, s := range staff {
		nightMin := s.NightMin()
		if nightMin <= 1 {
			continue
		}
		minConsecutiveHoliday := 1
		for _, c := range s.Constraints {
			if c.Category != model.CategoryConsecutiveHoliday {
				continue
			}
			base, ok := model.KanjiToInt(c.Count)
			if !ok {
				continue
			}
			like := c.SubCategory == "愛好" || c.SubCategory == "推奨"
			if like && (c.Target == "以上" || c.Target == "丁度") && base > minConsecutiveHoliday {
				minConsecutiveHoliday = base
			}
		}
		holidayCount := s.HolidayTarget(global)
		if (nightMin-1)*minConsecutiveHoliday > holidayCount {
			return infeasible("S3", "staff %q: night-min (%d) with minimum post-night rest (%d) needs %d holidays, more than the %d budgeted", s.Name, nightMin, minConsecutiveHoliday, (nightMin-1)*minConsecutiveHoliday, holidayCount)
		}
	}
	return nil
}

// S4: global consecutive-shift preference for night is disallowed —
// the intended behavior only exists in Mandatory form.
func checkGlobalConsecutiveShiftNightPreference(_ []*model.Staff, global *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	for _, c := range global.PreferenceConstraints {
		if c.Category == model.CategoryConsecutiveShift && c.Kind == model.Preference {
			code := model.NormalizeLabel(c.Target)
			if code == model.CodeNightIn || c.Target == "夜勤" {
				return infeasible("S4", "global consecutive-shift for night is only supported in Mandatory form, not Preference")
			}
		}
	}
	return nil
}

// workPatternRange mirrors calculate_ranges: the admissible run-length
// range(s) a consecutive-work/day-only-consecutive-work mandatory
// constraint allows, bounded by the consecutive-work limit.
func workPatternRange(c model.Constraint, workLimit int) [][2]int {
	base, ok := model.KanjiToInt(c.Count)
	if !ok {
		base = 1
	}
	like := c.SubCategory == "愛好" || c.SubCategory == "推奨"
	switch {
	case like && c.Target == "以上":
		return [][2]int{{base, workLimit}}
	case like && c.Target == "以下":
		m := base
		if workLimit < m {
			m = workLimit
		}
		return [][2]int{{1, m}}
	case like && c.Target == "丁度":
		if base > workLimit {
			return nil
		}
		return [][2]int{{base, base}}
	case !like && c.Target == "以上":
		m := base - 1
		if workLimit < m {
			m = workLimit
		}
		return [][2]int{{1, m}}
	case !like && c.Target == "以下":
		m := base + 1
		if m < workLimit {
			return [][2]int{{m, workLimit}}
		}
		return [][2]int{{workLimit, workLimit}}
	case !like && c.Target == "丁度":
		if base == 1 {
			return [][2]int{{2, workLimit}}
		}
		upper := base + 1
		if upper > workLimit {
			upper = workLimit
		}
		return [][2]int{{1, base - 1}, {upper, workLimit}}
	}
	return nil
}

func rangesOverlap(a, b [][2]int) bool {
	for _, r1 := range a {
		for _, r2 := range b {
			if overlaps(r1[0], r1[1], r2[0], r2[1]) {
				return true
			}
		}
	}
	return false
}

// S5: per-staff and global consecutive-work/day-only-consecutive-work
// range intersection is non-empty and within the work limit —
// check_consecutive_work_conflict.
func checkConsecutiveWorkRangesIntersect(staff []*model.Staff, global *model.GlobalRule, _ *model.Month, _ []model.HopeEntry) *apperrors.AppError {
	workLimit := global.ConsecutiveWorkLimit
	if workLimit <= 0 {
		return nil
	}
	var globalWork, globalDayOnly []model.Constraint
	for _, c := range global.PreferenceConstraints {
		if c.Kind != model.Mandatory {
			continue
		}
		switch c.Category {
		case model.CategoryConsecutiveWork:
			globalWork = append(globalWork, c)
		case model.CategoryDayOnlyConsecutive:
			globalDayOnly = append(globalDayOnly, c)
		}
	}

	for _, s := range staff {
		if s.GlobalRuleExcluded {
			continue
		}
		var localWork, localDayOnly []model.Constraint
		for _, c := range s.Constraints {
			if c.Kind != model.Mandatory {
				continue
			}
			switch c.Category {
			case model.CategoryConsecutiveWork:
				localWork = append(localWork, c)
			case model.CategoryDayOnlyConsecutive:
				localDayOnly = append(localDayOnly, c)
			}
		}

		allPairs := [][2][]model.Constraint{
			{localWork, localWork}, {localDayOnly, localDayOnly}, {localWork, localDayOnly},
			{localWork, globalWork}, {localDayOnly, globalDayOnly},
			{localWork, globalDayOnly}, {localDayOnly, globalWork},
		}
		for _, pair := range allPairs {
			first, second := pair[0], pair[1]
			for i, c1 := range first {
				startJ := 0
				if &first == &second {
					startJ = i + 1
				}
				for _, c2 := range second[startJ:] {
					if sameConstraint(c1, c2) {
						continue
					}
					r1, r2 := workPatternRange(c1, workLimit), workPatternRange(c2, workLimit)
					if r1 == nil || r2 == nil {
						continue
					}
					if !rangesOverlap(r1, r2) {
						return infeasible("S5", "staff %q: consecutive-work constraints do not admit a common run length (limit %d)", s.Name, workLimit)
					}
				}
			}
		}
	}
	return nil
}

func sameConstraint(a, b model.Constraint) bool {
	return a.Category == b.Category && a.SubCategory == b.SubCategory && a.Count == b.Count && a.Target == b.Target && a.Kind == b.Kind
}

// S6: confirmed runs in hope entries do not violate any Mandatory
// consecutive-work pattern (an exact-丁度 pattern whose confirmed run
// length already falls outside the constraint's admissible set).
func checkHopesVsMandatoryWorkPattern(staff []*model.Staff, global *model.GlobalRule, month *model.Month, hopes []model.HopeEntry) *apperrors.AppError {
	workLimit := global.ConsecutiveWorkLimit
	if workLimit <= 0 {
		workLimit = month.Days
	}
	for _, s := range staff {
		byDay := hopesForStaffByDay(hopes, s.Name)
		for _, cons := range s.Constraints {
			if cons.Kind != model.Mandatory {
				continue
			}
			if cons.Category != model.CategoryConsecutiveWork && cons.Category != model.CategoryDayOnlyConsecutive {
				continue
			}
			if cons.Target != "丁度" {
				continue
			}
			rng := workPatternRange(cons, workLimit)
			if rng == nil {
				continue
			}
			runs := confirmedWorkRuns(byDay, month.Days, cons.Category)
			for _, run := range runs {
				if !overlaps(run, run, rng[0][0], rng[0][1]) {
					return infeasible("S6", "staff %q: a confirmed run of %d days violates the mandatory %s 丁度 pattern ([%d,%d])", s.Name, run, cons.Category, rng[0][0], rng[0][1])
				}
			}
		}
	}
	return nil
}

// confirmedWorkRuns finds every maximal confirmed (non-blank) run length
// over the code set the category names, ignoring blanks as
// run-breakers (a blank neither confirms nor denies membership, so only
// fully-confirmed runs are checked).
func confirmedWorkRuns(byDay map[int]model.Code, days int, category model.Category) []int {
	inSet := func(c model.Code) bool {
		if category == model.CategoryDayOnlyConsecutive {
			return c == model.CodeEarly || c == model.CodeDay || c == model.CodeLate
		}
		return c != model.CodeRest && c != model.CodeLeave
	}
	var runs []int
	run := 0
	for d := 1; d <= days; d++ {
		code, ok := byDay[d]
		if ok && inSet(code) {
			run++
			continue
		}
		if run > 0 {
			runs = append(runs, run)
		}
		run = 0
	}
	if run > 0 {
		runs = append(runs, run)
	}
	return runs
}
