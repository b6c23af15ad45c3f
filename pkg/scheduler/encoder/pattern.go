package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/or-tools/ortools/sat/go/cpmodel"
	"github.com/paiban/rostergen/pkg/model"
	"github.com/paiban/rostergen/pkg/scheduler/cpsat"
)

// Pattern attaches every component-D clause: the night macro-pattern,
// pairing/separation, weekday preferences, shift-pattern transitions,
// balance, pair-overlap, custom presets, and holiday-guarantee.
func Pattern(c *Context) {
	nightMacroPattern(c)
	pairingAndSeparation(c)
	weekdayWish(c)
	shiftPatternTransitions(c)
	balance(c)
	pairOverlap(c)
	customPresets(c)
	holidayGuarantee(c)
}

// nightMacroPattern enforces ／ → × → 公 for every staff whose night max
// ≥ 1, and forbids a first-day × carry-in for staff whose night max is 0.
func nightMacroPattern(c *Context) {
	days := c.Month.Days
	for i, s := range c.Staff {
		if s.NightMax() == 0 {
			c.M.Forbid(c.Var(i, 1, model.CodeNightOut))
			continue
		}
		for d := 1; d <= days; d++ {
			in := c.Var(i, d, model.CodeNightIn)
			if d+1 <= days {
				out := c.Var(i, d+1, model.CodeNightOut)
				c.M.Implies(in, out)
			}
			if d+2 <= days {
				rest := c.Var(i, d+2, model.CodeRest)
				c.M.Implies(in, rest)
			}
		}
		for d := 2; d <= days; d++ {
			out := c.Var(i, d, model.CodeNightOut)
			in := c.Var(i, d-1, model.CodeNightIn)
			c.M.Implies(out, in)
		}
		// First-day × carries a night shift in from the previous month:
		// the day after must be a rest day, since day 0 isn't modeled
		// (original_source/app/generator/pattern_prefix.py: "1日目が×なら
		// 2日目は公休である必要がある").
		firstOut := c.Var(i, 1, model.CodeNightOut)
		if days >= 2 {
			c.M.Implies(firstOut, c.Var(i, 2, model.CodeRest))
		}
	}
}

// pairingConstraint is the shared field shape pairing/separation both use.
type pairingConstraint struct {
	peer       string
	sourceCode model.Code
	targetCode model.Code
	times      string
	kind       model.Kind
	weight     int
}

func parsePairingConstraint(c *Context, cons model.Constraint) (pairingConstraint, bool) {
	source, ok := c.NormalizeCode(cons.Count)
	if !ok {
		return pairingConstraint{}, false
	}
	target, ok := c.NormalizeCode(cons.Target)
	if !ok {
		return pairingConstraint{}, false
	}
	return pairingConstraint{
		peer: cons.SubCategory, sourceCode: source, targetCode: target,
		times: cons.Times, kind: cons.Kind, weight: cons.Weight,
	}, true
}

// pairingAndSeparation handles both the "pairing" and "separation"
// categories, which share a field shape and differ only in whether the
// joint event is required (pairing) or forbidden (separation).
func pairingAndSeparation(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			switch cons.Category {
			case model.CategoryPairing:
				pc, ok := parsePairingConstraint(c, cons)
				if !ok {
					continue
				}
				j, ok := c.ResolveStaff(pc.peer)
				if !ok {
					continue
				}
				applyPairing(c, i, j, pc)
			case model.CategorySeparation:
				pc, ok := parsePairingConstraint(c, cons)
				if !ok {
					continue
				}
				j, ok := c.ResolveStaff(pc.peer)
				if !ok {
					continue
				}
				applySeparation(c, i, j, pc)
			}
		}
	}
}

func applyPairing(c *Context, i, j int, pc pairingConstraint) {
	if pc.kind == model.Mandatory && pc.times == "all" {
		// Asymmetric by design (Open Question #1): the staff with the
		// smaller source-code max is the "base"; only its occurrences
		// force the peer's code.
		baseMax, _ := c.Staff[i].CountRange(pc.sourceCode)
		peerMax, _ := c.Staff[j].CountRange(pc.sourceCode)
		base, other, otherCode := i, j, pc.targetCode
		if peerMax.Max < baseMax.Max {
			base, other = j, i
		}
		for d := 1; d <= c.Month.Days; d++ {
			c.M.Implies(c.Var(base, d, pc.sourceCode), c.Var(other, d, otherCode))
		}
		return
	}

	pairVars := jointVars(c, i, j, pc.sourceCode, pc.targetCode, "pair")
	if pc.kind == model.Mandatory {
		n, err := strconv.Atoi(pc.times)
		if err != nil {
			return
		}
		c.M.AtLeast(pairVars, int64(n))
		return
	}
	rewardCapped(c, pairVars, pc.times, pc.weight, fmt.Sprintf("pairing_%d_%d", i, j))
}

func applySeparation(c *Context, i, j int, pc pairingConstraint) {
	togetherVars := jointVars(c, i, j, pc.sourceCode, pc.targetCode, "together")
	switch pc.kind {
	case model.Mandatory:
		if pc.times == "all" {
			for _, v := range togetherVars {
				c.M.Forbid(v)
			}
			return
		}
		n, err := strconv.Atoi(pc.times)
		if err != nil {
			return
		}
		c.M.AtMost(togetherVars, int64(n))
	case model.Preference:
		// Penalize excess over the cap instead of rewarding: one
		// negative objective term per together-day beyond the first
		// times (none are free when times is "all").
		free := 0
		if n, err := strconv.Atoi(pc.times); err == nil && n > 0 {
			free = n
		}
		name := fmt.Sprintf("separation_%d_%d", i, j)
		sum := c.M.NewIntVar(0, int64(len(togetherVars)), name+"_sum")
		c.M.AddEqualityToExpr(sum, cpsat.Sum(togetherVars...))
		for k := free + 1; k <= len(togetherVars); k++ {
			below := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("%s_below_%d", name, k))
			c.M.ReifyBelowThreshold(sum, int64(k), below)
			c.M.AddObjectiveTerm(below.Not(), -int64(pc.weight))
		}
	}
}

// jointVars builds one reified AND variable per day for "staff i on
// sourceCode AND staff j on targetCode", named with the given label.
func jointVars(c *Context, i, j int, sourceCode, targetCode model.Code, label string) []cpmodel.BoolVar {
	out := make([]cpmodel.BoolVar, c.Month.Days)
	for d := 1; d <= c.Month.Days; d++ {
		a := c.Var(i, d, sourceCode)
		b := c.Var(j, d, targetCode)
		and := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("%s_%d_%d_d%d", label, i, j, d))
		c.M.Implies(and, a)
		c.M.Implies(and, b)
		// and ⇐ a∧b via ¬a∨¬b∨and
		c.M.Builder().AddBoolOr(a.Not(), b.Not(), and)
		out[d-1] = and
	}
	return out
}

// rewardCapped rewards min(Σvars, cap)*weight: one threshold indicator per
// k in [1,cap], each true exactly when the sum has reached k, so their
// total reward saturates at cap instead of growing without bound.
func rewardCapped(c *Context, vars []cpmodel.BoolVar, times string, weight int, name string) {
	cap := len(vars)
	if n, err := strconv.Atoi(times); err == nil {
		cap = n
	}
	if cap <= 0 || weight == 0 {
		return
	}
	sum := c.M.NewIntVar(0, int64(len(vars)), name+"_sum")
	c.M.AddEqualityToExpr(sum, cpsat.Sum(vars...))
	for k := 1; k <= cap; k++ {
		below := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("%s_below_%d", name, k))
		c.M.ReifyBelowThreshold(sum, int64(k), below)
		c.M.AddObjectiveTerm(below.Not(), int64(weight))
	}
}

// weekdayWish handles the "weekday-wish" category: a staff's like/dislike
// of a shift label (or 出勤, any of {▲,日,▼}) on every/the Nth occurrence
// of a weekday (or the combined 土／日 pair) in the month.
func weekdayWish(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryWeekdayWish {
				continue
			}
			applyWeekdayWish(c, i, cons)
		}
	}
}

func applyWeekdayWish(c *Context, i int, cons model.Constraint) {
	days := weekdayWishDays(c, cons)
	if len(days) == 0 {
		return
	}
	groups := weekdayWishVars(c, i, cons.Times, days)
	if groups == nil {
		return
	}
	like := cons.SubCategory == "like" || cons.SubCategory == "愛好"

	if cons.Kind == model.Mandatory {
		for _, group := range groups {
			if like {
				c.M.AtLeast(group, 1)
			} else {
				for _, v := range group {
					c.M.Forbid(v)
				}
			}
		}
		return
	}

	sign := int64(1)
	if !like {
		sign = -1
	}
	for _, group := range groups {
		for _, v := range group {
			c.M.AddObjectiveTerm(v, sign*int64(cons.Weight))
		}
	}
}

// weekdayWishDays resolves Target (a weekday label or 土／日) and Count
// (全て or 第一..".第五) to the concrete days the wish applies to.
func weekdayWishDays(c *Context, cons model.Constraint) []int {
	var weekdays []model.Weekday
	if cons.Target == "土／日" {
		weekdays = []model.Weekday{model.Saturday, model.Sunday}
	} else {
		wd, ok := model.WeekdayFromLabel(cons.Target)
		if !ok {
			return nil
		}
		weekdays = []model.Weekday{wd}
	}

	var matching []int
	for d := 1; d <= c.Month.Days; d++ {
		wd := c.Month.WeekdayOf(d)
		for _, w := range weekdays {
			if wd == w {
				matching = append(matching, d)
				break
			}
		}
	}

	n, ok := parseOrdinal(cons.Count)
	if !ok {
		return nil
	}
	if n == 0 {
		return matching // 全て
	}
	if n > len(matching) {
		return nil
	}
	return []int{matching[n-1]}
}

// parseOrdinal parses "全て" (all) or "第一".."第五" (nth occurrence,
// 1-based); n==0 means "all".
func parseOrdinal(s string) (int, bool) {
	if s == "全て" || s == "all" {
		return 0, true
	}
	trimmed := strings.TrimPrefix(s, "第")
	return model.KanjiToInt(trimmed)
}

func weekdayWishVars(c *Context, i int, label string, days []int) [][]cpmodel.BoolVar {
	groups := make([][]cpmodel.BoolVar, len(days))
	for idx, d := range days {
		if label == "出勤" {
			groups[idx] = c.StaffVarsIn(i, d, []model.Code{model.CodeEarly, model.CodeDay, model.CodeLate})
			continue
		}
		code, ok := c.NormalizeCode(label)
		if !ok {
			return nil
		}
		groups[idx] = []cpmodel.BoolVar{c.Var(i, d, code)}
	}
	return groups
}

// shiftPatternTransitions handles "shift-pattern": per-staff (sub=like/
// dislike) and global (sub=recommend/avoid) day-to-day transitions.
func shiftPatternTransitions(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryShiftPattern {
				continue
			}
			applyShiftPatternTransition(c, []int{i}, cons)
		}
	}
	all := make([]int, len(c.Staff))
	for i := range c.Staff {
		all[i] = i
	}
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryShiftPattern {
			continue
		}
		applyShiftPatternTransition(c, all, cons)
	}
}

func applyShiftPatternTransition(c *Context, staffIdx []int, cons model.Constraint) {
	from, ok := c.NormalizeCode(cons.Count)
	if !ok {
		return
	}
	to, ok := c.NormalizeCode(cons.Target)
	if !ok {
		return
	}
	avoid := cons.SubCategory == "dislike" || cons.SubCategory == "avoid" || cons.SubCategory == "嫌悪" || cons.SubCategory == "回避"

	for _, i := range staffIdx {
		for d := 1; d < c.Month.Days; d++ {
			fromVar := c.Var(i, d, from)
			toVar := c.Var(i, d+1, to)
			if cons.Kind == model.Mandatory {
				if avoid {
					c.M.ImpliesFalse(fromVar, toVar)
				} else {
					c.M.Implies(fromVar, toVar)
				}
				continue
			}
			and := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("pattern_%d_%d_%s_%s", i, d, from, to))
			c.M.Implies(and, fromVar)
			c.M.Implies(and, toVar)
			c.M.Builder().AddBoolOr(fromVar.Not(), toVar.Not(), and)
			weight := int64(cons.Weight)
			if avoid {
				weight = -weight
			}
			c.M.AddObjectiveTerm(and, weight)
		}
	}
}

// balance rewards staff whose early/late totals meet the selected
// relation ("丁度" equal, "±1" within one, "早＋1" early = late+1,
// "遅＋1" late = early+1). Preference-only, per spec.
func balance(c *Context) {
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryShiftBalance || cons.Kind != model.Preference {
			continue
		}
		for i := range c.Staff {
			applyBalance(c, i, cons)
		}
	}
}

func applyBalance(c *Context, i int, cons model.Constraint) {
	early := c.M.NewIntVar(0, int64(c.Month.Days), fmt.Sprintf("balance_early_%d", i))
	late := c.M.NewIntVar(0, int64(c.Month.Days), fmt.Sprintf("balance_late_%d", i))
	c.M.AddEqualityToExpr(early, cpsat.Sum(c.StaffVars(i, model.CodeEarly)...))
	c.M.AddEqualityToExpr(late, cpsat.Sum(c.StaffVars(i, model.CodeLate)...))

	// met ⇒ relation holds, one-way: the objective's positive weight
	// already keeps the solver from setting met=1 without also arranging
	// the relation, so the converse direction isn't needed for
	// correctness — only for rewarding every staff that happens to
	// satisfy the relation without the solver bothering to notice.
	met := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("balance_met_%d", i))
	diff := cpmodel.NewLinearExpr()
	diff.Add(early)
	diff.AddTerm(late, -1)
	switch cons.Target {
	case "丁度":
		c.M.Builder().AddEquality(early, late).OnlyEnforceIf(met)
	case "±1":
		c.M.Builder().AddLessOrEqual(diff, cpmodel.NewConstant(1)).OnlyEnforceIf(met)
		c.M.Builder().AddGreaterOrEqual(diff, cpmodel.NewConstant(-1)).OnlyEnforceIf(met)
	case "早＋1":
		c.M.Builder().AddEquality(diff, cpmodel.NewConstant(1)).OnlyEnforceIf(met)
	case "遅＋1":
		c.M.Builder().AddEquality(diff, cpmodel.NewConstant(-1)).OnlyEnforceIf(met)
	default:
		return
	}
	c.M.AddObjectiveTerm(met, int64(cons.Weight))
}

// pairOverlap mirrors the original's add_pair_overlap_constraints: global
// rule, applied across every pair of non-global-rule-excluded staff, for
// one target shift code. Reifying the overlap as ">=2" (and its "<2"
// complement), with no separate "==2" clause, is the spec's adopted fix for the source's
// inconsistent encoding.
func pairOverlap(c *Context) {
	target := globalRuleStaff(c)
	if len(target) < 2 {
		return
	}
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryPairOverlap {
			continue
		}
		applyPairOverlap(c, target, cons)
	}
}

// globalRuleStaff returns the indices of staff subject to the global rule
// set — every other global dispatch (sequence.go, alternative.go,
// feasibility.go) skips GlobalRuleExcluded staff the same way.
func globalRuleStaff(c *Context) []int {
	var out []int
	for i, s := range c.Staff {
		if !s.GlobalRuleExcluded {
			out = append(out, i)
		}
	}
	return out
}

// applyPairOverlap reads count=source shift code, final=target count
// (kanji numeral), target=comparator ("以上"/"丁度") — the original's
// field usage, despite "target" reading like a count at a glance.
func applyPairOverlap(c *Context, target []int, cons model.Constraint) {
	code, ok := c.NormalizeCode(cons.Count)
	if !ok {
		return
	}
	threshold, ok := model.KanjiToInt(cons.Final)
	if !ok {
		if c.Sink != nil {
			c.Sink.Warning(fmt.Sprintf("pair-overlap: invalid target count %q, skipping", cons.Final))
		}
		return
	}
	atLeast := cons.Target == "以上"

	for a := 0; a < len(target); a++ {
		for b := a + 1; b < len(target); b++ {
			i, j := target[a], target[b]
			pairVars := make([]cpmodel.BoolVar, c.Month.Days)
			for d := 1; d <= c.Month.Days; d++ {
				x := c.Var(i, d, code)
				y := c.Var(j, d, code)
				pair := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("pair_overlap_%d_%d_d%d", i, j, d))
				both := cpmodel.NewLinearExpr()
				both.Add(x)
				both.Add(y)
				c.M.Builder().AddGreaterOrEqual(both, cpmodel.NewConstant(2)).OnlyEnforceIf(pair)
				c.M.Builder().AddLessThan(both, cpmodel.NewConstant(2)).OnlyEnforceIf(pair.Not())
				pairVars[d-1] = pair
			}
			count := c.M.NewIntVar(0, int64(c.Month.Days), fmt.Sprintf("pair_overlap_count_%d_%d", i, j))
			c.M.AddEqualityToExpr(count, cpsat.Sum(pairVars...))

			if cons.Kind == model.Mandatory {
				if atLeast {
					c.M.Builder().AddLessThan(count, cpmodel.NewConstant(int64(threshold)))
				} else {
					c.M.NotEqualConst(count, int64(threshold))
				}
				continue
			}
			hit := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("pair_overlap_hit_%d_%d", i, j))
			if atLeast {
				c.M.Builder().AddGreaterOrEqual(count, cpmodel.NewConstant(int64(threshold))).OnlyEnforceIf(hit)
				c.M.Builder().AddLessThan(count, cpmodel.NewConstant(int64(threshold))).OnlyEnforceIf(hit.Not())
			} else {
				c.M.Builder().AddEquality(count, cpmodel.NewConstant(int64(threshold))).OnlyEnforceIf(hit)
			}
			c.M.AddObjectiveTerm(hit, -int64(cons.Weight))
		}
	}
}

// customPresets implements the four named presets observed in the
// original's add_custom_preset_constraint: each names a peer by
// SubCategory and a fixed relation by Target.
func customPresets(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryCustomPreset {
				continue
			}
			j, ok := c.ResolveStaff(cons.SubCategory)
			if !ok {
				continue
			}
			applyCustomPreset(c, i, j, cons)
		}
	}
}

func applyCustomPreset(c *Context, i, j int, cons model.Constraint) {
	switch cons.Target {
	case "早＋早と入＋入を回避":
		avoidTogether(c, i, j, model.CodeEarly, cons)
		avoidTogether(c, i, j, model.CodeNightIn, cons)
	case "早日遅＋早日遅と夜＋夜を回避":
		edl := []model.Code{model.CodeEarly, model.CodeDay, model.CodeLate}
		avoidBothGroups(c, i, j, edl, edl, cons)
		avoidTogether(c, i, j, model.CodeNightIn, cons)
	case "早＋明と遅＋入を推奨":
		recommendHandoff(c, i, j, cons)
	case "早日＋明と日遅＋入を回避":
		avoidPair(c, i, j, model.CodeNightOut, model.CodeEarly, cons)
		avoidPair(c, i, j, model.CodeNightOut, model.CodeDay, cons)
		avoidPair(c, i, j, model.CodeNightIn, model.CodeLate, cons)
		avoidPair(c, i, j, model.CodeNightIn, model.CodeDay, cons)
		avoidPair(c, i, j, model.CodeDay, model.CodeNightIn, cons)
	}
}

// avoidTogether forbids (mandatory) or penalizes (preference) both staff
// holding the same code on the same day.
func avoidTogether(c *Context, i, j int, code model.Code, cons model.Constraint) {
	for d := 1; d <= c.Month.Days; d++ {
		a, b := c.Var(i, d, code), c.Var(j, d, code)
		if cons.Kind == model.Mandatory {
			c.M.Builder().AddLessOrEqual(cpsat.Sum(a, b), cpmodel.NewConstant(1))
			continue
		}
		and := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("preset_together_%d_%d_%s_d%d", i, j, code, d))
		c.M.Implies(and, a)
		c.M.Implies(and, b)
		c.M.Builder().AddBoolOr(a.Not(), b.Not(), and)
		c.M.AddObjectiveTerm(and, -int64(cons.Weight))
	}
}

// avoidPair forbids (mandatory) or penalizes (preference) staff i holding
// codeA while staff j holds codeB, same day.
func avoidPair(c *Context, i, j int, codeA, codeB model.Code, cons model.Constraint) {
	for d := 1; d <= c.Month.Days; d++ {
		a, b := c.Var(i, d, codeA), c.Var(j, d, codeB)
		if cons.Kind == model.Mandatory {
			c.M.Builder().AddLessOrEqual(cpsat.Sum(a, b), cpmodel.NewConstant(1))
			continue
		}
		and := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("preset_pair_%d_%d_%s_%s_d%d", i, j, codeA, codeB, d))
		c.M.Implies(and, a)
		c.M.Implies(and, b)
		c.M.Builder().AddBoolOr(a.Not(), b.Not(), and)
		c.M.AddObjectiveTerm(and, -int64(cons.Weight))
	}
}

// avoidBothGroups forbids/penalizes staff i holding any of groupA while
// staff j holds any of groupB, same day (the "early/day/late vs
// early/day/late" collision in the edl preset).
func avoidBothGroups(c *Context, i, j int, groupA, groupB []model.Code, cons model.Constraint) {
	for d := 1; d <= c.Month.Days; d++ {
		hasA := groupIndicator(c, i, d, groupA, fmt.Sprintf("preset_hasA_%d_d%d", i, d))
		hasB := groupIndicator(c, j, d, groupB, fmt.Sprintf("preset_hasB_%d_d%d", j, d))
		if cons.Kind == model.Mandatory {
			c.M.Builder().AddBoolOr(hasA.Not(), hasB.Not())
			continue
		}
		and := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("preset_edl_%d_%d_d%d", i, j, d))
		c.M.Implies(and, hasA)
		c.M.Implies(and, hasB)
		c.M.Builder().AddBoolOr(hasA.Not(), hasB.Not(), and)
		c.M.AddObjectiveTerm(and, -int64(cons.Weight))
	}
}

// groupIndicator reifies "staff i is on one of codes on day d".
func groupIndicator(c *Context, i, d int, codes []model.Code, name string) cpmodel.BoolVar {
	ind := c.M.Builder().NewBoolVar().WithName(name)
	vars := make([]cpmodel.BoolVar, len(codes))
	for k, code := range codes {
		vars[k] = c.Var(i, d, code)
	}
	sum := cpsat.Sum(vars...)
	c.M.Builder().AddGreaterOrEqual(sum, cpmodel.NewConstant(1)).OnlyEnforceIf(ind)
	c.M.Builder().AddEquality(sum, cpmodel.NewConstant(0)).OnlyEnforceIf(ind.Not())
	return ind
}

// recommendHandoff rewards/requires the handoff pairing: whoever just
// came off nights (×) should hand off to the peer on ▲; whoever is going
// into nights (／) should hand off to the peer on ▼ — checked
// symmetrically for both staff named in the constraint.
func recommendHandoff(c *Context, i, j int, cons model.Constraint) {
	for d := 1; d <= c.Month.Days; d++ {
		pairs := [][2]struct {
			staff int
			code  model.Code
		}{
			{{i, model.CodeNightOut}, {j, model.CodeEarly}},
			{{j, model.CodeNightOut}, {i, model.CodeEarly}},
			{{i, model.CodeNightIn}, {j, model.CodeLate}},
			{{j, model.CodeNightIn}, {i, model.CodeLate}},
		}
		for _, p := range pairs {
			trigger := c.Var(p[0].staff, d, p[0].code)
			target := c.Var(p[1].staff, d, p[1].code)
			if cons.Kind == model.Mandatory {
				c.M.Implies(trigger, target)
				continue
			}
			and := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("handoff_%d_%d_d%d", p[0].staff, p[1].staff, d))
			c.M.Implies(and, trigger)
			c.M.Implies(and, target)
			c.M.Builder().AddBoolOr(trigger.Not(), target.Not(), and)
			c.M.AddObjectiveTerm(and, int64(cons.Weight))
		}
	}
}

// holidayGuarantee implements calculate_holiday_guarantee: per staff (or
// global), count exact-length n-day rest runs and either floor the count
// (Mandatory) or reward each threshold reached up to target_count
// (Preference).
func holidayGuarantee(c *Context) {
	for i, s := range c.Staff {
		for _, cons := range s.Constraints {
			if cons.Category != model.CategoryHolidayGuarantee {
				continue
			}
			applyHolidayGuarantee(c, []int{i}, cons)
		}
	}
	all := make([]int, len(c.Staff))
	for i := range c.Staff {
		all[i] = i
	}
	for _, cons := range c.Global.PreferenceConstraints {
		if cons.Category != model.CategoryHolidayGuarantee {
			continue
		}
		applyHolidayGuarantee(c, all, cons)
	}
}

func applyHolidayGuarantee(c *Context, staffIdx []int, cons model.Constraint) {
	nDays, ok := model.KanjiToInt(cons.SubCategory)
	if !ok || nDays <= 0 {
		nDays, ok = parseOrdinal(cons.Count)
		if !ok || nDays <= 0 {
			if c.Sink != nil {
				c.Sink.Warning(fmt.Sprintf("holiday-guarantee: invalid run length %q/%q, skipping", cons.SubCategory, cons.Count))
			}
			return
		}
	}
	target, err := strconv.Atoi(strings.TrimSuffix(cons.Target, "回まで"))
	if err != nil {
		if c.Sink != nil {
			c.Sink.Warning(fmt.Sprintf("holiday-guarantee: invalid target %q, skipping", cons.Target))
		}
		return
	}

	for _, i := range staffIdx {
		count := holidayRunCount(c, i, nDays)
		if cons.Kind == model.Mandatory {
			c.M.AddGreaterOrEqualConst(count, int64(target))
			continue
		}
		for k := 1; k <= target; k++ {
			has := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("holiday_guarantee_%d_%d_has%d", i, nDays, k))
			c.M.Builder().AddGreaterOrEqual(count, cpmodel.NewConstant(int64(k))).OnlyEnforceIf(has)
			c.M.Builder().AddLessThan(count, cpmodel.NewConstant(int64(k))).OnlyEnforceIf(has.Not())
			c.M.AddObjectiveTerm(has, int64(cons.Weight))
		}
	}
}

// holidayRunCount builds the IntVar counting exact-length-nDays rest runs
// for staff i, via one "run starts here" indicator per feasible start day.
func holidayRunCount(c *Context, i, nDays int) cpmodel.IntVar {
	days := c.Month.Days
	var starts []cpmodel.BoolVar
	for d := 1; d+nDays-1 <= days; d++ {
		run := make([]cpmodel.BoolVar, nDays)
		for k := 0; k < nDays; k++ {
			run[k] = c.Var(i, d+k, model.CodeRest)
		}
		runSum := c.M.NewIntVar(0, int64(nDays), fmt.Sprintf("holiday_run_sum_%d_%d_d%d", i, nDays, d))
		c.M.AddEqualityToExpr(runSum, cpsat.Sum(run...))
		isFullRun := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("holiday_run_full_%d_%d_d%d", i, nDays, d))
		c.M.Builder().AddEquality(runSum, cpmodel.NewConstant(int64(nDays))).OnlyEnforceIf(isFullRun)
		c.M.Builder().AddLessThan(runSum, cpmodel.NewConstant(int64(nDays))).OnlyEnforceIf(isFullRun.Not())

		notExtendingBefore := isFullRun
		if d > 1 {
			prevRest := c.Var(i, d-1, model.CodeRest)
			validStart := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("holiday_run_start_%d_%d_d%d", i, nDays, d))
			c.M.ImpliesFalse(validStart, prevRest)
			c.M.Implies(prevRest.Not(), validStart)
			start := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("holiday_run_start_ind_%d_%d_d%d", i, nDays, d))
			c.M.Implies(start, isFullRun)
			c.M.Implies(start, validStart)
			c.M.Builder().AddBoolOr(isFullRun.Not(), validStart.Not(), start)
			notExtendingBefore = start
		}
		notExtendingAfter := notExtendingBefore
		if d+nDays <= days {
			nextRest := c.Var(i, d+nDays, model.CodeRest)
			exact := c.M.Builder().NewBoolVar().WithName(fmt.Sprintf("holiday_run_exact_%d_%d_d%d", i, nDays, d))
			c.M.Implies(exact, notExtendingBefore)
			c.M.ImpliesFalse(exact, nextRest)
			c.M.Builder().AddBoolOr(notExtendingBefore.Not(), nextRest, exact)
			notExtendingAfter = exact
		}
		starts = append(starts, notExtendingAfter)
	}
	count := c.M.NewIntVar(0, int64(len(starts)), fmt.Sprintf("holiday_guarantee_count_%d_%d", i, nDays))
	c.M.AddEqualityToExpr(count, cpsat.Sum(starts...))
	return count
}
