package model

// Kind distinguishes a hard ("mandatory") constraint from a soft
// ("preference") one.
type Kind string

const (
	Mandatory  Kind = "mandatory"
	Preference Kind = "preference"
)

// Category is the constraint-catalog taxonomy from spec §3. Each encoder
// reads only the categories (and, within a category, only the fields) it
// owns — see fieldContract below, which documents that mapping as data
// rather than as a runtime type-switch on reflection.
type Category string

const (
	CategoryWeekdayWish        Category = "weekday-wish"
	CategoryShiftWish          Category = "shift-wish"
	CategoryShiftPattern       Category = "shift-pattern"
	CategoryConsecutiveWork    Category = "consecutive-work"
	CategoryDayOnlyConsecutive Category = "day-only-consecutive-work"
	CategoryConsecutiveHoliday Category = "consecutive-holiday"
	CategoryHolidayGuarantee   Category = "holiday-guarantee"
	CategoryShiftBalance       Category = "shift-balance"
	CategoryPairing            Category = "pairing"
	CategorySeparation         Category = "separation"
	CategoryPairOverlap        Category = "pair-overlap"
	CategoryConsecutiveShift   Category = "consecutive-shift"
	CategoryShiftInterval      Category = "shift-interval"
	CategoryDaySpecificShift   Category = "day-specific-shift"
	CategoryCustomPreset       Category = "custom-preset"
	CategoryShiftAptitude      Category = "shift-aptitude"
	CategoryReliabilityTarget  Category = "reliability-target"
)

// Constraint is the single tagged record used both per-staff and globally.
// Not every field is meaningful for every category; fieldContract
// documents which fields a given category's encoder actually reads.
type Constraint struct {
	Kind        Kind
	Category    Category
	SubCategory string
	Count       string // target count / source-code label, category-dependent
	Final       string // "丁度"/"以上"/"以下" comparison operator, category-dependent
	Target      string // target code / peer staff name / balance relation
	Times       string // "all"|"N" occurrence count, or a code label
	Weight      int
}

// FieldUsage documents, for diagnostics and tests, which Constraint fields
// a category's encoder reads. It is data, not a runtime dispatch table —
// encoders switch on Category directly.
type FieldUsage struct {
	Category    Category
	UsesSub     bool
	UsesCount   bool
	UsesFinal   bool
	UsesTarget  bool
	UsesTimes   bool
	UsesWeight  bool
	Description string
}

// fieldContract is the category -> relevant-fields table referenced by
// spec §3 ("not every field is meaningful for every category; the encoder
// for each category reads only the fields it owns").
var fieldContract = []FieldUsage{
	{CategoryWeekdayWish, true, true, false, true, true, true, "weekday/Sat-Sun wish: sub=like/dislike, count=全て|第N, target=weekday|土／日, times=code|出勤"},
	{CategoryShiftWish, true, false, false, true, false, true, "shift-wish: sub=愛好/嫌悪, target=code"},
	{CategoryShiftPattern, true, true, false, true, false, true, "shift-pattern transition: sub=like/dislike/recommend/avoid, count=from, target=to"},
	{CategoryConsecutiveWork, true, true, false, true, false, true, "consecutive-work: sub=愛好/嫌悪 (or 推奨/回避 globally), count=run length (kanji), target=丁度/以上/以下"},
	{CategoryDayOnlyConsecutive, true, true, false, true, false, true, "day-only-consecutive-work: same shape as consecutive-work, over {▲,日,▼} instead of W"},
	{CategoryConsecutiveHoliday, true, true, false, true, false, true, "consecutive-holiday: sub=愛好/嫌悪 (or 推奨/回避 globally), count=run length (kanji), target=丁度/以上/以下"},
	{CategoryHolidayGuarantee, true, true, false, false, false, true, "holiday-guarantee: sub (or else count)=k-holiday length, target=target_count"},
	{CategoryShiftBalance, false, false, false, true, false, true, "shift-balance: target in {丁度,±1,早＋1,遅＋1}"},
	{CategoryPairing, true, true, false, true, true, true, "pairing: sub=peer staff name, count=source code, target=peer code, times=all|N"},
	{CategorySeparation, true, true, false, true, true, true, "separation: same shape as pairing, symmetric"},
	{CategoryPairOverlap, false, true, true, true, false, true, "pair-overlap: count=source code, final=target count (kanji), target=以上/丁度 comparator"},
	{CategoryConsecutiveShift, false, true, true, false, false, true, "consecutive-shift: count=N, final=以上/丁度, target=code or 夜勤"},
	{CategoryShiftInterval, true, true, false, true, false, true, "shift-interval: sub=嫌悪/愛好, count=code, target=interval n (days)"},
	{CategoryDaySpecificShift, true, false, false, true, false, false, "day-specific-shift: sub=\"N日\", target=出勤"},
	{CategoryCustomPreset, true, false, false, true, false, true, "custom-preset: sub=peer staff name, target=preset name"},
	{CategoryShiftAptitude, true, false, false, true, false, true, "shift-aptitude (reliability): sub=日曜/通常, target=target value"},
	{CategoryReliabilityTarget, true, false, false, true, false, true, "reliability-target: same shape as shift-aptitude"},
}

// FieldContract returns the documented field usage for a category, ok is
// false if the category is unknown.
func FieldContract(c Category) (FieldUsage, bool) {
	for _, fc := range fieldContract {
		if fc.Category == c {
			return fc, true
		}
	}
	return FieldUsage{}, false
}

// OrderedConstraints returns a staff's or a global rule's constraints in
// declaration order — the total order spec §4.B requires for diagnostics
// tie-breaking. Declaration order is simply slice order; this helper
// exists so callers don't re-sort by accident.
func OrderedConstraints(cs []Constraint) []Constraint {
	return cs
}
