package model

// DefaultReliability is the fallback staff reliability weight used by the
// aptitude/reliability-floor encoder when a staff record carries no
// override.
const DefaultReliability = 30

// Staff is one roster member: identity, scheduling flags, per-code count
// bounds, and the staff's own (ordered) constraint list.
type Staff struct {
	Name                string
	Role                string
	DayShiftOnly        bool
	PartTime            bool
	GlobalRuleExcluded  bool
	ShiftCounts         map[Code]Range
	HolidayOverride     *int
	ReliabilityOverride *int
	Constraints         []Constraint
}

// Reliability returns the staff's effective reliability weight: the
// override if set, else DefaultReliability.
func (s *Staff) Reliability() int {
	if s.ReliabilityOverride != nil {
		return *s.ReliabilityOverride
	}
	return DefaultReliability
}

// HolidayTarget returns the staff's effective monthly rest-day count: the
// override if set, else the global rule's holiday_count.
func (s *Staff) HolidayTarget(global *GlobalRule) int {
	if s.HolidayOverride != nil {
		return *s.HolidayOverride
	}
	return global.HolidayCount
}

// NightMax returns the staff's count-bound maximum for the night-in code,
// defaulting to 0 (no night work) when the staff carries no explicit
// bound for it — the night macro-pattern encoder's "night max ≥ 1" gate
// reads this.
func (s *Staff) NightMax() int {
	if r, ok := s.ShiftCounts[CodeNightIn]; ok {
		return r.Max
	}
	return 0
}

// NightMin returns the staff's count-bound minimum for the night-in code,
// defaulting to 0.
func (s *Staff) NightMin() int {
	if r, ok := s.ShiftCounts[CodeNightIn]; ok {
		return r.Min
	}
	return 0
}

// CountRange returns the [min,max] bound for a code, and whether the
// staff record carries one at all. Unbounded codes are left to the
// caller's own default (the basic encoder only constrains bounds that are
// present).
func (s *Staff) CountRange(c Code) (Range, bool) {
	r, ok := s.ShiftCounts[c]
	return r, ok
}
