package model

// HopeEntry is a pre-assigned shift: staff s is fixed to code c on day d.
// Hope entries are applied as hard equalities by the basic-rule
// encoder and must survive into the final solution unchanged (§8,
// "Hope-entry fidelity").
type HopeEntry struct {
	Staff string
	Day   int
	Code  Code
}

// PreferenceEntry is an ad hoc soft constraint carried alongside the
// global rule's own PreferenceConstraints list — the input record's
// top-level preference_entries field (§6). It uses the same tagged
// Constraint shape; the split from GlobalRule.PreferenceConstraints
// exists only at the input boundary, not in the encoders, which treat
// both lists identically once merged.
type PreferenceEntry struct {
	Constraint
}

// HopesForStaff filters a hope-entry list down to one staff, in input
// order.
func HopesForStaff(hopes []HopeEntry, staff string) []HopeEntry {
	var out []HopeEntry
	for _, h := range hopes {
		if h.Staff == staff {
			out = append(out, h)
		}
	}
	return out
}

// HopeAt returns the hope entry pinning (staff, day), if any.
func HopeAt(hopes []HopeEntry, staff string, day int) (HopeEntry, bool) {
	for _, h := range hopes {
		if h.Staff == staff && h.Day == day {
			return h, true
		}
	}
	return HopeEntry{}, false
}
