package model

import "testing"

func TestStaff_Reliability(t *testing.T) {
	override := 80
	withOverride := &Staff{ReliabilityOverride: &override}
	if got := withOverride.Reliability(); got != 80 {
		t.Errorf("Reliability() with override = %d, want 80", got)
	}

	withoutOverride := &Staff{}
	if got := withoutOverride.Reliability(); got != DefaultReliability {
		t.Errorf("Reliability() default = %d, want %d", got, DefaultReliability)
	}
}

func TestStaff_HolidayTarget(t *testing.T) {
	global := &GlobalRule{HolidayCount: 9}

	override := 11
	s := &Staff{HolidayOverride: &override}
	if got := s.HolidayTarget(global); got != 11 {
		t.Errorf("HolidayTarget() with override = %d, want 11", got)
	}

	s2 := &Staff{}
	if got := s2.HolidayTarget(global); got != 9 {
		t.Errorf("HolidayTarget() default = %d, want 9", got)
	}
}

func TestStaff_NightMaxMin(t *testing.T) {
	s := &Staff{ShiftCounts: map[Code]Range{CodeNightIn: {Min: 2, Max: 5}}}
	if got := s.NightMax(); got != 5 {
		t.Errorf("NightMax() = %d, want 5", got)
	}
	if got := s.NightMin(); got != 2 {
		t.Errorf("NightMin() = %d, want 2", got)
	}

	unbounded := &Staff{}
	if got := unbounded.NightMax(); got != 0 {
		t.Errorf("NightMax() unbounded = %d, want 0", got)
	}
}

func TestStaff_CountRange(t *testing.T) {
	s := &Staff{ShiftCounts: map[Code]Range{CodeEarly: {Min: 1, Max: 10}}}
	r, ok := s.CountRange(CodeEarly)
	if !ok || r != (Range{Min: 1, Max: 10}) {
		t.Errorf("CountRange(CodeEarly) = (%+v, %v), want ({1 10}, true)", r, ok)
	}
	if _, ok := s.CountRange(CodeLate); ok {
		t.Error("CountRange(CodeLate) should report ok=false for an unbounded code")
	}
}
