package model

import "testing"

func TestFieldContract_KnownAndUnknown(t *testing.T) {
	fu, ok := FieldContract(CategoryPairing)
	if !ok {
		t.Fatal("FieldContract(CategoryPairing) should be found")
	}
	if !fu.UsesSub || !fu.UsesCount || !fu.UsesTarget || !fu.UsesTimes || !fu.UsesWeight {
		t.Errorf("FieldContract(CategoryPairing) = %+v, missing an expected field flag", fu)
	}
	if fu.UsesFinal {
		t.Errorf("FieldContract(CategoryPairing) should not use Final")
	}

	if _, ok := FieldContract(Category("does-not-exist")); ok {
		t.Error("FieldContract() should report ok=false for an unknown category")
	}
}

func TestFieldContract_CoversEveryCategory(t *testing.T) {
	all := []Category{
		CategoryWeekdayWish, CategoryShiftWish, CategoryShiftPattern,
		CategoryConsecutiveWork, CategoryDayOnlyConsecutive, CategoryConsecutiveHoliday,
		CategoryHolidayGuarantee, CategoryShiftBalance, CategoryPairing,
		CategorySeparation, CategoryPairOverlap, CategoryConsecutiveShift,
		CategoryShiftInterval, CategoryDaySpecificShift, CategoryCustomPreset,
		CategoryShiftAptitude, CategoryReliabilityTarget,
	}
	for _, c := range all {
		if _, ok := FieldContract(c); !ok {
			t.Errorf("FieldContract(%v) missing from the table", c)
		}
	}
}

func TestOrderedConstraints_PreservesOrder(t *testing.T) {
	in := []Constraint{
		{Category: CategoryPairing, Weight: 1},
		{Category: CategorySeparation, Weight: 2},
	}
	out := OrderedConstraints(in)
	if len(out) != 2 || out[0].Category != CategoryPairing || out[1].Category != CategorySeparation {
		t.Errorf("OrderedConstraints() = %+v, want input order preserved", out)
	}
}
