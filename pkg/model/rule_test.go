package model

import "testing"

func TestRangeFromValue(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want Range
	}{
		{"整数", 3.0, Range{Min: 3, Max: 3}},
		{"半整数（v.5）", 2.5, Range{Min: 2, Max: 3}},
		{"ゼロ", 0.0, Range{Min: 0, Max: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RangeFromValue(tt.v)
			if got != tt.want {
				t.Errorf("RangeFromValue(%v) = %+v, want %+v", tt.v, got, tt.want)
			}
		})
	}
}

func TestRange_Exact(t *testing.T) {
	if !(Range{Min: 2, Max: 2}).Exact() {
		t.Error("Range{2,2}.Exact() should be true")
	}
	if (Range{Min: 2, Max: 3}).Exact() {
		t.Error("Range{2,3}.Exact() should be false")
	}
}

func TestRequiredPerDay_DayRangeFor(t *testing.T) {
	m, err := NewMonth(2026, 7, Wednesday) // day 5 is Sunday
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	r := RequiredPerDay{
		DayWeekday: Range{Min: 3, Max: 3},
		DaySunday:  Range{Min: 2, Max: 2},
	}
	if got := r.DayRangeFor(m, 1); got != r.DayWeekday {
		t.Errorf("DayRangeFor(weekday) = %+v, want %+v", got, r.DayWeekday)
	}
	if got := r.DayRangeFor(m, 5); got != r.DaySunday {
		t.Errorf("DayRangeFor(sunday) = %+v, want %+v", got, r.DaySunday)
	}
}
