package model

import "testing"

func TestNewMonth_DaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  int
	}{
		{"31日の月", 2026, 1, 31},
		{"30日の月", 2026, 4, 30},
		{"平年2月", 2025, 2, 28},
		{"うるう年2月", 2024, 2, 29},
		{"世紀year（平年）", 1900, 2, 28},
		{"世紀year（うるう年）", 2000, 2, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMonth(tt.year, tt.month, Monday)
			if err != nil {
				t.Fatalf("NewMonth() error = %v", err)
			}
			if m.Days != tt.want {
				t.Errorf("Days = %d, want %d", m.Days, tt.want)
			}
		})
	}
}

func TestNewMonth_InvalidMonth(t *testing.T) {
	if _, err := NewMonth(2026, 0, Monday); err == nil {
		t.Error("expected error for month 0")
	}
	if _, err := NewMonth(2026, 13, Monday); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestMonth_WeekdayOf(t *testing.T) {
	m, err := NewMonth(2026, 7, Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	if got := m.WeekdayOf(1); got != Wednesday {
		t.Errorf("WeekdayOf(1) = %v, want %v", got, Wednesday)
	}
	if got := m.WeekdayOf(2); got != Thursday {
		t.Errorf("WeekdayOf(2) = %v, want %v", got, Thursday)
	}
	// day 1 is Wednesday, so day 5 (1+4) wraps to Sunday
	if got := m.WeekdayOf(5); got != Sunday {
		t.Errorf("WeekdayOf(5) = %v, want %v", got, Sunday)
	}
}

func TestMonth_IsSunday(t *testing.T) {
	m, err := NewMonth(2026, 7, Wednesday)
	if err != nil {
		t.Fatalf("NewMonth() error = %v", err)
	}
	if !m.IsSunday(5) {
		t.Error("day 5 should be Sunday")
	}
	if m.IsSunday(1) {
		t.Error("day 1 should not be Sunday")
	}
}

func TestWeekdayFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Weekday
		ok    bool
	}{
		{"月", Monday, true},
		{"日", Sunday, true},
		{"土／日", Weekday(0), false},
		{"？", Weekday(0), false},
	}
	for _, tt := range tests {
		w, ok := WeekdayFromLabel(tt.label)
		if ok != tt.ok {
			t.Errorf("WeekdayFromLabel(%q) ok = %v, want %v", tt.label, ok, tt.ok)
			continue
		}
		if ok && w != tt.want {
			t.Errorf("WeekdayFromLabel(%q) = %v, want %v", tt.label, w, tt.want)
		}
	}
}
