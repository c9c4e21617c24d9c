package model

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"noon", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(570); got != "09:30" {
		t.Errorf("FormatClock(570) = %q", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) = %q", got)
	}
}

func TestClockSpan(t *testing.T) {
	if span, err := ClockSpan("17:00", "18:30"); err != nil || span != 90 {
		t.Errorf("ClockSpan(17:00, 18:30) = %d, %v", span, err)
	}
	if span, err := ClockSpan("18:00", "17:00"); err != nil || span != -60 {
		t.Errorf("ClockSpan(18:00, 17:00) = %d, %v", span, err)
	}
	if span, err := ClockSpan("10:00", "10:00"); err != nil || span != 0 {
		t.Errorf("ClockSpan(10:00, 10:00) = %d, %v", span, err)
	}
	if _, err := ClockSpan("10:00", "late"); err == nil {
		t.Error("expected error for malformed end time")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Weekday() != time.Saturday {
		t.Errorf("2025-03-15 weekday = %s", d.Weekday())
	}
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Error("expected error for impossible date")
	}
	if _, err := ParseDate("15/03/2025"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestWeekdayOf(t *testing.T) {
	tests := map[time.Weekday]Weekday{
		time.Sunday:    Sunday,
		time.Monday:    Monday,
		time.Wednesday: Wednesday,
		time.Saturday:  Saturday,
	}
	for in, want := range tests {
		if got := WeekdayOf(in); got != want {
			t.Errorf("WeekdayOf(%s) = %s, want %s", in, got, want)
		}
	}
	if !Saturday.IsWeekend() || !Sunday.IsWeekend() || Friday.IsWeekend() {
		t.Error("IsWeekend mismatch")
	}
}

func TestWindowFor(t *testing.T) {
	r := &Resource{Availability: []DayAvailability{
		{Day: Monday, Available: true, Start: "16:00", End: "21:00"},
		{Day: Sunday, Available: false},
	}}

	w, ok := r.WindowFor(Monday)
	if !ok || w.Start != "16:00" || w.End != "21:00" {
		t.Errorf("WindowFor(monday) = %+v, %v", w, ok)
	}
	if w, ok := r.WindowFor(Sunday); !ok || w.Available {
		t.Errorf("WindowFor(sunday) = %+v, %v", w, ok)
	}
	if _, ok := r.WindowFor(Tuesday); ok {
		t.Error("tuesday has no window configured")
	}
}
