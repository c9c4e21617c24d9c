package conflict

import (
	"clubhouse/pkg/model"
	"testing"
)

func entry(id, resource, date, start, end string) *model.ScheduleEntry {
	return &model.ScheduleEntry{
		ID:         id,
		Title:      "U12 practice " + id,
		Team:       "U12",
		ResourceID: resource,
		Date:       date,
		StartTime:  start,
		EndTime:    end,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"identical", 540, 600, 540, 600, true},
		{"partial", 540, 600, 570, 630, true},
		{"contained", 540, 720, 600, 630, true},
		{"touching after", 540, 600, 600, 660, false},
		{"touching before", 600, 660, 540, 600, false},
		{"disjoint", 540, 600, 700, 760, false},
		{"zero length inside", 570, 570, 540, 600, false},
		{"zero length against zero length", 570, 570, 570, 570, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.s1, tt.e1, tt.s2, tt.e2); got != tt.want {
				t.Errorf("Overlaps(%d,%d,%d,%d) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
			}
			if got := Overlaps(tt.s2, tt.e2, tt.s1, tt.e1); got != tt.want {
				t.Errorf("Overlaps should be symmetric for %s", tt.name)
			}
		})
	}
}

func TestDetect_HalfOpenIntervals(t *testing.T) {
	existing := []*model.ScheduleEntry{entry("a", "field-1", "2024-06-01", "09:00", "10:00")}

	backToBack := entry("", "field-1", "2024-06-01", "10:00", "11:00")
	if got := Detect(backToBack, existing); len(got) != 0 {
		t.Errorf("back-to-back entries must not conflict, got %d", len(got))
	}

	overlapping := entry("", "field-1", "2024-06-01", "09:30", "10:30")
	got := Detect(overlapping, existing)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected conflict with a, got %v", got)
	}
}

func TestDetect_ResourceIsolation(t *testing.T) {
	existing := []*model.ScheduleEntry{entry("a", "field-1", "2024-06-01", "09:00", "10:00")}
	candidate := entry("", "field-2", "2024-06-01", "09:00", "10:00")

	if got := Detect(candidate, existing); len(got) != 0 {
		t.Errorf("different resources must never conflict, got %v", got)
	}
}

func TestDetect_DifferentDate(t *testing.T) {
	existing := []*model.ScheduleEntry{entry("a", "field-1", "2024-06-02", "09:00", "10:00")}
	candidate := entry("", "field-1", "2024-06-01", "09:00", "10:00")

	if got := Detect(candidate, existing); len(got) != 0 {
		t.Errorf("different dates must never conflict, got %v", got)
	}
}

func TestDetect_SelfExclusion(t *testing.T) {
	stored := entry("a", "field-1", "2024-06-01", "09:00", "10:00")
	other := entry("b", "field-1", "2024-06-01", "09:45", "11:00")

	moved := entry("a", "field-1", "2024-06-01", "09:15", "10:15")
	got := Detect(moved, []*model.ScheduleEntry{stored, other})
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("expected only b, got %v", got)
	}
}

func TestDetect_UnboundResource(t *testing.T) {
	unbound := entry("u", "", "2024-06-01", "09:00", "10:00")
	bound := entry("a", "field-1", "2024-06-01", "09:00", "10:00")

	if got := Detect(unbound, []*model.ScheduleEntry{bound, entry("v", "", "2024-06-01", "09:00", "10:00")}); len(got) != 0 {
		t.Errorf("unbound candidate must not conflict, got %v", got)
	}

	candidate := entry("", "field-1", "2024-06-01", "09:00", "10:00")
	got := Detect(candidate, []*model.ScheduleEntry{unbound, bound})
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("unbound entries must not be reported, got %v", got)
	}
}

func TestDetect_ZeroDurationNeverConflicts(t *testing.T) {
	existing := []*model.ScheduleEntry{entry("a", "field-1", "2024-06-01", "09:00", "10:00")}

	if got := Detect(entry("", "field-1", "2024-06-01", "09:30", "09:30"), existing); len(got) != 0 {
		t.Errorf("zero-duration candidate reported %v", got)
	}

	zero := []*model.ScheduleEntry{entry("z", "field-1", "2024-06-01", "09:30", "09:30")}
	if got := Detect(entry("", "field-1", "2024-06-01", "09:00", "10:00"), zero); len(got) != 0 {
		t.Errorf("zero-duration existing entry reported %v", got)
	}
}

func TestDetect_SortedByStartAndSkipsMalformed(t *testing.T) {
	existing := []*model.ScheduleEntry{
		entry("late", "field-1", "2024-06-01", "11:00", "12:00"),
		entry("bad", "field-1", "2024-06-01", "soon", "12:00"),
		nil,
		entry("early", "field-1", "2024-06-01", "08:30", "09:30"),
	}
	candidate := entry("", "field-1", "2024-06-01", "09:00", "11:30")

	got := Detect(candidate, existing)
	if len(got) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(got))
	}
	if got[0].ID != "early" || got[1].ID != "late" {
		t.Errorf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
}

func TestDetect_NeverReturnsNil(t *testing.T) {
	if Detect(nil, nil) == nil {
		t.Error("expected empty slice for nil candidate")
	}
	if Detect(entry("", "field-1", "2024-06-01", "09:00", "10:00"), nil) == nil {
		t.Error("expected empty slice when nothing overlaps")
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(entry("a", "field-1", "2024-06-01", "09:00", "10:00"))
	want := `Overlaps "U12 practice a" (U12) on 2024-06-01 from 09:00 to 10:00`
	if got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
