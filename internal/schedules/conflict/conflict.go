// Package conflict finds schedule entries that compete for the same resource.
//
// Detection is advisory. Callers surface the result as a warning and store the
// entry anyway, so staff can double-book a resource on purpose.
package conflict

import (
	"clubhouse/pkg/model"
	"fmt"
	"sort"
)

// Overlaps reports whether [s1, e1) and [s2, e2) intersect. Intervals that only
// touch (e1 == s2) do not overlap, and an empty interval overlaps nothing.
func Overlaps(s1, e1, s2, e2 int) bool {
	if s1 >= e1 || s2 >= e2 {
		return false
	}
	return s1 < e2 && e1 > s2
}

// Detect returns the entries in existing that share the candidate's resource and
// date and whose time ranges overlap it, ordered by start time. A candidate
// without a resource never conflicts, and an entry never conflicts with itself.
func Detect(candidate *model.ScheduleEntry, existing []*model.ScheduleEntry) []*model.ScheduleEntry {
	conflicts := []*model.ScheduleEntry{}
	if candidate == nil || candidate.ResourceID == "" {
		return conflicts
	}

	start, end, ok := span(candidate)
	if !ok {
		return conflicts
	}

	for _, e := range existing {
		if e == nil || e.ResourceID != candidate.ResourceID || e.Date != candidate.Date {
			continue
		}
		if candidate.ID != "" && e.ID == candidate.ID {
			continue
		}
		s, f, ok := span(e)
		if !ok {
			continue
		}
		if Overlaps(start, end, s, f) {
			conflicts = append(conflicts, e)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime < conflicts[j].StartTime
	})
	return conflicts
}

// Describe renders a conflict as a line staff can act on.
func Describe(e *model.ScheduleEntry) string {
	return fmt.Sprintf("Overlaps %q (%s) on %s from %s to %s", e.Title, e.Team, e.Date, e.StartTime, e.EndTime)
}

func span(e *model.ScheduleEntry) (int, int, bool) {
	s, err := model.ParseClock(e.StartTime)
	if err != nil {
		return 0, 0, false
	}
	f, err := model.ParseClock(e.EndTime)
	if err != nil {
		return 0, 0, false
	}
	return s, f, true
}
