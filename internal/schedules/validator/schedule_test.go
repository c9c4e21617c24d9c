package validator

import (
	"clubhouse/pkg/logger"
	"clubhouse/pkg/model"
	"clubhouse/pkg/validation"
	"errors"
	"strings"
	"testing"
)

func validEntry() *model.ScheduleEntry {
	return &model.ScheduleEntry{
		Title:      "U12 practice",
		Type:       model.ActivityPractice,
		Team:       "U12 Girls",
		Date:       "2024-06-01",
		StartTime:  "09:00",
		EndTime:    "10:30",
		Visibility: model.VisibilityPublic,
		Status:     model.ScheduleConfirmed,
	}
}

func TestValidateTimeRange(t *testing.T) {
	v := NewScheduleValidator(logger.Discard())

	tests := []struct {
		name      string
		start     string
		end       string
		wantError bool
	}{
		{name: "valid range", start: "09:00", end: "18:00"},
		{name: "full day", start: "00:00", end: "23:59"},
		{name: "start equals end", start: "09:00", end: "09:00", wantError: true},
		{name: "start after end", start: "11:00", end: "10:00", wantError: true},
		{name: "invalid start hour", start: "25:00", end: "18:00", wantError: true},
		{name: "invalid end minute", start: "09:00", end: "18:60", wantError: true},
		{name: "wrong separator", start: "09-00", end: "18:00", wantError: true},
		{name: "missing start", start: "", end: "18:00", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			entry.StartTime = tt.start
			entry.EndTime = tt.end

			err := v.Validate(entry)
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidate_EndBeforeStartMessage(t *testing.T) {
	v := NewScheduleValidator(logger.Discard())
	entry := validEntry()
	entry.StartTime = "10:00"
	entry.EndTime = "10:00"

	err := v.Validate(entry)
	var verrs validation.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) != 1 {
		t.Fatalf("expected one validation error, got %v", err)
	}
	if verrs[0].Field != "end_time" || verrs[0].Message != "end_time must be after start_time" {
		t.Errorf("unexpected error %+v", verrs[0])
	}
}

func TestValidate_RequiredFields(t *testing.T) {
	v := NewScheduleValidator(logger.Discard())

	err := v.Validate(&model.ScheduleEntry{})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"title", "type", "team", "date", "start_time", "end_time"} {
		if !strings.Contains(err.Error(), field+" is required") {
			t.Errorf("missing required error for %s in %q", field, err.Error())
		}
	}
}

func TestValidate_Enums(t *testing.T) {
	v := NewScheduleValidator(logger.Discard())

	tests := []struct {
		name   string
		mutate func(e *model.ScheduleEntry)
	}{
		{"type", func(e *model.ScheduleEntry) { e.Type = "party" }},
		{"visibility", func(e *model.ScheduleEntry) { e.Visibility = "secret" }},
		{"status", func(e *model.ScheduleEntry) { e.Status = "maybe" }},
		{"resource id", func(e *model.ScheduleEntry) { e.ResourceID = "field-1" }},
		{"date", func(e *model.ScheduleEntry) { e.Date = "01/06/2024" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(entry)
			if err := v.Validate(entry); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_Recurrence(t *testing.T) {
	v := NewScheduleValidator(logger.Discard())

	entry := validEntry()
	entry.Recurrence = &model.Recurrence{Pattern: model.RecurWeekly, EndDate: "2024-08-31"}
	if err := v.Validate(entry); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	entry.Recurrence = &model.Recurrence{Pattern: model.RecurWeekly, EndDate: "2024-05-01"}
	err := v.Validate(entry)
	if err == nil || !strings.Contains(err.Error(), "recurrence.end_date must not be before date") {
		t.Errorf("expected end date error, got %v", err)
	}

	entry.Recurrence = &model.Recurrence{Pattern: "yearly", EndDate: "2024-08-31"}
	if err := v.Validate(entry); err == nil {
		t.Error("expected pattern error")
	}
}
