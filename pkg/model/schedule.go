package model

import "time"

type ActivityType string

const (
	ActivityPractice    ActivityType = "practice"
	ActivityMatch       ActivityType = "match"
	ActivityTraining    ActivityType = "training"
	ActivityEvent       ActivityType = "event"
	ActivityMeeting     ActivityType = "meeting"
	ActivityTryout      ActivityType = "tryout"
	ActivityCamp        ActivityType = "camp"
	ActivityMaintenance ActivityType = "maintenance"
	ActivityOther       ActivityType = "other"
)

type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityMembersOnly Visibility = "members_only"
	VisibilityInternal    Visibility = "internal"
)

type ScheduleStatus string

const (
	ScheduleConfirmed ScheduleStatus = "confirmed"
	ScheduleTentative ScheduleStatus = "tentative"
	ScheduleCancelled ScheduleStatus = "cancelled"
)

type RecurrencePattern string

const (
	RecurDaily    RecurrencePattern = "daily"
	RecurWeekly   RecurrencePattern = "weekly"
	RecurBiweekly RecurrencePattern = "biweekly"
	RecurMonthly  RecurrencePattern = "monthly"
)

// Recurrence is stored as metadata on a single entry. Occurrences are not
// materialized; the conflict detector only sees concrete entries.
type Recurrence struct {
	Pattern RecurrencePattern `json:"pattern" bson:"pattern" validate:"required,oneof=daily weekly biweekly monthly"`
	EndDate string            `json:"end_date" bson:"end_date" validate:"required,calendar_date"`
}

type ScheduleEntry struct {
	ID          string         `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title       string         `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Type        ActivityType   `json:"type" bson:"type" validate:"required,oneof=practice match training event meeting tryout camp maintenance other"`
	Team        string         `json:"team" bson:"team" validate:"required,max=100"`
	Date        string         `json:"date" bson:"date" validate:"required,calendar_date"`
	StartTime   string         `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime     string         `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	DurationMin int            `json:"duration" bson:"duration" validate:"min=0,max=1440"`
	ResourceID  string         `json:"resource_id,omitempty" bson:"resource_id,omitempty" validate:"omitempty,mongodb"`
	Visibility  Visibility     `json:"visibility" bson:"visibility" validate:"required,oneof=public members_only internal"`
	Status      ScheduleStatus `json:"status" bson:"status" validate:"required,oneof=confirmed tentative cancelled"`
	Recurrence  *Recurrence    `json:"recurrence,omitempty" bson:"recurrence,omitempty" validate:"omitempty"`
	Location    string         `json:"location,omitempty" bson:"location,omitempty" validate:"omitempty,max=200"`
	Notes       string         `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt   time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" bson:"updated_at"`
}

// ScheduleEntryUpdate is a partial entry. Pointer fields distinguish "unset"
// from "clear" where clearing is meaningful. ClearRecurrence drops stored
// recurrence metadata unless Recurrence is also given.
type ScheduleEntryUpdate struct {
	Title           string         `json:"title,omitempty"`
	Type            ActivityType   `json:"type,omitempty"`
	Team            string         `json:"team,omitempty"`
	Date            string         `json:"date,omitempty"`
	StartTime       string         `json:"start_time,omitempty"`
	EndTime         string         `json:"end_time,omitempty"`
	DurationMin     *int           `json:"duration,omitempty"`
	ResourceID      *string        `json:"resource_id,omitempty"`
	Visibility      Visibility     `json:"visibility,omitempty"`
	Status          ScheduleStatus `json:"status,omitempty"`
	Recurrence      *Recurrence    `json:"recurrence,omitempty"`
	ClearRecurrence bool           `json:"clear_recurrence,omitempty"`
	Location        *string        `json:"location,omitempty"`
	Notes           *string        `json:"notes,omitempty"`
}

type ScheduleFilter struct {
	Date       string
	From       string
	To         string
	Team       string
	ResourceID string
	Type       ActivityType
	Status     ScheduleStatus
	Limit      int
	Offset     int64
}

// ScheduleResult is returned by create and update. Conflicts are advisory and
// never prevent the entry from being stored.
type ScheduleResult struct {
	Entry     *ScheduleEntry   `json:"entry"`
	Conflicts []*ScheduleEntry `json:"conflicts"`
	Warnings  []string         `json:"warnings"`
}
