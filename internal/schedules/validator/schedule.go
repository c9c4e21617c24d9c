package validator

import (
	"clubhouse/pkg/logger"
	"clubhouse/pkg/model"
	"clubhouse/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validation.New(log)
	v.RegisterStructValidation(validateEntryTimes, model.ScheduleEntry{})

	log.Info("Schedule validator initialized successfully")

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

// validateEntryTimes enforces start_time < end_time on the entry's date and keeps
// a recurrence from ending before the first occurrence. Malformed values are
// left to the field tags.
func validateEntryTimes(sl validator.StructLevel) {
	entry := sl.Current().Interface().(model.ScheduleEntry)

	if span, err := model.ClockSpan(entry.StartTime, entry.EndTime); err == nil && span <= 0 {
		sl.ReportError(entry.EndTime, "end_time", "EndTime", validation.TagAfter, "start_time")
	}

	if entry.Recurrence == nil {
		return
	}
	first, err := model.ParseDate(entry.Date)
	if err != nil {
		return
	}
	last, err := model.ParseDate(entry.Recurrence.EndDate)
	if err != nil {
		return
	}
	if last.Before(first) {
		sl.ReportError(entry.Recurrence.EndDate, "recurrence.end_date", "EndDate", validation.TagNotBefore, "date")
	}
}

func (v *ScheduleValidator) Validate(entry *model.ScheduleEntry) error {
	return validation.Struct(v.validate, entry)
}
