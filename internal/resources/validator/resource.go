package validator

import (
	"clubhouse/pkg/logger"
	"clubhouse/pkg/model"
	"clubhouse/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type ResourceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewResourceValidator(log *logger.Logger) *ResourceValidator {
	v := validation.New(log)
	v.RegisterStructValidation(validateDayAvailability, model.DayAvailability{})

	log.Info("Resource validator initialized successfully")

	return &ResourceValidator{
		validate: v,
		logger:   log,
	}
}

// An available day needs both ends of its window, and the window must not be empty.
func validateDayAvailability(sl validator.StructLevel) {
	day := sl.Current().Interface().(model.DayAvailability)
	if !day.Available {
		return
	}
	if day.Start == "" {
		sl.ReportError(day.Start, "start", "Start", "required", "")
	}
	if day.End == "" {
		sl.ReportError(day.End, "end", "End", "required", "")
	}
	if day.Start == "" || day.End == "" {
		return
	}

	span, err := model.ClockSpan(day.Start, day.End)
	if err != nil {
		return
	}
	if span <= 0 {
		sl.ReportError(day.End, "end", "End", validation.TagAfter, "start")
	}
}

func (v *ResourceValidator) Validate(res *model.Resource) error {
	return validation.Struct(v.validate, res)
}
