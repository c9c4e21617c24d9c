package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	apperrors "clubhouse/pkg/errors"
	"clubhouse/pkg/logger"
	"clubhouse/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Tags reported by struct-level rules comparing two fields. The param names
// the other field.
const (
	TagAfter     = "after"
	TagNotBefore = "not_before"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Messages returns the human readable reasons, one per failing field.
func (v ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v))
	for _, err := range v {
		out = append(out, err.Message)
	}
	return out
}

// New returns a validator that reports JSON field names and knows the
// clock_time and calendar_date tags.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}

	return v
}

func validateClockTime(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if len(s) != len(model.ClockLayout) {
		return false
	}
	_, err := time.Parse(model.ClockLayout, s)
	return err == nil
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if len(s) != len(model.DateLayout) {
		return false
	}
	_, err := time.Parse(model.DateLayout, s)
	return err == nil
}

// Struct runs v over s and translates any failures into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		field := fieldPath(err)
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "required_if":
			message = fmt.Sprintf("%s is required when %s", field, requiredIfCondition(err.Param()))
		case "min":
			message = fmt.Sprintf("%s must be at least %s%s", field, err.Param(), unitFor(err.Kind()))
		case "max":
			message = fmt.Sprintf("%s must be at most %s%s", field, err.Param(), unitFor(err.Kind()))
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(err.Param(), " ", ", "))
		case "clock_time":
			message = fmt.Sprintf("%s must be a time in HH:MM 24-hour format", field)
		case "calendar_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid id", field)
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "unique":
			message = fmt.Sprintf("%s must not contain duplicates", field)
		case TagAfter:
			message = fmt.Sprintf("%s must be after %s", field, err.Param())
		case TagNotBefore:
			message = fmt.Sprintf("%s must not be before %s", field, err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   field,
			Message: message,
		})
	}

	return validationErrors
}

// ToAppError converts a validation failure into the API error reported to
// callers. The message always carries the field reasons.
func ToAppError(message string, err error) error {
	if err == nil {
		return nil
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"error": err.Error()})
	}
	if len(verrs) == 1 {
		message = verrs[0].Message
	} else {
		message = fmt.Sprintf("%s: %s", message, strings.Join(verrs.Messages(), "; "))
	}
	return apperrors.Validation(message, map[string]any{"fields": []ValidationError(verrs)})
}

// fieldPath drops the root struct name: "ScheduleEntry.recurrence.end_date" -> "recurrence.end_date".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

func requiredIfCondition(param string) string {
	parts := strings.Fields(param)
	if len(parts) == 2 {
		return fmt.Sprintf("%s is %s", strings.ToLower(parts[0]), parts[1])
	}
	return param
}

func unitFor(kind reflect.Kind) string {
	switch kind {
	case reflect.String:
		return " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return " items"
	}
	return ""
}
