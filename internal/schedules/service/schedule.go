package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	resourceserrors "clubhouse/internal/resources/errors"
	"clubhouse/internal/schedules/conflict"
	scheduleerrors "clubhouse/internal/schedules/errors"
	"clubhouse/internal/schedules/repository"
	"clubhouse/internal/schedules/validator"
	"clubhouse/pkg/config"
	apperrors "clubhouse/pkg/errors"
	"clubhouse/pkg/events"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/model"
	"clubhouse/pkg/sanitizer"
	"clubhouse/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// ResourceLookup resolves the resource an entry is bound to.
type ResourceLookup interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
}

type ScheduleService interface {
	Schedule(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleResult, error)
	GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error)
	GetAll(ctx context.Context, filter model.ScheduleFilter) ([]*model.ScheduleEntry, int64, error)
	Reschedule(ctx context.Context, id string, updates *model.ScheduleEntryUpdate) (*model.ScheduleResult, error)
	Cancel(ctx context.Context, id string) error
	PreviewConflicts(ctx context.Context, candidate *model.ScheduleEntry) (*model.ScheduleResult, error)
	ConflictsFor(ctx context.Context, id string) (*model.ScheduleResult, error)
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	resources ResourceLookup
	validator *validator.ScheduleValidator
	publisher events.Publisher
	metrics   *metrics.Metrics
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	resources ResourceLookup,
	validator *validator.ScheduleValidator,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) ScheduleService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &scheduleService{
		repo:      repo,
		resources: resources,
		validator: validator,
		publisher: publisher,
		metrics:   m,
		cfg:       cfg,
	}
}

func (s *scheduleService) Schedule(ctx context.Context, entry *model.ScheduleEntry) (*model.ScheduleResult, error) {
	s.sanitize(entry)
	s.applyDefaults(entry)

	if err := s.validator.Validate(entry); err != nil {
		s.cfg.Log.Warn("Schedule entry validation failed",
			"title", entry.Title,
			"team", entry.Team,
			"error", err,
		)
		return nil, validation.ToAppError("Schedule entry validation failed", err)
	}

	notes, err := s.checkResource(ctx, entry)
	if err != nil {
		return nil, err
	}

	var conflicts []*model.ScheduleEntry
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.snapshot(sessCtx, entry)
		if err != nil {
			return err
		}
		conflicts = conflict.Detect(entry, existing)

		if err := s.repo.Create(sessCtx, entry); err != nil {
			return apperrors.Internal("Failed to create schedule entry", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to schedule activity",
			"title", entry.Title,
			"team", entry.Team,
			"error", err,
		)
		return nil, err
	}

	s.metrics.RecordConflicts("schedule", len(conflicts))
	s.publish(ctx, events.ScheduleCreated, entry.ID, entry)
	s.cfg.Log.Info("Schedule entry created successfully",
		"id", entry.ID,
		"title", entry.Title,
		"date", entry.Date,
		"resource_id", entry.ResourceID,
		"conflicts", len(conflicts),
	)
	return newResult(entry, conflicts, notes), nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule entry ID cannot be empty")
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve schedule entry")
	}
	return entry, nil
}

func (s *scheduleService) GetAll(ctx context.Context, filter model.ScheduleFilter) ([]*model.ScheduleEntry, int64, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var entries []*model.ScheduleEntry
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count schedule entries", "error", err)
			errCount = apperrors.Internal("Failed to count schedule entries", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		entries, err = s.repo.FindAll(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to list schedule entries",
				"limit", filter.Limit,
				"offset", filter.Offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve schedule entries", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if entries == nil {
		entries = []*model.ScheduleEntry{}
	}
	return entries, count, nil
}

func (s *scheduleService) Reschedule(ctx context.Context, id string, updates *model.ScheduleEntryUpdate) (*model.ScheduleResult, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Schedule entry ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check schedule entry existence")
	}

	s.sanitizeUpdate(updates)
	merged := mergeEntryUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Schedule entry validation failed",
			"id", id,
			"title", merged.Title,
			"error", err,
		)
		return nil, validation.ToAppError("Schedule entry validation failed", err)
	}

	notes, err := s.checkResource(ctx, merged)
	if err != nil {
		return nil, err
	}

	var conflicts []*model.ScheduleEntry
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		sameDay, err := s.snapshot(sessCtx, merged)
		if err != nil {
			return err
		}
		conflicts = conflict.Detect(merged, sameDay)

		if err := s.repo.Update(sessCtx, id, merged); err != nil {
			return s.mapRepoError(err, id, "Failed to update schedule entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordConflicts("reschedule", len(conflicts))
	s.publish(ctx, events.ScheduleRescheduled, id, merged)
	s.cfg.Log.Info("Schedule entry updated successfully",
		"id", id,
		"date", merged.Date,
		"start_time", merged.StartTime,
		"end_time", merged.EndTime,
		"conflicts", len(conflicts),
	)
	return newResult(merged, conflicts, notes), nil
}

// Cancel removes the entry. There is no soft-cancel path; setting status to
// cancelled through Reschedule keeps the entry on the calendar instead.
func (s *scheduleService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Schedule entry ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapRepoError(err, id, "Failed to delete schedule entry")
	}

	s.publish(ctx, events.ScheduleCancelled, id, map[string]string{"id": id})
	s.cfg.Log.Info("Schedule entry deleted successfully", "id", id)
	return nil
}

// PreviewConflicts validates candidate and reports what it would overlap
// without storing anything. Set candidate.ID to preview an edit.
func (s *scheduleService) PreviewConflicts(ctx context.Context, candidate *model.ScheduleEntry) (*model.ScheduleResult, error) {
	s.sanitize(candidate)
	s.applyDefaults(candidate)

	if err := s.validator.Validate(candidate); err != nil {
		return nil, validation.ToAppError("Schedule entry validation failed", err)
	}

	notes, err := s.checkResource(ctx, candidate)
	if err != nil {
		return nil, err
	}

	existing, err := s.snapshot(ctx, candidate)
	if err != nil {
		return nil, err
	}
	conflicts := conflict.Detect(candidate, existing)
	s.metrics.RecordConflicts("preview", len(conflicts))
	return newResult(candidate, conflicts, notes), nil
}

func (s *scheduleService) ConflictsFor(ctx context.Context, id string) (*model.ScheduleResult, error) {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.snapshot(ctx, entry)
	if err != nil {
		return nil, err
	}
	return newResult(entry, conflict.Detect(entry, existing), nil), nil
}

// snapshot loads the entries the detector compares against. Entries without a
// resource are never checked, so nothing is loaded for them.
func (s *scheduleService) snapshot(ctx context.Context, entry *model.ScheduleEntry) ([]*model.ScheduleEntry, error) {
	if entry.ResourceID == "" {
		return nil, nil
	}
	existing, err := s.repo.FindSameDay(ctx, entry.ResourceID, entry.Date)
	if err != nil {
		s.cfg.Log.Error("Failed to load same-day entries",
			"resource_id", entry.ResourceID,
			"date", entry.Date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to check for conflicting entries", err)
	}
	return existing, nil
}

// checkResource rejects references to unknown resources and returns advisory
// notes when the resource is inactive or closed at the entry's time.
func (s *scheduleService) checkResource(ctx context.Context, entry *model.ScheduleEntry) ([]string, error) {
	if entry.ResourceID == "" || s.resources == nil {
		return nil, nil
	}

	res, err := s.resources.FindByID(ctx, entry.ResourceID)
	if err != nil {
		if errors.Is(err, resourceserrors.ErrNotFound) || errors.Is(err, resourceserrors.ErrInvalidID) {
			return nil, apperrors.Validation("resource_id does not reference a known resource", map[string]any{
				"resource_id": entry.ResourceID,
			})
		}
		s.cfg.Log.Error("Failed to load resource",
			"resource_id", entry.ResourceID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load resource", err)
	}

	var notes []string
	if res.Status == model.ResourceInactive {
		notes = append(notes, fmt.Sprintf("Resource %q is inactive", res.Name))
	}

	date, err := model.ParseDate(entry.Date)
	if err != nil {
		return notes, nil
	}
	day := model.WeekdayOf(date.Weekday())
	window, ok := res.WindowFor(day)
	switch {
	case !ok || !window.Available:
		notes = append(notes, fmt.Sprintf("Resource %q is not available on %s", res.Name, day))
	case entry.StartTime < window.Start || entry.EndTime > window.End:
		notes = append(notes, fmt.Sprintf("%s-%s falls outside the availability of %q on %s (%s-%s)",
			entry.StartTime, entry.EndTime, res.Name, day, window.Start, window.End))
	}
	return notes, nil
}

func (s *scheduleService) publish(ctx context.Context, eventType, key string, payload any) {
	if err := s.publisher.Publish(ctx, events.Event{Type: eventType, Key: key, Payload: payload}); err != nil {
		s.cfg.Log.Warn("Failed to publish schedule event",
			"event_type", eventType,
			"id", key,
			"error", err,
		)
	}
}

func (s *scheduleService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, scheduleerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Schedule entry", id)
	}
	if errors.Is(err, scheduleerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid schedule entry ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *scheduleService) sanitize(entry *model.ScheduleEntry) {
	entry.Title = sanitizer.TrimAndNormalize(entry.Title)
	entry.Team = sanitizer.TrimAndNormalize(entry.Team)
	entry.Type = model.ActivityType(sanitizer.NormalizeKey(string(entry.Type)))
	entry.Visibility = model.Visibility(sanitizer.NormalizeKey(string(entry.Visibility)))
	entry.Status = model.ScheduleStatus(sanitizer.NormalizeKey(string(entry.Status)))
	entry.Date = sanitizer.TrimAndNormalize(entry.Date)
	entry.StartTime = sanitizer.NormalizeClock(entry.StartTime)
	entry.EndTime = sanitizer.NormalizeClock(entry.EndTime)
	entry.ResourceID = sanitizer.TrimAndNormalize(entry.ResourceID)
	entry.Location = sanitizer.TrimAndNormalize(entry.Location)
	entry.Notes = sanitizer.NormalizeText(entry.Notes)
	if entry.Recurrence != nil {
		entry.Recurrence.Pattern = model.RecurrencePattern(sanitizer.NormalizeKey(string(entry.Recurrence.Pattern)))
		entry.Recurrence.EndDate = sanitizer.TrimAndNormalize(entry.Recurrence.EndDate)
	}
}

func (s *scheduleService) sanitizeUpdate(updates *model.ScheduleEntryUpdate) {
	updates.Title = sanitizer.TrimAndNormalize(updates.Title)
	updates.Team = sanitizer.TrimAndNormalize(updates.Team)
	updates.Type = model.ActivityType(sanitizer.NormalizeKey(string(updates.Type)))
	updates.Visibility = model.Visibility(sanitizer.NormalizeKey(string(updates.Visibility)))
	updates.Status = model.ScheduleStatus(sanitizer.NormalizeKey(string(updates.Status)))
	updates.Date = sanitizer.TrimAndNormalize(updates.Date)
	updates.StartTime = sanitizer.NormalizeClock(updates.StartTime)
	updates.EndTime = sanitizer.NormalizeClock(updates.EndTime)
	if updates.ResourceID != nil {
		*updates.ResourceID = sanitizer.TrimAndNormalize(*updates.ResourceID)
	}
	if updates.Location != nil {
		*updates.Location = sanitizer.TrimAndNormalize(*updates.Location)
	}
	if updates.Notes != nil {
		*updates.Notes = sanitizer.NormalizeText(*updates.Notes)
	}
	if updates.Recurrence != nil {
		updates.Recurrence.Pattern = model.RecurrencePattern(sanitizer.NormalizeKey(string(updates.Recurrence.Pattern)))
		updates.Recurrence.EndDate = sanitizer.TrimAndNormalize(updates.Recurrence.EndDate)
	}
}

func (s *scheduleService) applyDefaults(entry *model.ScheduleEntry) {
	if entry.Visibility == "" {
		entry.Visibility = model.VisibilityPublic
	}
	if entry.Status == "" {
		entry.Status = model.ScheduleConfirmed
	}
	if entry.DurationMin == 0 {
		entry.DurationMin = durationOf(entry)
	}
}

func mergeEntryUpdates(existing *model.ScheduleEntry, updates *model.ScheduleEntryUpdate) *model.ScheduleEntry {
	merged := *existing

	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.Team != "" {
		merged.Team = updates.Team
	}
	if updates.Date != "" {
		merged.Date = updates.Date
	}
	timesChanged := false
	if updates.StartTime != "" {
		timesChanged = timesChanged || updates.StartTime != existing.StartTime
		merged.StartTime = updates.StartTime
	}
	if updates.EndTime != "" {
		timesChanged = timesChanged || updates.EndTime != existing.EndTime
		merged.EndTime = updates.EndTime
	}
	switch {
	case updates.DurationMin != nil:
		merged.DurationMin = *updates.DurationMin
	case timesChanged:
		merged.DurationMin = durationOf(&merged)
	}
	if updates.ResourceID != nil {
		merged.ResourceID = *updates.ResourceID
	}
	if updates.Visibility != "" {
		merged.Visibility = updates.Visibility
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	switch {
	case updates.Recurrence != nil:
		recurrence := *updates.Recurrence
		merged.Recurrence = &recurrence
	case updates.ClearRecurrence:
		merged.Recurrence = nil
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Notes != nil {
		merged.Notes = *updates.Notes
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

// durationOf is informational only; start and end stay authoritative.
func durationOf(entry *model.ScheduleEntry) int {
	span, err := model.ClockSpan(entry.StartTime, entry.EndTime)
	if err != nil || span < 0 {
		return 0
	}
	return span
}

func normalizeFilter(filter model.ScheduleFilter) (model.ScheduleFilter, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)
	filter.Team = sanitizer.TrimAndNormalize(filter.Team)
	filter.ResourceID = sanitizer.TrimAndNormalize(filter.ResourceID)

	for name, value := range map[string]string{"date": filter.Date, "from": filter.From, "to": filter.To} {
		if value == "" {
			continue
		}
		if _, err := model.ParseDate(value); err != nil {
			return filter, apperrors.Validation(fmt.Sprintf("%s must be a date in YYYY-MM-DD format", name), map[string]any{name: value})
		}
	}
	if filter.From != "" && filter.To != "" && filter.From > filter.To {
		return filter, apperrors.Validation("from must not be after to", map[string]any{"from": filter.From, "to": filter.To})
	}

	if filter.Type != "" && !validActivityType(filter.Type) {
		return filter, apperrors.Validation("Unknown activity type", map[string]any{"type": filter.Type})
	}
	switch filter.Status {
	case "", model.ScheduleConfirmed, model.ScheduleTentative, model.ScheduleCancelled:
	default:
		return filter, apperrors.Validation("Unknown schedule status", map[string]any{"status": filter.Status})
	}
	return filter, nil
}

func validActivityType(t model.ActivityType) bool {
	switch t {
	case model.ActivityPractice, model.ActivityMatch, model.ActivityTraining, model.ActivityEvent,
		model.ActivityMeeting, model.ActivityTryout, model.ActivityCamp, model.ActivityMaintenance,
		model.ActivityOther:
		return true
	}
	return false
}

func newResult(entry *model.ScheduleEntry, conflicts []*model.ScheduleEntry, notes []string) *model.ScheduleResult {
	if conflicts == nil {
		conflicts = []*model.ScheduleEntry{}
	}
	warnings := make([]string, 0, len(conflicts)+len(notes))
	for _, c := range conflicts {
		warnings = append(warnings, conflict.Describe(c))
	}
	warnings = append(warnings, notes...)
	return &model.ScheduleResult{
		Entry:     entry,
		Conflicts: conflicts,
		Warnings:  warnings,
	}
}
