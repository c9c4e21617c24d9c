package service

import (
	resourceserrors "clubhouse/internal/resources/errors"
	"clubhouse/internal/resources/repository"
	"clubhouse/internal/resources/validator"
	"clubhouse/pkg/config"
	apperrors "clubhouse/pkg/errors"
	"clubhouse/pkg/events"
	"clubhouse/pkg/model"
	"clubhouse/pkg/sanitizer"
	"clubhouse/pkg/validation"
	"context"
	"errors"
	"sync"
)

type ResourceService interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	GetAll(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error)
	Update(ctx context.Context, id string, updates *model.ResourceUpdate) (*model.Resource, error)
}

type resourceService struct {
	repo      repository.ResourceRepository
	validator *validator.ResourceValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewResourceService(
	repo repository.ResourceRepository,
	validator *validator.ResourceValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ResourceService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &resourceService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *resourceService) Create(ctx context.Context, res *model.Resource) error {
	s.sanitize(res)
	s.applyDefaults(res)

	if err := s.validator.Validate(res); err != nil {
		s.cfg.Log.Warn("Resource validation failed",
			"name", res.Name,
			"type", res.Type,
			"error", err,
		)
		return validation.ToAppError("Resource validation failed", err)
	}

	if err := s.repo.Create(ctx, res); err != nil {
		s.cfg.Log.Error("Failed to create resource",
			"name", res.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create resource", err)
	}

	s.publish(ctx, events.ResourceCreated, res)
	s.cfg.Log.Info("Resource created successfully",
		"id", res.ID,
		"name", res.Name,
		"type", res.Type,
	)
	return nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve resource")
	}
	return res, nil
}

func (s *resourceService) GetAll(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int64, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)
	filter.Search = sanitizer.TrimAndNormalize(filter.Search)

	if filter.Type != "" && !validResourceType(filter.Type) {
		return nil, 0, apperrors.Validation("Unknown resource type", map[string]any{"type": filter.Type})
	}
	if filter.Status != "" && filter.Status != model.ResourceActive && filter.Status != model.ResourceInactive {
		return nil, 0, apperrors.Validation("Unknown resource status", map[string]any{"status": filter.Status})
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var resources []*model.Resource
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count resources", "error", err)
			errCount = apperrors.Internal("Failed to count resources", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		resources, err = s.repo.FindAll(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to get all resources",
				"limit", filter.Limit,
				"offset", filter.Offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve resources", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if resources == nil {
		resources = []*model.Resource{}
	}
	return resources, count, nil
}

func (s *resourceService) Update(ctx context.Context, id string, updates *model.ResourceUpdate) (*model.Resource, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Resource ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to check resource existence")
	}

	s.sanitizeUpdate(updates)
	merged := mergeResourceUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Resource validation failed",
			"id", id,
			"error", err,
		)
		return nil, validation.ToAppError("Resource validation failed", err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update resource")
	}

	s.publish(ctx, events.ResourceUpdated, merged)
	s.cfg.Log.Info("Resource updated successfully", "id", id, "name", merged.Name, "status", merged.Status)
	return merged, nil
}

func (s *resourceService) mapRepoError(err error, id, message string) error {
	if errors.Is(err, resourceserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Resource", id)
	}
	if errors.Is(err, resourceserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid resource ID format")
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *resourceService) publish(ctx context.Context, eventType string, res *model.Resource) {
	err := s.publisher.Publish(ctx, events.Event{Type: eventType, Key: res.ID, Payload: res})
	if err != nil {
		s.cfg.Log.Warn("Failed to publish resource event",
			"event_type", eventType,
			"id", res.ID,
			"error", err,
		)
	}
}

func (s *resourceService) sanitize(res *model.Resource) {
	res.Name = sanitizer.TrimAndNormalize(res.Name)
	res.Type = model.ResourceType(sanitizer.NormalizeKey(string(res.Type)))
	res.Status = model.ResourceStatus(sanitizer.NormalizeKey(string(res.Status)))
	res.Location = sanitizer.TrimAndNormalize(res.Location)
	res.Description = sanitizer.NormalizeText(res.Description)
	sanitizeAvailability(res.Availability)
}

func (s *resourceService) sanitizeUpdate(updates *model.ResourceUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.TrimAndNormalize(updates.Name)
	}
	if updates.Type != "" {
		updates.Type = model.ResourceType(sanitizer.NormalizeKey(string(updates.Type)))
	}
	if updates.Status != "" {
		updates.Status = model.ResourceStatus(sanitizer.NormalizeKey(string(updates.Status)))
	}
	if updates.Location != nil {
		*updates.Location = sanitizer.TrimAndNormalize(*updates.Location)
	}
	if updates.Description != nil {
		*updates.Description = sanitizer.NormalizeText(*updates.Description)
	}
	if updates.Availability != nil {
		sanitizeAvailability(*updates.Availability)
	}
}

func sanitizeAvailability(days []model.DayAvailability) {
	for i := range days {
		days[i].Day = model.Weekday(sanitizer.NormalizeKey(string(days[i].Day)))
		days[i].Start = sanitizer.NormalizeClock(days[i].Start)
		days[i].End = sanitizer.NormalizeClock(days[i].End)
	}
}

func (s *resourceService) applyDefaults(res *model.Resource) {
	if res.Status == "" {
		res.Status = model.ResourceActive
	}
	if len(res.Availability) == 0 {
		res.Availability = s.defaultAvailability()
	}
}

// defaultAvailability opens every day, weekends with the narrower window.
func (s *resourceService) defaultAvailability() []model.DayAvailability {
	days := make([]model.DayAvailability, 0, len(model.Weekdays))
	for _, day := range model.Weekdays {
		window := model.DayAvailability{
			Day:       day,
			Available: true,
			Start:     s.cfg.DefaultWeekdayOpen,
			End:       s.cfg.DefaultWeekdayClose,
		}
		if day.IsWeekend() {
			window.Start = s.cfg.DefaultWeekendOpen
			window.End = s.cfg.DefaultWeekendClose
		}
		days = append(days, window)
	}
	return days
}

func mergeResourceUpdates(existing *model.Resource, updates *model.ResourceUpdate) *model.Resource {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Availability != nil {
		merged.Availability = *updates.Availability
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt
	return &merged
}

func validResourceType(t model.ResourceType) bool {
	switch t {
	case model.ResourceField, model.ResourceIndoorFacility, model.ResourceGym,
		model.ResourceRoom, model.ResourceEquipmentSet, model.ResourceVehicle:
		return true
	}
	return false
}
