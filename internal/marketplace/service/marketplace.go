package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	marketerrors "clubhouse/internal/marketplace/errors"
	"clubhouse/internal/marketplace/repository"
	"clubhouse/internal/marketplace/validator"
	"clubhouse/pkg/config"
	apperrors "clubhouse/pkg/errors"
	"clubhouse/pkg/events"
	"clubhouse/pkg/metrics"
	"clubhouse/pkg/middleware"
	"clubhouse/pkg/model"
	"clubhouse/pkg/sanitizer"
	"clubhouse/pkg/validation"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.mongodb.org/mongo-driver/mongo"
)

type MarketplaceService interface {
	Submit(ctx context.Context, item *model.MarketplaceItem) (*model.MarketplaceItem, error)
	GetByID(ctx context.Context, id string) (*model.MarketplaceItem, error)
	Flag(ctx context.Context, id string, report *model.FlagReport) (*model.Flag, error)
	List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int64, error)
	ChangeStatus(ctx context.Context, id string, change *model.StatusChange) (*model.MarketplaceItem, error)
	ResolveFlag(ctx context.Context, id string, resolution *model.FlagResolution) (*model.MarketplaceItem, error)
	Restore(ctx context.Context, id string) (*model.MarketplaceItem, error)
	Delete(ctx context.Context, id string) error
	BulkTransition(ctx context.Context, req *model.BulkStatusChange) (*model.BulkResult, error)
	BulkDelete(ctx context.Context, req *model.BulkDelete) (*model.BulkDeleteResult, error)
	Statistics(ctx context.Context) (*model.MarketplaceStatistics, error)
}

type marketplaceService struct {
	repo      repository.MarketplaceRepository
	validator *validator.MarketplaceValidator
	publisher events.Publisher
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	cfg       *config.Config
}

func NewMarketplaceService(
	repo repository.MarketplaceRepository,
	validator *validator.MarketplaceValidator,
	publisher events.Publisher,
	m *metrics.Metrics,
	clock clockwork.Clock,
	cfg *config.Config,
) MarketplaceService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &marketplaceService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		metrics:   m,
		clock:     clock,
		cfg:       cfg,
	}
}

// Submit stores a seller's listing. New listings always start pending with
// no flags and no moderation history.
func (s *marketplaceService) Submit(ctx context.Context, item *model.MarketplaceItem) (*model.MarketplaceItem, error) {
	s.sanitize(item)

	now := s.now()
	item.ID = ""
	item.Status = model.ItemPending
	item.Flags = []model.Flag{}
	item.RejectionReason = ""
	item.ModeratedBy = ""
	item.ModeratedAt = nil
	item.Views = 0
	item.Favorites = 0
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.validator.ValidateItem(item); err != nil {
		s.cfg.Log.Warn("Marketplace item validation failed",
			"title", item.Title,
			"seller_ref", item.SellerRef,
			"error", err,
		)
		return nil, validation.ToAppError("Marketplace item validation failed", err)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.cfg.Log.Error("Failed to create marketplace item",
			"title", item.Title,
			"seller_ref", item.SellerRef,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create marketplace item", err)
	}

	s.publish(ctx, events.ItemSubmitted, item.ID, item)
	s.cfg.Log.Info("Marketplace item submitted",
		"id", item.ID,
		"seller_ref", item.SellerRef,
		"category", item.Category,
	)
	return item, nil
}

func (s *marketplaceService) GetByID(ctx context.Context, id string) (*model.MarketplaceItem, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Marketplace item ID cannot be empty")
	}

	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err, id, "Failed to retrieve marketplace item")
	}
	return item, nil
}

// Flag attaches a report to an item in any status.
func (s *marketplaceService) Flag(ctx context.Context, id string, report *model.FlagReport) (*model.Flag, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Marketplace item ID cannot be empty")
	}

	report.Reason = model.FlagReason(sanitizer.NormalizeKey(string(report.Reason)))
	report.Description = sanitizer.NormalizeText(report.Description)
	report.ReporterRef = sanitizer.TrimAndNormalize(report.ReporterRef)
	if err := s.validator.ValidateFlagReport(report); err != nil {
		return nil, validation.ToAppError("Flag validation failed", err)
	}

	flag := model.Flag{
		ID:          uuid.NewString(),
		Reason:      report.Reason,
		Description: report.Description,
		ReporterRef: report.ReporterRef,
		FlaggedAt:   s.now(),
	}
	if err := s.repo.AddFlag(ctx, id, flag); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to flag marketplace item")
	}

	s.publish(ctx, events.ItemFlagged, id, map[string]any{"item_id": id, "flag": flag})
	s.cfg.Log.Info("Marketplace item flagged",
		"id", id,
		"flag_id", flag.ID,
		"reason", flag.Reason,
	)
	return &flag, nil
}

func (s *marketplaceService) List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, int64, error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var count int64
	var items []*model.MarketplaceItem
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count marketplace items", "view", filter.View, "error", err)
			errCount = apperrors.Internal("Failed to count marketplace items", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		items, err = s.repo.List(sharedCtx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to list marketplace items",
				"view", filter.View,
				"limit", filter.Limit,
				"offset", filter.Offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve marketplace items", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if items == nil {
		items = []*model.MarketplaceItem{}
	}
	return items, count, nil
}

// ChangeStatus is the moderator decision on a pending item.
func (s *marketplaceService) ChangeStatus(ctx context.Context, id string, change *model.StatusChange) (*model.MarketplaceItem, error) {
	change.Status = model.ItemStatus(sanitizer.NormalizeKey(string(change.Status)))
	change.Reason = sanitizer.TrimAndNormalize(change.Reason)
	if err := s.validator.ValidateStatusChange(change); err != nil {
		s.metrics.RecordModeration("change_status", err)
		return nil, validation.ToAppError("Status change validation failed", err)
	}

	item, err := s.transition(ctx, id, change.Status, change.Reason, model.TriggerModeration, events.ItemStatusChanged)
	s.metrics.RecordModeration("change_status", err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// ResolveFlag closes a flag. With action "action" and RejectItem set, the
// item is taken down in the same transaction.
func (s *marketplaceService) ResolveFlag(ctx context.Context, id string, resolution *model.FlagResolution) (*model.MarketplaceItem, error) {
	item, err := s.resolveFlag(ctx, id, resolution)
	s.metrics.RecordModeration("resolve_flag", err)
	return item, err
}

func (s *marketplaceService) resolveFlag(ctx context.Context, id string, resolution *model.FlagResolution) (*model.MarketplaceItem, error) {
	resolution.FlagID = sanitizer.TrimAndNormalize(resolution.FlagID)
	resolution.Action = model.FlagAction(sanitizer.NormalizeKey(string(resolution.Action)))
	resolution.Reason = sanitizer.TrimAndNormalize(resolution.Reason)
	if err := s.validator.ValidateFlagResolution(resolution); err != nil {
		return nil, validation.ToAppError("Flag resolution validation failed", err)
	}
	if resolution.RejectItem && resolution.Action != model.FlagActionAction {
		return nil, apperrors.Validation("reject_item requires action to be action", map[string]any{
			"action": resolution.Action,
		})
	}

	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	flag, ok := item.FindFlag(resolution.FlagID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Flag", resolution.FlagID)
	}
	if flag.Resolved {
		return nil, apperrors.Conflict("Flag has already been resolved")
	}

	from := item.Status
	reason := resolution.Reason
	if resolution.RejectItem {
		if !model.CanTransition(from, model.ItemRejected, model.TriggerFlagEnforcement) {
			return nil, transitionError(from, model.ItemRejected)
		}
		if reason == "" {
			reason = "Flagged: " + string(flag.Reason)
		}
	}

	now := s.now()
	actor := middleware.Actor(ctx)
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.ResolveFlag(sessCtx, id, flag.ID, repository.FlagUpdate{
			Action:     resolution.Action,
			ResolvedBy: actor,
			ResolvedAt: now,
		}); err != nil {
			return s.mapRepoError(err, id, "Failed to resolve flag")
		}
		if !resolution.RejectItem {
			return nil
		}
		if err := s.repo.UpdateStatus(sessCtx, id, from, repository.StatusUpdate{
			Status:          model.ItemRejected,
			RejectionReason: reason,
			ModeratedBy:     actor,
			ModeratedAt:     now,
		}); err != nil {
			return s.mapRepoError(err, id, "Failed to reject flagged item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	flag.Resolved = true
	flag.ResolutionAction = resolution.Action
	flag.ResolvedAt = &now
	flag.ResolvedBy = actor
	item.UpdatedAt = now
	if resolution.RejectItem {
		applyStatus(item, model.ItemRejected, reason, actor, now)
	}

	payload := map[string]any{
		"item_id":     id,
		"flag_id":     flag.ID,
		"action":      resolution.Action,
		"reject_item": resolution.RejectItem,
	}
	if resolution.RejectItem {
		payload["status_change"] = statusPayload(item, from)
	}
	s.publish(ctx, events.ItemFlagResolved, id, payload)
	s.cfg.Log.Info("Flag resolved",
		"id", id,
		"flag_id", flag.ID,
		"action", resolution.Action,
		"rejected", resolution.RejectItem,
		"moderated_by", actor,
	)
	return item, nil
}

// Restore sends a rejected or expired item back to the pending queue.
func (s *marketplaceService) Restore(ctx context.Context, id string) (*model.MarketplaceItem, error) {
	item, err := s.transition(ctx, id, model.ItemPending, "", model.TriggerRestore, events.ItemRestored)
	s.metrics.RecordModeration("restore", err)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *marketplaceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Marketplace item ID cannot be empty")
	}

	err := s.repo.Delete(ctx, id)
	s.metrics.RecordModeration("delete", err)
	if err != nil {
		return s.mapRepoError(err, id, "Failed to delete marketplace item")
	}

	s.publish(ctx, events.ItemDeleted, id, map[string]any{"ids": []string{id}})
	s.cfg.Log.Info("Marketplace item deleted", "id", id, "moderated_by", middleware.Actor(ctx))
	return nil
}

// BulkTransition applies the same moderator decision to each id in turn. A
// failing id is reported and never stops the rest.
func (s *marketplaceService) BulkTransition(ctx context.Context, req *model.BulkStatusChange) (*model.BulkResult, error) {
	req.ItemIDs = sanitizer.NormalizeIDs(req.ItemIDs)
	req.Status = model.ItemStatus(sanitizer.NormalizeKey(string(req.Status)))
	req.Reason = sanitizer.TrimAndNormalize(req.Reason)
	if err := s.validator.ValidateBulkStatusChange(req); err != nil {
		return nil, validation.ToAppError("Bulk status change validation failed", err)
	}

	result := &model.BulkResult{
		Succeeded: []string{},
		Failed:    []model.BulkFailure{},
	}
	for _, id := range req.ItemIDs {
		_, err := s.transition(ctx, id, req.Status, req.Reason, model.TriggerModeration, events.ItemStatusChanged)
		s.metrics.RecordModeration("bulk_status", err)
		if err != nil {
			result.Failed = append(result.Failed, model.BulkFailure{
				ID:    id,
				Error: apperrors.AsAppError(err).Message,
			})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}

	s.cfg.Log.Info("Bulk status change finished",
		"status", req.Status,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
		"moderated_by", middleware.Actor(ctx),
	)
	return result, nil
}

func (s *marketplaceService) BulkDelete(ctx context.Context, req *model.BulkDelete) (*model.BulkDeleteResult, error) {
	req.ItemIDs = sanitizer.NormalizeIDs(req.ItemIDs)
	if err := s.validator.ValidateBulkDelete(req); err != nil {
		return nil, validation.ToAppError("Bulk delete validation failed", err)
	}

	deleted, invalid, err := s.repo.DeleteMany(ctx, req.ItemIDs)
	s.metrics.RecordModeration("bulk_delete", err)
	if err != nil {
		s.cfg.Log.Error("Failed to bulk delete marketplace items",
			"count", len(req.ItemIDs),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to delete marketplace items", err)
	}

	result := &model.BulkDeleteResult{DeletedCount: deleted, InvalidIDs: invalid}
	s.publish(ctx, events.ItemDeleted, "", map[string]any{"ids": req.ItemIDs, "deleted_count": deleted})
	s.cfg.Log.Info("Marketplace items deleted",
		"requested", len(req.ItemIDs),
		"deleted", deleted,
		"invalid", len(invalid),
		"moderated_by", middleware.Actor(ctx),
	)
	return result, nil
}

// Statistics is recomputed from the collection on every call.
func (s *marketplaceService) Statistics(ctx context.Context) (*model.MarketplaceStatistics, error) {
	agg, err := s.repo.Aggregate(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to compute marketplace statistics", "error", err)
		return nil, apperrors.Internal("Failed to compute marketplace statistics", err)
	}
	return newStatistics(agg), nil
}

// transition moves one item to status to on behalf of trigger, guarding
// against concurrent changes with a conditional write. It publishes a single
// eventType event carrying the status change.
func (s *marketplaceService) transition(ctx context.Context, id string, to model.ItemStatus, reason string, trigger model.TransitionTrigger, eventType string) (*model.MarketplaceItem, error) {
	item, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := item.Status
	if !model.CanTransition(from, to, trigger) {
		return nil, transitionError(from, to)
	}
	if to != model.ItemRejected {
		reason = ""
	}

	now := s.now()
	actor := middleware.Actor(ctx)
	if err := s.repo.UpdateStatus(ctx, id, from, repository.StatusUpdate{
		Status:          to,
		RejectionReason: reason,
		ModeratedBy:     actor,
		ModeratedAt:     now,
	}); err != nil {
		return nil, s.mapRepoError(err, id, "Failed to update marketplace item status")
	}

	applyStatus(item, to, reason, actor, now)
	s.publish(ctx, eventType, id, statusPayload(item, from))
	s.cfg.Log.Info("Marketplace item status changed",
		"id", id,
		"from", from,
		"to", to,
		"trigger", trigger,
		"moderated_by", actor,
	)
	return item, nil
}

func (s *marketplaceService) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

func (s *marketplaceService) publish(ctx context.Context, eventType, key string, payload any) {
	if err := s.publisher.Publish(ctx, events.Event{Type: eventType, Key: key, Payload: payload}); err != nil {
		s.cfg.Log.Warn("Failed to publish marketplace event",
			"event_type", eventType,
			"id", key,
			"error", err,
		)
	}
}

func (s *marketplaceService) mapRepoError(err error, id, message string) error {
	switch {
	case errors.Is(err, marketerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Marketplace item", id)
	case errors.Is(err, marketerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid marketplace item ID format")
	case errors.Is(err, marketerrors.ErrFlagNotFound):
		return apperrors.NotFound("Flag")
	case errors.Is(err, marketerrors.ErrFlagResolved):
		return apperrors.Conflict("Flag has already been resolved")
	case errors.Is(err, marketerrors.ErrStatusChanged):
		return apperrors.Conflict("Marketplace item status changed, reload and try again")
	case apperrors.IsAppError(err):
		return err
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *marketplaceService) sanitize(item *model.MarketplaceItem) {
	item.Title = sanitizer.TrimAndNormalize(item.Title)
	item.Description = sanitizer.NormalizeText(item.Description)
	item.Category = model.ItemCategory(sanitizer.NormalizeKey(string(item.Category)))
	item.Condition = model.ItemCondition(sanitizer.NormalizeKey(string(item.Condition)))
	item.SellerRef = sanitizer.TrimAndNormalize(item.SellerRef)
	item.Images = sanitizer.NormalizeURLs(item.Images)
}

func applyStatus(item *model.MarketplaceItem, to model.ItemStatus, reason, actor string, at time.Time) {
	item.Status = to
	item.RejectionReason = reason
	item.ModeratedBy = actor
	item.ModeratedAt = &at
	item.UpdatedAt = at
}

func statusPayload(item *model.MarketplaceItem, from model.ItemStatus) map[string]any {
	return map[string]any{
		"item_id":          item.ID,
		"from":             from,
		"to":               item.Status,
		"rejection_reason": item.RejectionReason,
		"moderated_by":     item.ModeratedBy,
	}
}

func transitionError(from, to model.ItemStatus) error {
	return apperrors.Validation(fmt.Sprintf("Cannot change status from %s to %s", from, to), map[string]any{
		"from": from,
		"to":   to,
	})
}

func normalizeFilter(filter model.ItemFilter) (model.ItemFilter, error) {
	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)
	filter.View = model.ModerationView(sanitizer.NormalizeKey(string(filter.View)))
	filter.Search = sanitizer.TrimAndNormalize(filter.Search)
	filter.SellerRef = sanitizer.TrimAndNormalize(filter.SellerRef)
	filter.Category = model.ItemCategory(sanitizer.NormalizeKey(string(filter.Category)))
	filter.Condition = model.ItemCondition(sanitizer.NormalizeKey(string(filter.Condition)))
	filter.Status = model.ItemStatus(sanitizer.NormalizeKey(string(filter.Status)))
	filter.SortBy = sanitizer.NormalizeKey(filter.SortBy)

	if filter.View == "" {
		filter.View = model.ViewAll
	}
	if !filter.View.Valid() {
		return filter, apperrors.Validation("Unknown moderation view", map[string]any{"view": filter.View})
	}
	if filter.Status != "" {
		if filter.View != model.ViewAll {
			return filter, apperrors.Validation("status filter is only available in the all view", map[string]any{
				"view":   filter.View,
				"status": filter.Status,
			})
		}
		if !filter.Status.Valid() {
			return filter, apperrors.Validation("Unknown item status", map[string]any{"status": filter.Status})
		}
	}
	if filter.Category != "" && !validCategory(filter.Category) {
		return filter, apperrors.Validation("Unknown item category", map[string]any{"category": filter.Category})
	}
	if filter.Condition != "" && !validCondition(filter.Condition) {
		return filter, apperrors.Validation("Unknown item condition", map[string]any{"condition": filter.Condition})
	}
	if (filter.MinPrice != nil && *filter.MinPrice < 0) || (filter.MaxPrice != nil && *filter.MaxPrice < 0) {
		return filter, apperrors.Validation("price bounds must not be negative", nil)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return filter, apperrors.Validation("min_price must not exceed max_price", map[string]any{
			"min_price": *filter.MinPrice,
			"max_price": *filter.MaxPrice,
		})
	}
	switch filter.SortBy {
	case "":
		filter.SortBy = repository.SortCreatedAt
		filter.SortDesc = true
	case repository.SortCreatedAt, repository.SortPrice, repository.SortTitle, repository.SortViews:
	default:
		return filter, apperrors.Validation("Unknown sort field", map[string]any{"sort": filter.SortBy})
	}
	return filter, nil
}

func validCategory(c model.ItemCategory) bool {
	switch c {
	case model.CategoryEquipment, model.CategoryUniforms, model.CategoryFootwear, model.CategoryTrainingGear,
		model.CategoryGoalkeeping, model.CategoryAccessories, model.CategoryOther:
		return true
	}
	return false
}

func validCondition(c model.ItemCondition) bool {
	switch c {
	case model.ConditionNew, model.ConditionLikeNew, model.ConditionGood, model.ConditionFair, model.ConditionPoor:
		return true
	}
	return false
}

func newStatistics(agg *repository.Aggregates) *model.MarketplaceStatistics {
	stats := &model.MarketplaceStatistics{
		ByStatus: map[model.ItemStatus]int64{
			model.ItemPending:  0,
			model.ItemApproved: 0,
			model.ItemRejected: 0,
			model.ItemSold:     0,
			model.ItemExpired:  0,
		},
	}
	for _, bucket := range agg.ByStatus {
		stats.ByStatus[bucket.Status] = bucket.Count
	}
	if len(agg.Totals) > 0 {
		t := agg.Totals[0]
		stats.Total = t.Total
		stats.TotalViews = t.Views
		stats.TotalFavorites = t.Favorites
		stats.FlaggedItems = t.FlaggedItems
		stats.UnresolvedFlags = t.UnresolvedFlags
	}
	return stats
}
