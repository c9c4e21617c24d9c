package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleserrors "clubhouse/internal/schedules/errors"
	"clubhouse/pkg/config"
	mongotx "clubhouse/pkg/db/mongo"
	"clubhouse/pkg/model"
	"clubhouse/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Schedules"

	// maxSameDayEntries bounds the snapshot the conflict detector works on.
	maxSameDayEntries = 1000
)

type mongoScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ScheduleRepository interface {
	Create(ctx context.Context, entry *model.ScheduleEntry) error
	FindByID(ctx context.Context, id string) (*model.ScheduleEntry, error)
	FindAll(ctx context.Context, filter model.ScheduleFilter) ([]*model.ScheduleEntry, error)
	Count(ctx context.Context, filter model.ScheduleFilter) (int64, error)
	FindSameDay(ctx context.Context, resourceID, date string) ([]*model.ScheduleEntry, error)
	Update(ctx context.Context, id string, entry *model.ScheduleEntry) error
	Delete(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	return &mongoScheduleRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoScheduleRepository) Create(ctx context.Context, entry *model.ScheduleEntry) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	entry.CreatedAt = now
	entry.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to create schedule entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleRepository) FindByID(ctx context.Context, id string) (*model.ScheduleEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	var entry model.ScheduleEntry
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", scheduleserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find schedule entry: %w", err)
	}

	return &entry, nil
}

func (r *mongoScheduleRepository) FindAll(ctx context.Context, filter model.ScheduleFilter) ([]*model.ScheduleEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset).
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*model.ScheduleEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode schedule entries: %w", err)
	}
	return entries, nil
}

func (r *mongoScheduleRepository) Count(ctx context.Context, filter model.ScheduleFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count schedule entries: %w", err)
	}
	return count, nil
}

// FindSameDay returns every entry booked on resourceID for date, cancelled ones included.
func (r *mongoScheduleRepository) FindSameDay(ctx context.Context, resourceID, date string) ([]*model.ScheduleEntry, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(maxSameDayEntries)

	cursor, err := r.collection.Find(ctx, bson.M{"resource_id": resourceID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to load same-day entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []*model.ScheduleEntry{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode same-day entries: %w", err)
	}
	return entries, nil
}

func (r *mongoScheduleRepository) Update(ctx context.Context, id string, entry *model.ScheduleEntry) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	entry.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	set := bson.M{
		"title":      entry.Title,
		"type":       entry.Type,
		"team":       entry.Team,
		"date":       entry.Date,
		"start_time": entry.StartTime,
		"end_time":   entry.EndTime,
		"duration":   entry.DurationMin,
		"visibility": entry.Visibility,
		"status":     entry.Status,
		"location":   entry.Location,
		"notes":      entry.Notes,
		"updated_at": entry.UpdatedAt,
	}
	unset := bson.M{}
	if entry.ResourceID != "" {
		set["resource_id"] = entry.ResourceID
	} else {
		unset["resource_id"] = ""
	}
	if entry.Recurrence != nil {
		set["recurrence"] = entry.Recurrence
	} else {
		unset["recurrence"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update schedule entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoScheduleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete schedule entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func buildFilter(f model.ScheduleFilter) bson.M {
	filter := bson.M{}
	switch {
	case f.Date != "":
		filter["date"] = f.Date
	case f.From != "" || f.To != "":
		window := bson.M{}
		if f.From != "" {
			window["$gte"] = f.From
		}
		if f.To != "" {
			window["$lte"] = f.To
		}
		filter["date"] = window
	}
	if f.Team != "" {
		filter["team"] = bson.M{"$regex": "^" + sanitizer.EscapeRegex(f.Team) + "$", "$options": "i"}
	}
	if f.ResourceID != "" {
		filter["resource_id"] = f.ResourceID
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}
