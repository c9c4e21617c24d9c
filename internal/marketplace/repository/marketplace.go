package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	marketerrors "clubhouse/internal/marketplace/errors"
	"clubhouse/pkg/config"
	mongotx "clubhouse/pkg/db/mongo"
	"clubhouse/pkg/model"
	"clubhouse/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "MarketplaceItems"

// Sort keys accepted by List. Anything else falls back to created_at.
const (
	SortCreatedAt = "created_at"
	SortPrice     = "price"
	SortTitle     = "title"
	SortViews     = "views"
)

type StatusUpdate struct {
	Status          model.ItemStatus
	RejectionReason string
	ModeratedBy     string
	ModeratedAt     time.Time
}

type FlagUpdate struct {
	Action     model.FlagAction
	ResolvedBy string
	ResolvedAt time.Time
}

// StatusCount is one bucket of the by-status breakdown.
type StatusCount struct {
	Status model.ItemStatus `bson:"_id"`
	Count  int64            `bson:"count"`
}

type Totals struct {
	Total           int64 `bson:"total"`
	Views           int64 `bson:"views"`
	Favorites       int64 `bson:"favorites"`
	FlaggedItems    int64 `bson:"flagged_items"`
	UnresolvedFlags int64 `bson:"unresolved_flags"`
}

type Aggregates struct {
	ByStatus []StatusCount `bson:"by_status"`
	Totals   []Totals      `bson:"totals"`
}

type mongoMarketplaceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type MarketplaceRepository interface {
	Create(ctx context.Context, item *model.MarketplaceItem) error
	FindByID(ctx context.Context, id string) (*model.MarketplaceItem, error)
	List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, error)
	Count(ctx context.Context, filter model.ItemFilter) (int64, error)
	AddFlag(ctx context.Context, id string, flag model.Flag) error
	UpdateStatus(ctx context.Context, id string, from model.ItemStatus, update StatusUpdate) error
	ResolveFlag(ctx context.Context, id, flagID string, update FlagUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, []string, error)
	Aggregate(ctx context.Context) (*Aggregates, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoMarketplaceRepository(cfg *config.Config) MarketplaceRepository {
	return &mongoMarketplaceRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoMarketplaceRepository) Create(ctx context.Context, item *model.MarketplaceItem) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to create marketplace item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMarketplaceRepository) FindByID(ctx context.Context, id string) (*model.MarketplaceItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", marketerrors.ErrInvalidID, id)
	}

	var item model.MarketplaceItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", marketerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find marketplace item: %w", err)
	}

	return &item, nil
}

func (r *mongoMarketplaceRepository) List(ctx context.Context, filter model.ItemFilter) ([]*model.MarketplaceItem, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Offset).
		SetSort(buildSort(filter))

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query marketplace items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*model.MarketplaceItem{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode marketplace items: %w", err)
	}
	return items, nil
}

func (r *mongoMarketplaceRepository) Count(ctx context.Context, filter model.ItemFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count marketplace items: %w", err)
	}
	return count, nil
}

func (r *mongoMarketplaceRepository) AddFlag(ctx context.Context, id string, flag model.Flag) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", marketerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$push": bson.M{"flags": flag},
		"$set":  bson.M{"updated_at": flag.FlaggedAt},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to flag marketplace item: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", marketerrors.ErrNotFound, id)
	}
	return nil
}

// UpdateStatus moves the item only while it is still in status from.
func (r *mongoMarketplaceRepository) UpdateStatus(ctx context.Context, id string, from model.ItemStatus, update StatusUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", marketerrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":       update.Status,
		"moderated_by": update.ModeratedBy,
		"moderated_at": update.ModeratedAt,
		"updated_at":   update.ModeratedAt,
	}
	doc := bson.M{"$set": set}
	if update.RejectionReason != "" {
		set["rejection_reason"] = update.RejectionReason
	} else {
		doc["$unset"] = bson.M{"rejection_reason": ""}
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID, "status": from}, doc)
	if err != nil {
		return fmt.Errorf("failed to update marketplace item status: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrRace(ctx, objectID, id, marketerrors.ErrStatusChanged)
	}
	return nil
}

// ResolveFlag marks an unresolved flag resolved. A flag that is missing or
// already resolved is reported through the matching sentinel error.
func (r *mongoMarketplaceRepository) ResolveFlag(ctx context.Context, id, flagID string, update FlagUpdate) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", marketerrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":   objectID,
		"flags": bson.M{"$elemMatch": bson.M{"id": flagID, "resolved": false}},
	}
	doc := bson.M{"$set": bson.M{
		"flags.$.resolved":          true,
		"flags.$.resolution_action": update.Action,
		"flags.$.resolved_at":       update.ResolvedAt,
		"flags.$.resolved_by":       update.ResolvedBy,
		"updated_at":                update.ResolvedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("failed to resolve flag: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	var item model.MarketplaceItem
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}, options.FindOne().SetProjection(bson.M{"flags": 1})).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", marketerrors.ErrNotFound, id)
		}
		return fmt.Errorf("failed to load flags: %w", err)
	}
	if _, ok := item.FindFlag(flagID); !ok {
		return fmt.Errorf("%w: %s", marketerrors.ErrFlagNotFound, flagID)
	}
	return fmt.Errorf("%w: %s", marketerrors.ErrFlagResolved, flagID)
}

func (r *mongoMarketplaceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", marketerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete marketplace item: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", marketerrors.ErrNotFound, id)
	}
	return nil
}

// DeleteMany removes every item whose id parses. Unparsable ids are returned
// untouched so the caller can report them.
func (r *mongoMarketplaceRepository) DeleteMany(ctx context.Context, ids []string) (int64, []string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectIDs, invalid := mongotx.ObjectIDs(ids)
	if len(objectIDs) == 0 {
		return 0, invalid, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return 0, invalid, fmt.Errorf("failed to delete marketplace items: %w", err)
	}
	return result.DeletedCount, invalid, nil
}

func (r *mongoMarketplaceRepository) Aggregate(ctx context.Context) (*Aggregates, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Aggregate(ctx, statisticsPipeline())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate marketplace statistics: %w", err)
	}
	defer cursor.Close(ctx)

	var out []Aggregates
	if err = cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode marketplace statistics: %w", err)
	}
	if len(out) == 0 {
		return &Aggregates{}, nil
	}
	return &out[0], nil
}

func (r *mongoMarketplaceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// missOrRace tells a missing document apart from one whose state moved on.
func (r *mongoMarketplaceRepository) missOrRace(ctx context.Context, objectID primitive.ObjectID, id string, raced error) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to check marketplace item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", marketerrors.ErrNotFound, id)
	}
	return fmt.Errorf("%w: %s", raced, id)
}

func unresolvedFlagCount() bson.M {
	return bson.M{"$size": bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$flags", bson.A{}}},
		"as":    "f",
		"cond":  bson.M{"$eq": bson.A{"$$f.resolved", false}},
	}}}
}

func statisticsPipeline() mongo.Pipeline {
	unresolved := unresolvedFlagCount()
	return mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"by_status": bson.A{
				bson.M{"$group": bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}},
			},
			"totals": bson.A{
				bson.M{"$group": bson.M{
					"_id":              nil,
					"total":            bson.M{"$sum": 1},
					"views":            bson.M{"$sum": "$views"},
					"favorites":        bson.M{"$sum": "$favorites"},
					"unresolved_flags": bson.M{"$sum": unresolved},
					"flagged_items": bson.M{"$sum": bson.M{
						"$cond": bson.A{bson.M{"$gt": bson.A{unresolved, 0}}, 1, 0},
					}},
				}},
			},
		}}},
	}
}

func buildFilter(f model.ItemFilter) bson.M {
	filter := bson.M{}
	switch f.View {
	case model.ViewPending:
		filter["status"] = model.ItemPending
	case model.ViewFlagged:
		filter["flags"] = bson.M{"$elemMatch": bson.M{"resolved": false}}
	case model.ViewRestorable:
		filter["status"] = bson.M{"$in": bson.A{model.ItemRejected, model.ItemExpired}}
	default:
		if f.Status != "" {
			filter["status"] = f.Status
		}
	}

	if f.Search != "" {
		pattern := bson.M{"$regex": sanitizer.EscapeRegex(f.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Condition != "" {
		filter["condition"] = f.Condition
	}
	if f.SellerRef != "" {
		filter["seller_ref"] = f.SellerRef
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

func buildSort(f model.ItemFilter) bson.D {
	field := SortCreatedAt
	switch f.SortBy {
	case SortPrice, SortTitle, SortViews:
		field = f.SortBy
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}
