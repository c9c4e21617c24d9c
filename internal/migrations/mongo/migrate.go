package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	marketplacerepo "clubhouse/internal/marketplace/repository"
	"clubhouse/internal/migrations/mongo/validators"
	resourcesrepo "clubhouse/internal/resources/repository"
	schedulesrepo "clubhouse/internal/schedules/repository"
	"clubhouse/pkg/logger"
)

var (
	ResourcesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}, {Key: "name", Value: 1}}},
	}

	SchedulesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "resource_id", Value: 1}, {Key: "date", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "team", Value: 1}, {Key: "date", Value: 1}}},
	}

	MarketplaceIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "flags.resolved", Value: 1}}},
		{Keys: bson.D{{Key: "seller_ref", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "price", Value: 1}}},
	}
)

type CollectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists everything the migration owns, keyed by collection name.
func Collections() map[string]CollectionDef {
	return map[string]CollectionDef{
		resourcesrepo.CollectionName: {
			Indexes:   ResourcesIndexes,
			Validator: validators.ResourceValidator,
		},
		schedulesrepo.CollectionName: {
			Indexes:   SchedulesIndexes,
			Validator: validators.ScheduleValidator,
		},
		marketplacerepo.CollectionName: {
			Indexes:   MarketplaceIndexes,
			Validator: validators.MarketplaceItemValidator,
		},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully", "database", dbName)
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
