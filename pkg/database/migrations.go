package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	// Create migrations collection if it doesn't exist
	err := m.createMigrationsCollection()
	if err != nil {
		return err
	}

	// Get current version
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	// Run migrations
	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) Down(targetVersion int) error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version <= currentVersion && migration.Version > targetVersion {
			log.Printf("Reverting migration %d: %s", migration.Version, migration.Description)

			err := migration.Down(m.db)
			if err != nil {
				return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
			}

			previousVersion := targetVersion
			if i > 0 {
				previousVersion = m.migrations[i-1].Version
			}

			err = m.updateVersion(previousVersion)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d reverted successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create itineraries collection with indexes",
			Up: func(db *mongo.Database) error {
				return createItinerariesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("itineraries").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create itinerary_versions collection with indexes",
			Up: func(db *mongo.Database) error {
				return createItineraryVersionsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("itinerary_versions").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create catalog collections with indexes",
			Up: func(db *mongo.Database) error {
				return createCatalogIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				ctx := context.Background()
				if err := db.Collection("cities").Drop(ctx); err != nil {
					return err
				}
				return db.Collection("activities").Drop(ctx)
			},
		},
		{
			Version:     4,
			Description: "Create discounts collection with indexes",
			Up: func(db *mongo.Database) error {
				return createDiscountsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("discounts").Drop(context.Background())
			},
		},
		{
			Version:     5,
			Description: "Create discount_usages collection with indexes",
			Up: func(db *mongo.Database) error {
				return createDiscountUsagesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("discount_usages").Drop(context.Background())
			},
		},
		{
			Version:     6,
			Description: "Create leads collection with indexes",
			Up: func(db *mongo.Database) error {
				return createLeadsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("leads").Drop(context.Background())
			},
		},
	}
}

func createItinerariesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("itineraries")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "start_date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "destination_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createItineraryVersionsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("itinerary_versions")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "itinerary_id", Value: 1}, {Key: "version", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "archived_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createCatalogIndexes(db *mongo.Database) error {
	ctx := context.Background()

	cityIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}, {Key: "destination_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("cities").Indexes().CreateMany(ctx, cityIndexes); err != nil {
		return err
	}

	activityIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "city_id", Value: 1}, {Key: "is_active", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "is_leisure", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := db.Collection("activities").Indexes().CreateMany(ctx, activityIndexes)
	return err
}

func createDiscountsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("discounts")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "discount_type", Value: 1}, {Key: "is_active", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "valid_until", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createDiscountUsagesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("discount_usages")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "discount_id", Value: 1}, {Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "itinerary_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "used_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createLeadsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("leads")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "itinerary_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
