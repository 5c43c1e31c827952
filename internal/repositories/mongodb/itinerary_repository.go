package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"
	"voyago/internal/services"
	"voyago/internal/utils"
	"voyago/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type itineraryRepository struct {
	db         *database.MongoDB
	collection *mongo.Collection
	versions   *mongo.Collection
	cache      CacheService
}

func NewItineraryRepository(db *database.MongoDB, cache CacheService) interfaces.ItineraryRepository {
	return &itineraryRepository{
		db:         db,
		collection: db.Collection("itineraries"),
		versions:   db.Collection("itinerary_versions"),
		cache:      cache,
	}
}

func (r *itineraryRepository) Create(ctx context.Context, itinerary *models.Itinerary) error {
	if itinerary.ID.IsZero() {
		itinerary.ID = primitive.NewObjectID()
	}
	if itinerary.Version == 0 {
		itinerary.Version = 1
	}
	now := time.Now()
	itinerary.CreatedAt = now
	itinerary.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, itinerary)
	if err != nil {
		return fmt.Errorf("failed to create itinerary: %w", err)
	}
	return nil
}

func (r *itineraryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Itinerary, error) {
	if r.cache != nil {
		var cached models.Itinerary
		if err := r.cache.Get(ctx, itineraryCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	var itinerary models.Itinerary
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&itinerary)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("itinerary not found")
		}
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, itineraryCacheKey(id), itinerary, 5*time.Minute)
	}
	return &itinerary, nil
}

// SaveWithHistory snapshots the previous state and replaces the aggregate
// in one transaction. The replace is filtered on the previous version, so
// a concurrent writer makes the filter miss and the whole transaction is
// rejected with ErrStaleWrite.
func (r *itineraryRepository) SaveWithHistory(ctx context.Context, prev, next *models.Itinerary) error {
	_, err := r.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		snapshot := &models.ItineraryVersion{
			ID:          primitive.NewObjectID(),
			ItineraryID: prev.ID,
			Version:     prev.Version,
			Snapshot:    *prev,
			CreatedAt:   time.Now(),
		}
		if _, err := r.versions.InsertOne(sessCtx, snapshot); err != nil {
			return nil, fmt.Errorf("failed to write itinerary snapshot: %w", err)
		}

		result, err := r.collection.ReplaceOne(
			sessCtx,
			bson.M{"_id": prev.ID, "version": prev.Version},
			next,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to save itinerary: %w", err)
		}
		if result.MatchedCount == 0 {
			return nil, services.ErrStaleWrite
		}
		return nil, nil
	})
	if err != nil {
		return err
	}

	if r.cache != nil {
		r.cache.Delete(ctx, itineraryCacheKey(prev.ID))
	}
	return nil
}

func (r *itineraryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if _, err := r.versions.DeleteMany(ctx, bson.M{"itinerary_id": id}); err != nil {
		return fmt.Errorf("failed to delete itinerary versions: %w", err)
	}
	if r.cache != nil {
		r.cache.Delete(ctx, itineraryCacheKey(id))
	}
	return nil
}

func (r *itineraryRepository) GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Itinerary, int64, error) {
	return r.findWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *itineraryRepository) CountByUser(ctx context.Context, userID primitive.ObjectID, exclude primitive.ObjectID) (int64, error) {
	filter := bson.M{"user_id": userID}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count itineraries: %w", err)
	}
	return count, nil
}

func (r *itineraryRepository) GetUpcoming(ctx context.Context, after time.Time, params *utils.PaginationParams) ([]*models.Itinerary, int64, error) {
	return r.findWithFilter(ctx, bson.M{"start_date": bson.M{"$gt": after}}, params)
}

func (r *itineraryRepository) GetVersions(ctx context.Context, itineraryID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ItineraryVersion, int64, error) {
	filter := bson.M{"itinerary_id": itineraryID}

	total, err := r.versions.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count itinerary versions: %w", err)
	}

	cursor, err := r.versions.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find itinerary versions: %w", err)
	}
	defer cursor.Close(ctx)

	var versions []*models.ItineraryVersion
	for cursor.Next(ctx) {
		var version models.ItineraryVersion
		if err := cursor.Decode(&version); err != nil {
			return nil, 0, fmt.Errorf("failed to decode itinerary version: %w", err)
		}
		versions = append(versions, &version)
	}
	return versions, total, nil
}

func (r *itineraryRepository) findWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Itinerary, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count itineraries: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find itineraries: %w", err)
	}
	defer cursor.Close(ctx)

	var itineraries []*models.Itinerary
	for cursor.Next(ctx) {
		var itinerary models.Itinerary
		if err := cursor.Decode(&itinerary); err != nil {
			return nil, 0, fmt.Errorf("failed to decode itinerary: %w", err)
		}
		itineraries = append(itineraries, &itinerary)
	}
	return itineraries, total, nil
}

func itineraryCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("itinerary:%s", id.Hex())
}
