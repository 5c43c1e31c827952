package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voyago/internal/models"
	"voyago/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// catalogCacheTTL is generous: the catalog changes through back-office
// tooling, not through this service.
const catalogCacheTTL = time.Hour

type catalogRepository struct {
	destinations *mongo.Collection
	cities       *mongo.Collection
	activities   *mongo.Collection
	cache        CacheService
}

func NewCatalogRepository(db *mongo.Database, cache CacheService) interfaces.CatalogRepository {
	return &catalogRepository{
		destinations: db.Collection("destinations"),
		cities:       db.Collection("cities"),
		activities:   db.Collection("activities"),
		cache:        cache,
	}
}

func (r *catalogRepository) GetDestination(ctx context.Context, id primitive.ObjectID) (*models.Destination, error) {
	cacheKey := fmt.Sprintf("destination:%s", id.Hex())
	if r.cache != nil {
		var cached models.Destination
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var destination models.Destination
	err := r.destinations.FindOne(ctx, bson.M{"_id": id}).Decode(&destination)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("destination not found")
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, destination, catalogCacheTTL)
	}
	return &destination, nil
}

func (r *catalogRepository) GetCityByName(ctx context.Context, name string) (*models.City, error) {
	cacheKey := fmt.Sprintf("city_name:%s", name)
	if r.cache != nil {
		var cached models.City
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var city models.City
	err := r.cities.FindOne(ctx, bson.M{"name": name, "is_active": true}).Decode(&city)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("city not found")
		}
		return nil, fmt.Errorf("failed to get city by name: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, city, catalogCacheTTL)
	}
	return &city, nil
}

func (r *catalogRepository) GetCity(ctx context.Context, id primitive.ObjectID) (*models.City, error) {
	cacheKey := fmt.Sprintf("city:%s", id.Hex())
	if r.cache != nil {
		var cached models.City
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	var city models.City
	err := r.cities.FindOne(ctx, bson.M{"_id": id}).Decode(&city)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("city not found")
		}
		return nil, fmt.Errorf("failed to get city: %w", err)
	}

	if r.cache != nil {
		r.cache.Set(ctx, cacheKey, city, catalogCacheTTL)
	}
	return &city, nil
}

func (r *catalogRepository) GetActivity(ctx context.Context, id primitive.ObjectID) (*models.Activity, error) {
	var activity models.Activity
	err := r.activities.FindOne(ctx, bson.M{"_id": id, "is_active": true}).Decode(&activity)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("activity not found")
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return &activity, nil
}

func (r *catalogRepository) GetActivitiesByCity(ctx context.Context, cityID primitive.ObjectID) ([]*models.Activity, error) {
	cursor, err := r.activities.Find(ctx, bson.M{"city_id": cityID, "is_active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to find activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.Activity
	for cursor.Next(ctx) {
		var activity models.Activity
		if err := cursor.Decode(&activity); err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
		activities = append(activities, &activity)
	}
	return activities, nil
}

// GetLeisureActivity upserts the city's free placeholder so concurrent
// callers converge on a single document per city.
func (r *catalogRepository) GetLeisureActivity(ctx context.Context, cityID primitive.ObjectID) (*models.Activity, error) {
	now := time.Now()
	filter := bson.M{"city_id": cityID, "is_leisure": true}
	update := bson.M{
		"$setOnInsert": bson.M{
			"city_id":          cityID,
			"name":             "Leisure day",
			"category":         models.ActivityCategoryLeisure,
			"price_per_person": 0.0,
			"is_leisure":       true,
			"is_active":        true,
			"created_at":       now,
			"updated_at":       now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var activity models.Activity
	if err := r.activities.FindOneAndUpdate(ctx, filter, update, opts).Decode(&activity); err != nil {
		return nil, fmt.Errorf("failed to get leisure activity: %w", err)
	}
	return &activity, nil
}
