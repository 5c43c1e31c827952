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
)

// The transport repositories are deliberately uniform: each stores one
// priced offer document per leg slot and supports batch deletion of the
// offers a mutation orphaned.

type flightRepository struct {
	collection *mongo.Collection
}

func NewFlightRepository(db *mongo.Database) interfaces.FlightRepository {
	return &flightRepository{collection: db.Collection("flights")}
}

func (r *flightRepository) Create(ctx context.Context, flight *models.Flight) error {
	if flight.ID.IsZero() {
		flight.ID = primitive.NewObjectID()
	}
	flight.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, flight); err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	return nil
}

func (r *flightRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Flight, error) {
	var flight models.Flight
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&flight)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("flight not found")
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return &flight, nil
}

func (r *flightRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	return nil
}

func (r *flightRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete flights: %w", err)
	}
	return nil
}

type taxiRepository struct {
	collection *mongo.Collection
}

func NewTaxiRepository(db *mongo.Database) interfaces.TaxiRepository {
	return &taxiRepository{collection: db.Collection("taxis")}
}

func (r *taxiRepository) Create(ctx context.Context, taxi *models.Taxi) error {
	if taxi.ID.IsZero() {
		taxi.ID = primitive.NewObjectID()
	}
	taxi.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, taxi); err != nil {
		return fmt.Errorf("failed to create taxi: %w", err)
	}
	return nil
}

func (r *taxiRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Taxi, error) {
	var taxi models.Taxi
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&taxi)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("taxi not found")
		}
		return nil, fmt.Errorf("failed to get taxi: %w", err)
	}
	return &taxi, nil
}

func (r *taxiRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete taxi: %w", err)
	}
	return nil
}

func (r *taxiRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete taxis: %w", err)
	}
	return nil
}

type ferryRepository struct {
	collection *mongo.Collection
}

func NewFerryRepository(db *mongo.Database) interfaces.FerryRepository {
	return &ferryRepository{collection: db.Collection("ferries")}
}

func (r *ferryRepository) Create(ctx context.Context, ferry *models.Ferry) error {
	if ferry.ID.IsZero() {
		ferry.ID = primitive.NewObjectID()
	}
	ferry.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, ferry); err != nil {
		return fmt.Errorf("failed to create ferry: %w", err)
	}
	return nil
}

func (r *ferryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ferry, error) {
	var ferry models.Ferry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ferry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("ferry not found")
		}
		return nil, fmt.Errorf("failed to get ferry: %w", err)
	}
	return &ferry, nil
}

func (r *ferryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete ferry: %w", err)
	}
	return nil
}

func (r *ferryRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete ferries: %w", err)
	}
	return nil
}
