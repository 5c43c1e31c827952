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

type hotelRepository struct {
	collection *mongo.Collection
}

func NewHotelRepository(db *mongo.Database) interfaces.HotelRepository {
	return &hotelRepository{collection: db.Collection("hotels")}
}

func (r *hotelRepository) Create(ctx context.Context, hotel *models.Hotel) error {
	if hotel.ID.IsZero() {
		hotel.ID = primitive.NewObjectID()
	}
	hotel.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, hotel); err != nil {
		return fmt.Errorf("failed to create hotel: %w", err)
	}
	return nil
}

func (r *hotelRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hotel, error) {
	var hotel models.Hotel
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hotel)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("hotel not found")
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &hotel, nil
}

func (r *hotelRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete hotel: %w", err)
	}
	return nil
}

func (r *hotelRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete hotels: %w", err)
	}
	return nil
}
