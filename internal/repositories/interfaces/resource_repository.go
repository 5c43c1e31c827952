package interfaces

import (
	"context"

	"voyago/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priced sub-resource stores. Each document is owned by exactly one leg
// slot at a time; these repositories never share records between legs.

type FlightRepository interface {
	Create(ctx context.Context, flight *models.Flight) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Flight, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

type TaxiRepository interface {
	Create(ctx context.Context, taxi *models.Taxi) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Taxi, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

type FerryRepository interface {
	Create(ctx context.Context, ferry *models.Ferry) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Ferry, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}

type HotelRepository interface {
	Create(ctx context.Context, hotel *models.Hotel) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hotel, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
}
