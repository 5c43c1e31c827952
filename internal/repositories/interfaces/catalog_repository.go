package interfaces

import (
	"context"

	"voyago/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogRepository serves the destination/city/activity catalog the
// engine reads but never mutates, except for the lazily created leisure
// placeholder.
type CatalogRepository interface {
	GetDestination(ctx context.Context, id primitive.ObjectID) (*models.Destination, error)
	GetCityByName(ctx context.Context, name string) (*models.City, error)
	GetCity(ctx context.Context, id primitive.ObjectID) (*models.City, error)
	GetActivity(ctx context.Context, id primitive.ObjectID) (*models.Activity, error)
	GetActivitiesByCity(ctx context.Context, cityID primitive.ObjectID) ([]*models.Activity, error)

	// GetLeisureActivity returns the city's leisure placeholder, creating
	// it on first use. One per city, reused for every empty slot.
	GetLeisureActivity(ctx context.Context, cityID primitive.ObjectID) (*models.Activity, error)
}

type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) error
}
