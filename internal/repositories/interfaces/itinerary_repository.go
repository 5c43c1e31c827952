package interfaces

import (
	"context"
	"time"

	"voyago/internal/models"
	"voyago/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *models.Itinerary) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Itinerary, error)

	// SaveWithHistory writes the updated aggregate and a snapshot of the
	// previous state in one logical transaction. The write is filtered on
	// prev.Version; a mismatch returns services.ErrStaleWrite and the
	// caller must retry the whole mutation.
	SaveWithHistory(ctx context.Context, prev, next *models.Itinerary) error

	Delete(ctx context.Context, id primitive.ObjectID) error
	GetByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Itinerary, int64, error)
	// CountByUser counts the user's itineraries for discount eligibility;
	// a non-zero exclude id leaves that itinerary out of the count.
	CountByUser(ctx context.Context, userID primitive.ObjectID, exclude primitive.ObjectID) (int64, error)

	// GetUpcoming pages through itineraries whose trip has not started
	// yet; used by the nightly re-pricing job.
	GetUpcoming(ctx context.Context, after time.Time, params *utils.PaginationParams) ([]*models.Itinerary, int64, error)

	GetVersions(ctx context.Context, itineraryID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ItineraryVersion, int64, error)
}
